package postgres

import (
	"context"

	"gorm.io/gorm"

	"face-attendance/domain/models"
	"face-attendance/domain/repositories"
)

type CameraRepositoryImpl struct {
	db *gorm.DB
}

func NewCameraRepository(db *gorm.DB) repositories.CameraRepository {
	return &CameraRepositoryImpl{db: db}
}

func (r *CameraRepositoryImpl) GetByID(ctx context.Context, id int) (*models.Camera, error) {
	var camera models.Camera
	err := r.db.WithContext(ctx).
		Joins("Area").
		Where("cameras.id = ?", id).
		First(&camera).Error
	if err != nil {
		return nil, translate(err)
	}
	return &camera, nil
}
