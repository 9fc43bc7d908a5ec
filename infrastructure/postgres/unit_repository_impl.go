package postgres

import (
	"context"

	"gorm.io/gorm"

	"face-attendance/domain/models"
	"face-attendance/domain/repositories"
)

type UnitRepositoryImpl struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) repositories.UnitRepository {
	return &UnitRepositoryImpl{db: db}
}

func (r *UnitRepositoryImpl) GetByID(ctx context.Context, id int) (*models.Unit, error) {
	var unit models.Unit
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&unit).Error
	if err != nil {
		return nil, translate(err)
	}
	return &unit, nil
}

func (r *UnitRepositoryImpl) Exists(ctx context.Context, id int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Unit{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
