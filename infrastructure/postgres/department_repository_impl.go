package postgres

import (
	"context"

	"gorm.io/gorm"

	"face-attendance/domain/models"
	"face-attendance/domain/repositories"
)

type DepartmentRepositoryImpl struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) repositories.DepartmentRepository {
	return &DepartmentRepositoryImpl{db: db}
}

func (r *DepartmentRepositoryImpl) ListIDsByUnit(ctx context.Context, unitID int) ([]int, error) {
	var ids []int
	err := r.db.WithContext(ctx).
		Model(&models.Department{}).
		Where("unit_id = ?", unitID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *DepartmentRepositoryImpl) GetByID(ctx context.Context, id int) (*models.Department, error) {
	var dept models.Department
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dept).Error
	if err != nil {
		return nil, translate(err)
	}
	return &dept, nil
}
