package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"face-attendance/domain/models"
	"face-attendance/domain/repositories"
)

type PersonRepositoryImpl struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) repositories.PersonRepository {
	return &PersonRepositoryImpl{db: db}
}

func (r *PersonRepositoryImpl) Create(ctx context.Context, person *models.Person) error {
	return r.db.WithContext(ctx).Create(person).Error
}

func (r *PersonRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	var person models.Person
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&person).Error
	if err != nil {
		return nil, translate(err)
	}
	return &person, nil
}

func (r *PersonRepositoryImpl) searchable(ctx context.Context, departmentIDs []int) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Person{}).
		Where("department_id IN ?", departmentIDs).
		Where("feature IS NOT NULL")
}

func (r *PersonRepositoryImpl) ListSearchable(ctx context.Context, departmentIDs []int) ([]models.Person, error) {
	if len(departmentIDs) == 0 {
		return nil, nil
	}

	var persons []models.Person
	err := r.searchable(ctx, departmentIDs).
		Order("created_at ASC").
		Find(&persons).Error
	return persons, err
}

func (r *PersonRepositoryImpl) CountSearchable(ctx context.Context, departmentIDs []int) (int64, error) {
	if len(departmentIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.searchable(ctx, departmentIDs).Count(&count).Error
	return count, err
}

func (r *PersonRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Person{}).Error
}
