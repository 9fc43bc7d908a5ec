package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"face-attendance/domain/models"
	"face-attendance/domain/repositories"
)

type PersonEventRepositoryImpl struct {
	db *gorm.DB
}

func NewPersonEventRepository(db *gorm.DB) repositories.PersonEventRepository {
	return &PersonEventRepositoryImpl{db: db}
}

// Create inserts the event. Redelivered events with a known EventID are ignored.
func (r *PersonEventRepositoryImpl) Create(ctx context.Context, event *models.PersonEvent) error {
	return r.db.WithContext(ctx).
		Where(models.PersonEvent{EventID: event.EventID}).
		FirstOrCreate(event).Error
}

func (r *PersonEventRepositoryImpl) ListByDevice(ctx context.Context, deviceID int, since time.Time, limit int) ([]models.PersonEvent, error) {
	var events []models.PersonEvent
	err := r.db.WithContext(ctx).
		Preload("Person").
		Where("device_id = ? AND access_time >= ?", deviceID, since).
		Order("access_time DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *PersonEventRepositoryImpl) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("access_time < ?", before).
		Delete(&models.PersonEvent{})
	return result.RowsAffected, result.Error
}
