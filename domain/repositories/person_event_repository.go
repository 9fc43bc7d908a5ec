package repositories

import (
	"context"
	"time"

	"face-attendance/domain/models"
)

type PersonEventRepository interface {
	Create(ctx context.Context, event *models.PersonEvent) error
	ListByDevice(ctx context.Context, deviceID int, since time.Time, limit int) ([]models.PersonEvent, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}
