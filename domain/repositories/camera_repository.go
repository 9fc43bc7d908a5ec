package repositories

import (
	"context"

	"face-attendance/domain/models"
)

type CameraRepository interface {
	// GetByID returns a live camera with its area loaded.
	GetByID(ctx context.Context, id int) (*models.Camera, error)
}
