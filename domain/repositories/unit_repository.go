package repositories

import (
	"context"

	"face-attendance/domain/models"
)

type UnitRepository interface {
	GetByID(ctx context.Context, id int) (*models.Unit, error)
	Exists(ctx context.Context, id int) (bool, error)
}
