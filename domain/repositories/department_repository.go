package repositories

import (
	"context"

	"face-attendance/domain/models"
)

type DepartmentRepository interface {
	// ListIDsByUnit returns the IDs of the unit's live departments.
	ListIDsByUnit(ctx context.Context, unitID int) ([]int, error)
	GetByID(ctx context.Context, id int) (*models.Department, error)
}
