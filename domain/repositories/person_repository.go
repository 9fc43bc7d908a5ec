package repositories

import (
	"context"

	"github.com/google/uuid"

	"face-attendance/domain/models"
)

type PersonRepository interface {
	Create(ctx context.Context, person *models.Person) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error)

	// ListSearchable returns live persons of the given departments that have a feature.
	ListSearchable(ctx context.Context, departmentIDs []int) ([]models.Person, error)
	CountSearchable(ctx context.Context, departmentIDs []int) (int64, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
