package models

import (
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Person types
const (
	PersonTypeStaff   = 1
	PersonTypeStudent = 2
	PersonTypeGuest   = 3
)

type Person struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	DepartmentID int       `gorm:"not null;index"`

	Name  string `gorm:"not null"`
	Code  string `gorm:"index"`
	Image string // Relative path of the registered portrait
	Type  int    `gorm:"default:1"`

	// Face embedding (512 dimensions). Persons without one are not searchable.
	Feature *pgvector.Vector `gorm:"type:vector(512)"`

	Timestamps

	Department Department `gorm:"foreignKey:DepartmentID"`
}

func (Person) TableName() string {
	return "persons"
}

// Embedding returns the stored feature as float64, or nil when absent.
func (p Person) Embedding() []float64 {
	if p.Feature == nil {
		return nil
	}
	raw := p.Feature.Slice()
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out
}

// NewVector converts a detector embedding into the stored representation.
func NewVector(feature []float64) pgvector.Vector {
	raw := make([]float32, len(feature))
	for i, v := range feature {
		raw[i] = float32(v)
	}
	return pgvector.NewVector(raw)
}
