package models

import (
	"time"

	"gorm.io/gorm"
)

// Record status values shared by organizational tables.
const (
	StatusInactive = 0
	StatusActive   = 1
)

// Timestamps is embedded by every organizational model. A non-null DeletedAt
// hides the row from all default-scoped queries.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	Status    int            `gorm:"default:1"`
}
