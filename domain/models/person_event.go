package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// PersonEvent records one camera capture. PersonID is nil for unknown faces.
type PersonEvent struct {
	ID         uuid.UUID  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	EventID    uuid.UUID  `gorm:"type:uuid;uniqueIndex"`
	PersonID   *uuid.UUID `gorm:"type:uuid;index"`
	DeviceID   int        `gorm:"not null;index"`
	AccessTime time.Time  `gorm:"not null;index"`
	Image      string
	Score      *float64
	Quality    float64
	Feature    *pgvector.Vector `gorm:"type:vector(512)"`
	CreatedAt  time.Time

	Person *Person `gorm:"foreignKey:PersonID"`
	Camera Camera  `gorm:"foreignKey:DeviceID"`
}

func (PersonEvent) TableName() string {
	return "person_events"
}
