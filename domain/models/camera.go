package models

type Camera struct {
	ID     int    `gorm:"primaryKey"`
	AreaID int    `gorm:"not null;index"`
	Name   string `gorm:"not null"`
	Code   string `gorm:"index"`
	Link   string // Stream URL
	Timestamps

	Area Area `gorm:"foreignKey:AreaID"`
}

func (Camera) TableName() string {
	return "cameras"
}
