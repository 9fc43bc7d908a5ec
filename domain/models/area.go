package models

// Area groups the cameras of one physical zone inside a unit.
type Area struct {
	ID     int    `gorm:"primaryKey"`
	UnitID int    `gorm:"not null;index"`
	Name   string `gorm:"not null"`
	Timestamps

	Cameras []Camera `gorm:"foreignKey:AreaID"`
}

func (Area) TableName() string {
	return "areas"
}
