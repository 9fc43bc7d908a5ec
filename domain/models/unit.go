package models

type Unit struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"not null"`
	Code string `gorm:"index"`
	Timestamps

	Departments []Department `gorm:"foreignKey:UnitID"`
	Areas       []Area       `gorm:"foreignKey:UnitID"`
}

func (Unit) TableName() string {
	return "units"
}
