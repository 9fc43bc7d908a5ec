package models

type Department struct {
	ID       int    `gorm:"primaryKey"`
	UnitID   int    `gorm:"not null;index"`
	ParentID *int   `gorm:"index"`
	Name     string `gorm:"not null"`
	Code     string
	Timestamps

	Unit    Unit     `gorm:"foreignKey:UnitID"`
	Persons []Person `gorm:"foreignKey:DepartmentID"`
}

func (Department) TableName() string {
	return "departments"
}
