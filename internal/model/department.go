package model

import "time"

// Department represents an academic department.
type Department struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:128;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Faculty []Faculty `gorm:"foreignKey:DepartmentID"`
}
