package model

import "time"

// Faculty represents a tracked faculty member's directory entry. SubjectID
// is the identifier the presence engine keys on; it is owned by the
// profile system and never changes.
type Faculty struct {
	ID           int64  `gorm:"primaryKey"`
	SubjectID    string `gorm:"uniqueIndex;size:64;not null"`
	DepartmentID int64  `gorm:"index;not null"`
	DisplayName  string `gorm:"size:256;not null"`
	Designation  string `gorm:"size:128"`
	CabinLabel   string `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Associations
	Department Department `gorm:"constraint:OnDelete:CASCADE"`
}
