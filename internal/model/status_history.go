package model

import "time"

// StatusHistory is the append-only journal of accepted presence
// changes. Live reads go through the in-memory presence store; this
// table serves the historical "?at=" lookups and survives restarts.
type StatusHistory struct {
	ID         int64     `gorm:"autoIncrement"`
	SubjectID  string    `gorm:"size:64;not null;index;primaryKey"`
	Status     string    `gorm:"size:32;not null"`
	Source     string    `gorm:"size:32;not null"`
	ObservedAt time.Time `gorm:"not null;index;primaryKey"`
	RecordedAt time.Time `gorm:"not null"`
}
