package model

import "time"

// TimetableEntry is one recurring class slot for a faculty member.
// StartTime and EndTime are "HH:MM" wall-clock strings; the occupied
// interval is [StartTime, EndTime).
type TimetableEntry struct {
	ID            int64  `gorm:"autoIncrement;primaryKey"`
	SubjectID     string `gorm:"uniqueIndex:idx_timetable_slot;size:64;not null"`
	DayOfWeek     int    `gorm:"uniqueIndex:idx_timetable_slot;not null"` // time.Weekday: 0=Sunday
	StartTime     string `gorm:"uniqueIndex:idx_timetable_slot;size:8;not null"`
	EndTime       string `gorm:"size:8;not null"`
	ActivityLabel string `gorm:"size:256;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
