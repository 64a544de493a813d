package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"faculty-presence-backend/internal/model"
	"faculty-presence-backend/internal/presence"
	"faculty-presence-backend/internal/schedule"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB
	UpsertTimetable(ctx context.Context, subject string, entries []schedule.Entry) error
	EntriesFor(ctx context.Context, subject string, day time.Weekday) ([]schedule.Entry, error)
	AllSubjects(ctx context.Context) ([]string, error)
	AppendHistory(ctx context.Context, subject string, rec presence.Record) error
	HistoryAsOf(ctx context.Context, subject string, at time.Time) (*model.StatusHistory, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for the directory read paths.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// UpsertTimetable replaces the subject's recurring schedule. Slots that
// survive the replacement are updated in place so a repeated PUT of the
// same timetable is a no-op.
func (s *gormStore) UpsertTimetable(ctx context.Context, subject string, entries []schedule.Entry) error {
	rows := make([]model.TimetableEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, model.TimetableEntry{
			SubjectID:     subject,
			DayOfWeek:     int(e.DayOfWeek),
			StartTime:     e.StartTime,
			EndTime:       e.EndTime,
			ActivityLabel: e.ActivityLabel,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Where("subject_id = ?", subject)
		if len(rows) > 0 {
			keep := make([][]any, 0, len(rows))
			for _, r := range rows {
				keep = append(keep, []any{r.DayOfWeek, r.StartTime})
			}
			del = del.Where("(day_of_week, start_time) NOT IN ?", keep)
		}
		if err := del.Delete(&model.TimetableEntry{}).Error; err != nil {
			return fmt.Errorf("failed to delete stale timetable entries for %s: %w", subject, err)
		}

		if len(rows) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "subject_id"}, {Name: "day_of_week"}, {Name: "start_time"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"end_time", "activity_label", "updated_at"}),
		}).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to upsert timetable entries for %s: %w", subject, err)
		}
		return nil
	})
}

// EntriesFor satisfies the schedule.EntrySource contract.
func (s *gormStore) EntriesFor(ctx context.Context, subject string, day time.Weekday) ([]schedule.Entry, error) {
	var rows []model.TimetableEntry
	if err := s.db.WithContext(ctx).
		Where("subject_id = ? AND day_of_week = ?", subject, int(day)).
		Order("start_time").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch timetable entries for %s: %w", subject, err)
	}

	entries := make([]schedule.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, schedule.Entry{
			Subject:       r.SubjectID,
			DayOfWeek:     time.Weekday(r.DayOfWeek),
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			ActivityLabel: r.ActivityLabel,
		})
	}
	return entries, nil
}

// AllSubjects lists the subject IDs of every tracked faculty member.
func (s *gormStore) AllSubjects(ctx context.Context) ([]string, error) {
	var subjects []string
	if err := s.db.WithContext(ctx).
		Model(&model.Faculty{}).
		Pluck("subject_id", &subjects).Error; err != nil {
		return nil, fmt.Errorf("failed to list faculty subjects: %w", err)
	}
	return subjects, nil
}

// AppendHistory journals one accepted presence change.
func (s *gormStore) AppendHistory(ctx context.Context, subject string, rec presence.Record) error {
	row := model.StatusHistory{
		SubjectID:  subject,
		Status:     string(rec.Status),
		Source:     string(rec.Source),
		ObservedAt: rec.UpdatedAt,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append status history for %s: %w", subject, err)
	}
	return nil
}

// HistoryAsOf returns the last accepted record at or before the given
// instant, or nil when the subject has no history that far back.
func (s *gormStore) HistoryAsOf(ctx context.Context, subject string, at time.Time) (*model.StatusHistory, error) {
	var row model.StatusHistory
	err := s.db.WithContext(ctx).
		Where("subject_id = ? AND observed_at <= ?", subject, at).
		Order("observed_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed historical status lookup for %s: %w", subject, err)
	}
	return &row, nil
}
