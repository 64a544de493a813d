package feed

import (
	"context"
	"log"
	"time"

	"faculty-presence-backend/config"
	"faculty-presence-backend/internal/presence"
	"faculty-presence-backend/internal/schedule"
)

// SubjectLister enumerates the tracked faculty members.
type SubjectLister interface {
	AllSubjects(ctx context.Context) ([]string, error)
}

// TimetableService periodically derives "in class right now" statuses
// from the timetable and feeds them in as timetable-sourced
// observations. It only ever asserts InClass: a gap in the schedule is
// not evidence of availability, so nothing is emitted for it.
type TimetableService struct {
	cfg      *config.TimetableSyncConfig
	subjects SubjectLister
	entries  schedule.EntrySource
	applier  Applier
	now      func() time.Time
}

// NewTimetableService creates a timetable sync job.
func NewTimetableService(cfg *config.TimetableSyncConfig, subjects SubjectLister, entries schedule.EntrySource, applier Applier) *TimetableService {
	return &TimetableService{
		cfg:      cfg,
		subjects: subjects,
		entries:  entries,
		applier:  applier,
		now:      time.Now,
	}
}

// Run starts the sync loop.
func (s *TimetableService) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Timetable sync is disabled. Not starting.")
		return
	}
	log.Println("Starting timetable sync service...")

	s.SyncOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Timetable sync service shutting down.")
			return
		case <-timer.C:
			s.SyncOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SyncOnce derives and applies timetable-based observations for every
// faculty member currently inside a scheduled slot.
func (s *TimetableService) SyncOnce(ctx context.Context) {
	now := s.now()
	if s.cfg.Timezone != "" {
		loc, err := time.LoadLocation(s.cfg.Timezone)
		if err != nil {
			log.Printf("Error loading timetable sync timezone %q: %v", s.cfg.Timezone, err)
			return
		}
		now = now.In(loc)
	}

	subjects, err := s.subjects.AllSubjects(ctx)
	if err != nil {
		log.Printf("Error listing faculty for timetable sync: %v", err)
		return
	}

	resolver := schedule.NewResolver(s.entries)
	applied := 0
	for _, subject := range subjects {
		res := resolver.Resolve(ctx, subject, now)
		if res.Status != presence.StatusBusy {
			continue
		}
		obs := presence.Observation{
			Subject:    subject,
			Status:     presence.StatusInClass,
			Source:     presence.SourceTimetable,
			ObservedAt: now.UTC(),
		}
		if _, changed := s.applier.Apply(obs); changed {
			applied++
		}
	}

	log.Printf("Timetable sync cycle finished: %d of %d faculty marked in class.", applied, len(subjects))
}
