// Package schedule answers forward-looking availability questions from
// timetable data, independent of the live presence store.
package schedule

import (
	"context"
	"fmt"
	"time"

	"faculty-presence-backend/internal/presence"
)

// Entry is one recurring timetable slot. Times are "HH:MM" wall-clock
// strings; the interval is half-open [StartTime, EndTime).
type Entry struct {
	Subject       string       `json:"subject"`
	DayOfWeek     time.Weekday `json:"dayOfWeek"`
	StartTime     string       `json:"startTime"`
	EndTime       string       `json:"endTime"`
	ActivityLabel string       `json:"activityLabel"`
}

// EntrySource is the read-only timetable collaborator contract.
type EntrySource interface {
	EntriesFor(ctx context.Context, subject string, day time.Weekday) ([]Entry, error)
}

// Result is a resolved future (or past) availability answer.
type Result struct {
	Status presence.StatusValue `json:"status"`
	Reason string               `json:"reason"`
}

// Resolver looks up what a subject's status would most likely be at a
// given instant. It has no notion of "now", so past instants are plain
// schedule lookups rather than errors.
type Resolver struct {
	source EntrySource
}

// NewResolver creates a resolver over the given timetable source.
func NewResolver(source EntrySource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the most likely status at the target instant. Missing
// or malformed schedule data degrades to Unknown, never to an error.
func (r *Resolver) Resolve(ctx context.Context, subject string, at time.Time) Result {
	entries, err := r.source.EntriesFor(ctx, subject, at.Weekday())
	if err != nil {
		return Result{Status: presence.StatusUnknown, Reason: "No schedule data available"}
	}

	minuteOfDay := at.Hour()*60 + at.Minute()
	for _, e := range entries {
		start, err := parseMinutes(e.StartTime)
		if err != nil {
			return Result{Status: presence.StatusUnknown, Reason: "No schedule data available"}
		}
		end, err := parseMinutes(e.EndTime)
		if err != nil {
			return Result{Status: presence.StatusUnknown, Reason: "No schedule data available"}
		}
		if minuteOfDay >= start && minuteOfDay < end {
			return Result{
				Status: presence.StatusBusy,
				Reason: fmt.Sprintf("In Class: %s", e.ActivityLabel),
			}
		}
	}

	return Result{Status: presence.StatusLikelyAvailable, Reason: "No scheduled classes at this time"}
}

// parseMinutes converts an "HH:MM" timetable string to minutes since
// midnight.
func parseMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid timetable time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
