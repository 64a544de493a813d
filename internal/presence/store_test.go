package presence

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingObserver collects every published change for assertions.
type recordingObserver struct {
	mu     sync.Mutex
	events []Record
}

func (o *recordingObserver) Publish(subject string, rec Record) {
	o.mu.Lock()
	o.events = append(o.events, rec)
	o.mu.Unlock()
}

func (o *recordingObserver) snapshot() []Record {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Record(nil), o.events...)
}

func TestStoreGetDefault(t *testing.T) {
	s := NewStore()

	rec := s.Get("prof-nobody")
	assert.Equal(t, StatusUnknown, rec.Status)
	assert.Equal(t, SourceNone, rec.Source)
	assert.True(t, rec.UpdatedAt.IsZero())
}

func TestStoreApply(t *testing.T) {
	obs := &recordingObserver{}
	s := NewStore(obs)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// First observation is accepted and published.
	rec, changed := s.Apply(Observation{
		Subject: "prof-rao", Status: StatusBusy, Source: SourceCalendar, ObservedAt: base,
	})
	require.True(t, changed)
	assert.Equal(t, StatusBusy, rec.Status)
	assert.Equal(t, "Synced via calendar", rec.SourceLabel)
	assert.Len(t, obs.snapshot(), 1)

	// A stale observation is rejected and not published; the caller sees
	// the unchanged record rather than an error.
	rec, changed = s.Apply(Observation{
		Subject: "prof-rao", Status: StatusAvailable, Source: SourceStudentVerified, ObservedAt: base.Add(-time.Minute),
	})
	assert.False(t, changed)
	assert.Equal(t, StatusBusy, rec.Status)
	assert.Len(t, obs.snapshot(), 1)

	// A newer observation supersedes.
	rec, changed = s.Apply(Observation{
		Subject: "prof-rao", Status: StatusAvailable, Source: SourceManual, ObservedAt: base.Add(time.Minute),
	})
	assert.True(t, changed)
	assert.Equal(t, StatusAvailable, rec.Status)
	assert.Len(t, obs.snapshot(), 2)
}

func TestStoreApplyIdempotent(t *testing.T) {
	s := NewStore()
	obs := Observation{
		Subject: "prof-rao", Status: StatusBusy, Source: SourceManual,
		ObservedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	_, changed := s.Apply(obs)
	require.True(t, changed)

	// Resubmitting the exact same observation carries an equal timestamp
	// and an equal source rank, so it is rejected.
	rec, changed := s.Apply(obs)
	assert.False(t, changed)
	assert.Equal(t, StatusBusy, rec.Status)
	assert.Equal(t, SourceManual, rec.Source)
}

func TestStoreMonotonicity(t *testing.T) {
	s := NewStore()
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(1))

	statuses := []StatusValue{StatusAvailable, StatusBusy, StatusInClass, StatusLikelyAvailable, StatusUnknown}
	sources := []StatusSource{SourceStudentVerified, SourceManual, SourceTimetable, SourceCalendar, SourceAIPrediction}

	last := s.Get("prof-rao").UpdatedAt
	for i := 0; i < 1000; i++ {
		s.Apply(Observation{
			Subject:    "prof-rao",
			Status:     statuses[rng.Intn(len(statuses))],
			Source:     sources[rng.Intn(len(sources))],
			ObservedAt: base.Add(time.Duration(rng.Intn(86400)) * time.Second),
		})
		now := s.Get("prof-rao").UpdatedAt
		require.False(t, now.Before(last), "stored UpdatedAt regressed at step %d", i)
		last = now
	}
}

func TestStoreCrossSubjectIsolation(t *testing.T) {
	s := NewStore()
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// Storm subject X from many goroutines while applying a small
	// ordered sequence to subject Y.
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				s.Apply(Observation{
					Subject:    "prof-x",
					Status:     StatusBusy,
					Source:     SourceAIPrediction,
					ObservedAt: base.Add(time.Duration(g*500+i) * time.Millisecond),
				})
			}
		}(g)
	}

	for i := 0; i < 100; i++ {
		_, changed := s.Apply(Observation{
			Subject:    "prof-y",
			Status:     StatusAvailable,
			Source:     SourceManual,
			ObservedAt: base.Add(time.Duration(i+1) * time.Second),
		})
		require.True(t, changed, "apply %d for prof-y should not be disturbed by the storm on prof-x", i)
	}
	wg.Wait()

	recY := s.Get("prof-y")
	assert.Equal(t, StatusAvailable, recY.Status)
	assert.Equal(t, base.Add(100*time.Second), recY.UpdatedAt)

	recX := s.Get("prof-x")
	assert.Equal(t, StatusBusy, recX.Status)
	assert.Equal(t, base.Add(3999*time.Millisecond), recX.UpdatedAt)
}
