package presence

import (
	"sync"

	"faculty-presence-backend/internal/metrics"
)

// Observer is notified of every accepted presence change. Publish must
// not block; it is invoked while the subject's slot is locked, which is
// what guarantees per-subject delivery order downstream.
type Observer interface {
	Publish(subject string, rec Record)
}

// Store holds the current presence record per subject. Records are
// created lazily on first observation and live for the process
// lifetime. Contention is per subject: applies for different subjects
// never block each other.
type Store struct {
	mu        sync.RWMutex
	slots     map[string]*slot
	observers []Observer
}

type slot struct {
	mu  sync.Mutex
	rec Record
}

// NewStore creates a presence store. Observers receive every accepted
// record change.
func NewStore(observers ...Observer) *Store {
	return &Store{
		slots:     make(map[string]*slot),
		observers: observers,
	}
}

// Get returns the current record for the subject, or the default
// unknown record if the subject has never been observed. Never fails.
func (s *Store) Get(subject string) Record {
	s.mu.RLock()
	sl, ok := s.slots[subject]
	s.mu.RUnlock()
	if !ok {
		return defaultRecord()
	}

	sl.mu.Lock()
	rec := sl.rec
	sl.mu.Unlock()
	return rec
}

// Apply reconciles the observation against the stored record and, if it
// supersedes, installs and broadcasts it. Returns the resulting record
// and whether it changed. A rejected (stale) observation is not an
// error; the caller just sees changed=false.
func (s *Store) Apply(obs Observation) (Record, bool) {
	sl := s.slot(obs.Subject)

	sl.mu.Lock()
	defer sl.mu.Unlock()

	if !Supersedes(sl.rec, obs) {
		metrics.ObservationRejected(string(obs.Source))
		return sl.rec, false
	}

	sl.rec = Record{
		Status:      obs.Status,
		Source:      obs.Source,
		SourceLabel: obs.Source.Label(),
		UpdatedAt:   obs.ObservedAt,
	}
	metrics.ObservationAccepted(string(obs.Source))

	for _, o := range s.observers {
		o.Publish(obs.Subject, sl.rec)
	}
	return sl.rec, true
}

// slot returns the subject's slot, creating it on first use.
func (s *Store) slot(subject string) *slot {
	s.mu.RLock()
	sl, ok := s.slots[subject]
	s.mu.RUnlock()
	if ok {
		return sl
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok = s.slots[subject]; ok {
		return sl
	}
	sl = &slot{rec: defaultRecord()}
	s.slots[subject] = sl
	return sl
}
