package store

import (
	"context"
	"log"

	"faculty-presence-backend/internal/presence"
)

// journalEntry is one accepted change waiting to be persisted.
type journalEntry struct {
	subject string
	rec     presence.Record
}

// Journal persists accepted presence changes behind a buffered channel
// so the presence store never blocks on the database. Entries are
// dropped (with a log line) if the buffer fills; the journal is an
// audit trail, not the source of truth for live reads.
type Journal struct {
	store   Store
	entries chan journalEntry
}

// NewJournal creates a write-behind history journal.
func NewJournal(s Store, buffer int) *Journal {
	if buffer <= 0 {
		buffer = 256
	}
	return &Journal{
		store:   s,
		entries: make(chan journalEntry, buffer),
	}
}

// Publish satisfies presence.Observer. Never blocks.
func (j *Journal) Publish(subject string, rec presence.Record) {
	select {
	case j.entries <- journalEntry{subject: subject, rec: rec}:
	default:
		log.Printf("Status history buffer full; dropping journal entry for %s", subject)
	}
}

// Run drains the journal until the context is cancelled.
func (j *Journal) Run(ctx context.Context) {
	for {
		select {
		case e := <-j.entries:
			if err := j.store.AppendHistory(ctx, e.subject, e.rec); err != nil {
				log.Printf("Error journaling status change for %s: %v", e.subject, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Len reports the number of buffered entries, for tests.
func (j *Journal) Len() int {
	return len(j.entries)
}
