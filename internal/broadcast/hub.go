// Package broadcast fans accepted presence changes out to live viewers.
package broadcast

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"faculty-presence-backend/internal/metrics"
	"faculty-presence-backend/internal/presence"
)

// Event pairs a subject with its newly accepted record.
type Event struct {
	Subject string          `json:"subject"`
	Record  presence.Record `json:"record"`
}

// Subscription is one viewer's live feed. Events arrive on C in the
// order they were accepted for each subject. There is no replay: a
// reconnecting viewer must re-fetch current state from the store.
type Subscription struct {
	id      string
	subject string // empty = all subjects
	ch      chan Event
	hub     *Hub
}

// C returns the event channel. It is closed when the subscription is
// cancelled or the subscriber falls too far behind.
func (s *Subscription) C() <-chan Event { return s.ch }

// Cancel detaches the subscription and closes its channel.
func (s *Subscription) Cancel() { s.hub.remove(s.id) }

// Hub delivers every published event to all matching subscriptions
// without ever blocking the publisher. A subscriber whose buffer is
// full is dropped rather than letting it backpressure the store.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	buffer int
}

// NewHub creates a hub whose subscriptions buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers a live feed for one subject, or for all subjects
// when subject is empty. Never blocks.
func (h *Hub) Subscribe(subject string) *Subscription {
	sub := &Subscription{
		id:      uuid.NewString(),
		subject: subject,
		ch:      make(chan Event, h.buffer),
		hub:     h,
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()
	return sub
}

// Publish delivers the record to every subscription matching the
// subject. Slow subscribers are dropped; the publisher never waits.
func (h *Hub) Publish(subject string, rec presence.Record) {
	ev := Event{Subject: subject, Record: rec}

	var dropped []string
	h.mu.RLock()
	for id, sub := range h.subs {
		if sub.subject != "" && sub.subject != subject {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			dropped = append(dropped, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range dropped {
		log.Printf("Dropping slow presence subscriber %s", id)
		metrics.SubscriberDropped()
		h.remove(id)
	}
}

// SubscriberCount reports how many live subscriptions are attached.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()

	if ok {
		close(sub.ch)
	}
}
