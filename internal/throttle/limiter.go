// Package throttle caps "please refresh your status" requests so a
// faculty member cannot be pinged into a notification storm.
package throttle

import (
	"fmt"
	"sync"
	"time"

	"faculty-presence-backend/internal/metrics"
)

// Result reports the outcome of a refresh request. A throttled request
// is a normal outcome, not an error.
type Result struct {
	Accepted bool      `json:"accepted"`
	Message  string    `json:"message"`
	RetryAt  time.Time `json:"retryAt,omitempty"`
}

// Limiter enforces a fixed window of at most cap requests per subject.
// Counters are partitioned per subject, like the presence store.
type Limiter struct {
	window time.Duration
	cap    int

	mu       sync.RWMutex
	counters map[string]*counter

	now func() time.Time
}

type counter struct {
	mu          sync.Mutex
	count       int
	windowStart time.Time
}

// NewLimiter creates a limiter allowing cap requests per subject within
// each window.
func NewLimiter(window time.Duration, cap int) *Limiter {
	if window <= 0 {
		window = 5 * time.Minute
	}
	if cap <= 0 {
		cap = 3
	}
	return &Limiter{
		window:   window,
		cap:      cap,
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

// Request records one refresh request for the subject and reports
// whether it is allowed. When the window is exhausted the message tells
// the caller when the next request will be accepted.
func (l *Limiter) Request(subject string) Result {
	c := l.counter(subject)
	now := l.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.windowStart) >= l.window {
		c.windowStart = now
		c.count = 0
	}

	if c.count < l.cap {
		c.count++
		return Result{
			Accepted: true,
			Message:  "Update request sent",
		}
	}

	retryAt := c.windowStart.Add(l.window)
	metrics.UpdateRequestThrottled()
	return Result{
		Accepted: false,
		Message:  fmt.Sprintf("Too many update requests; try again after %s", retryAt.UTC().Format(time.RFC3339)),
		RetryAt:  retryAt,
	}
}

func (l *Limiter) counter(subject string) *counter {
	l.mu.RLock()
	c, ok := l.counters[subject]
	l.mu.RUnlock()
	if ok {
		return c
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok = l.counters[subject]; ok {
		return c
	}
	c = &counter{}
	l.counters[subject] = c
	return c
}
