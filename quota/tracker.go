// Package quota tracks how many messages each client address has sent in its
// current daily window.
package quota

import (
	"sync"
	"time"

	"emam3/chat-relay/constants"
)

// Clock returns the current time.
type Clock func() time.Time

// Record is the quota state for one client identifier.
type Record struct {
	Count   int
	ResetAt time.Time
}

// Tracker maps client identifiers to their Record. Records are created on first
// use and kept for the lifetime of the process.
type Tracker struct {
	mu      sync.Mutex
	records map[string]*Record

	limit  int
	window time.Duration
	clock  Clock
}

type Option func(*Tracker)

func WithLimit(n int) Option {
	return func(t *Tracker) { t.limit = n }
}

func WithWindow(d time.Duration) Option {
	return func(t *Tracker) { t.window = d }
}

func WithClock(c Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

func New(opts ...Option) *Tracker {
	t := &Tracker{
		records: make(map[string]*Record),
		limit:   constants.MaxMessages,
		window:  constants.ResetInterval,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Admit reports whether clientID may send another message at now, counting it
// if so. An expired record is replaced rather than incremented.
func (t *Tracker) Admit(clientID string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[clientID]
	if !ok || now.After(rec.ResetAt) {
		rec = &Record{ResetAt: now.Add(t.window)}
		t.records[clientID] = rec
	}

	if rec.Count >= t.limit {
		return false
	}
	rec.Count++
	return true
}

// AdmitNow is Admit using the tracker's clock.
func (t *Tracker) AdmitNow(clientID string) bool {
	return t.Admit(clientID, t.clock())
}

// Lookup returns a copy of the record for clientID.
func (t *Tracker) Lookup(clientID string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[clientID]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Len returns the number of client identifiers seen so far.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

func (t *Tracker) Limit() int {
	return t.limit
}

func (t *Tracker) Now() time.Time {
	return t.clock()
}
