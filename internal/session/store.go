// Per-session haircut adjustment state. Sessions are identified by an opaque
// client-chosen string and hold nothing but the latest adjustments, so losing
// one on restart or eviction only resets the fit back to defaults.
package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Martin-Chauke/Legend-Cut/internal/overlay"
)

// Update carries the adjustment fields present in a client request. Nil
// fields were omitted.
type Update struct {
	Scale    *float64
	Rotation *float64
	X        *int
	Y        *int
}

type record struct {
	adjustments overlay.Adjustments
	updatedAt   time.Time
}

// Store maps session IDs to their current adjustments. When merge is false
// (the default) each update replaces the whole set, with omitted fields
// falling back to defaults; when true, omitted fields keep their previous
// values. Entries idle longer than ttl are evicted by a background janitor;
// a zero ttl disables eviction.
type Store struct {
	mu      sync.RWMutex
	records map[string]*record
	merge   bool
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
	log     *logrus.Logger
}

func NewStore(ttl time.Duration, merge bool, log *logrus.Logger) *Store {
	s := &Store{
		records: make(map[string]*record),
		merge:   merge,
		ttl:     ttl,
		done:    make(chan struct{}),
		log:     log,
	}
	if ttl > 0 {
		go s.janitor()
	}
	return s
}

// Get returns the session's adjustments and whether the session exists.
// Unknown sessions report defaults.
func (s *Store) Get(id string) (overlay.Adjustments, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return overlay.DefaultAdjustments(), false
	}
	return rec.adjustments, true
}

// Apply folds an update into the session, creating it if needed, and returns
// the resulting adjustments.
func (s *Store) Apply(id string, u Update) overlay.Adjustments {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := overlay.DefaultAdjustments()
	if s.merge {
		if rec, ok := s.records[id]; ok {
			base = rec.adjustments
		}
	}
	if u.Scale != nil {
		base.Scale = *u.Scale
	}
	if u.Rotation != nil {
		base.Rotation = *u.Rotation
	}
	if u.X != nil {
		base.X = *u.X
	}
	if u.Y != nil {
		base.Y = *u.Y
	}

	s.records[id] = &record{adjustments: base, updatedAt: time.Now()}
	return base
}

// Touch refreshes the session's idle timer without changing adjustments.
// No-op for unknown sessions.
func (s *Store) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		rec.updatedAt = time.Now()
	}
}

// Reset drops the session so the next frame renders with defaults. Reports
// whether a record existed; resetting an unknown session is not an error.
func (s *Store) Reset(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[id]
	delete(s.records, id)
	return ok
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close stops the eviction janitor.
func (s *Store) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Store) janitor() {
	interval := s.ttl / 2
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

func (s *Store) evictIdle() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	var evicted int
	for id, rec := range s.records {
		if rec.updatedAt.Before(cutoff) {
			delete(s.records, id)
			evicted++
		}
	}
	s.mu.Unlock()

	if evicted > 0 {
		s.log.WithField("count", evicted).Debug("Evicted idle sessions")
	}
}
