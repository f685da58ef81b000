package memory

import (
	"context"
	"sync"
	"time"

	"rentavail/internal/app/middleware"
)

type idempotencyEntry struct {
	rec     middleware.IdempotencyRecord
	expires time.Time
}

// IdempotencyStore keeps command outcomes in process for ttl, matching the
// TTL index of the Mongo store. A non-positive ttl keeps them forever.
type IdempotencyStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]idempotencyEntry
	now   func() time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{ttl: ttl, items: make(map[string]idempotencyEntry), now: time.Now}
}

// Get ignores expired records even before Evict removes them.
func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[key]
	if !ok || s.expired(e, s.now()) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	return e.rec, true, nil
}

func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := idempotencyEntry{rec: rec}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.items[rec.Key] = e
	return nil
}

// Evict drops expired records and reports how many were removed.
func (s *IdempotencyStore) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for k, e := range s.items {
		if s.expired(e, now) {
			delete(s.items, k)
			removed++
		}
	}
	return removed
}

func (s *IdempotencyStore) expired(e idempotencyEntry, now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
