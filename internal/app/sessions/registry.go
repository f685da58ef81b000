// Package sessions scopes calendar windows to caller sessions so that one
// caller's scrolling never extends another caller's horizon.
package sessions

import (
	"errors"
	"strings"
	"sync"
	"time"

	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/domain/shared/daterange"
)

var ErrSessionRequired = errors.New("sessions: session id is required")

type entry struct {
	manager  *domainavailability.WindowManager
	lastSeen time.Time
}

type Registry struct {
	mu      sync.Mutex
	policy  domainavailability.WindowPolicy
	entries map[string]*entry
	now     func() time.Time
}

func NewRegistry(policy domainavailability.WindowPolicy, now func() time.Time) (*Registry, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &Registry{policy: policy, entries: make(map[string]*entry), now: now}, nil
}

// Manager returns the session's window manager, pointed at unitID. A session
// tracks one unit at a time; asking for another unit resets its bounds.
func (r *Registry) Manager(sessionID, unitID string, loc *time.Location) (*domainavailability.WindowManager, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	now := r.now()
	today := daterange.DayOf(now, loc)

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sessionID]
	if !ok {
		m, err := domainavailability.NewWindowManager(r.policy, unitID, today, loc)
		if err != nil {
			return nil, err
		}
		e = &entry{manager: m}
		r.entries[sessionID] = e
	} else if e.manager.UnitID() != unitID {
		e.manager.SwitchUnit(unitID, today, loc)
	}
	e.lastSeen = now
	return e.manager, nil
}

// End discards a session's windows.
func (r *Registry) End(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sessionID)
}

// EvictIdle drops sessions not seen for ttl and reports how many went.
func (r *Registry) EvictIdle(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			evicted++
		}
	}
	return evicted
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
