package availability

import (
	"errors"
	"sync"
	"time"

	"rentavail/internal/domain/shared/daterange"
)

var ErrWindowPolicy = errors.New("availability: window policy values must be positive")

type WindowState string

const (
	WindowStable    WindowState = "stable"
	WindowExtending WindowState = "extending"
)

// WindowPolicy sizes the rolling horizon, in days.
type WindowPolicy struct {
	Horizon   int
	Threshold int
	Extension int
	ViewSpan  int
}

func DefaultWindowPolicy() WindowPolicy {
	return WindowPolicy{Horizon: 90, Threshold: 30, Extension: 60, ViewSpan: 31}
}

func (p WindowPolicy) Validate() error {
	if p.Horizon <= 0 || p.Threshold < 0 || p.Extension <= 0 || p.ViewSpan <= 0 {
		return ErrWindowPolicy
	}
	return nil
}

// Stamp orders requests issued by one WindowManager.
type Stamp uint64

// WindowManager owns the query horizon of one unit for one caller session.
// The horizon only grows; only SwitchUnit resets it.
type WindowManager struct {
	mu       sync.Mutex
	policy   WindowPolicy
	unitID   string
	window   Window
	state    WindowState
	position daterange.Day
	issued   Stamp
}

func NewWindowManager(policy WindowPolicy, unitID string, today daterange.Day, loc *time.Location) (*WindowManager, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	m := &WindowManager{policy: policy}
	m.reset(unitID, today, loc)
	return m, nil
}

func (m *WindowManager) reset(unitID string, today daterange.Day, loc *time.Location) {
	m.unitID = unitID
	m.window = Window{Start: today, End: today.AddDays(m.policy.Horizon), Location: loc}
	m.state = WindowStable
	m.position = today
}

// Snapshot is a consistent view of the manager.
type Snapshot struct {
	UnitID   string
	Window   Window
	State    WindowState
	Position daterange.Day
	Latest   Stamp
}

func (m *WindowManager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *WindowManager) snapshot() Snapshot {
	return Snapshot{UnitID: m.unitID, Window: m.window, State: m.state, Position: m.position, Latest: m.issued}
}

// Navigate moves the displayed span to [position, position+ViewSpan) and
// extends the horizon while the last displayed day is within Threshold days
// of End. Positions before Start are clamped to Start.
func (m *WindowManager) Navigate(position daterange.Day) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if position < m.window.Start {
		position = m.window.Start
	}
	m.position = position
	lastVisible := position.AddDays(m.policy.ViewSpan - 1)
	for lastVisible >= m.window.End.AddDays(-m.policy.Threshold) {
		m.window.End = m.window.End.AddDays(m.policy.Extension)
		m.state = WindowExtending
	}
	return m.snapshot()
}

// Begin issues the stamp for a new query of the current window.
func (m *WindowManager) Begin() (Stamp, Window) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued++
	return m.issued, m.window
}

// Accept reports whether a response carrying stamp may be applied. Only the
// most recently issued stamp is accepted.
func (m *WindowManager) Accept(stamp Stamp) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stamp != m.issued {
		return false
	}
	m.state = WindowStable
	return true
}

// SwitchUnit resets both bounds relative to today. Stamps keep counting so
// responses for the previous unit are discarded.
func (m *WindowManager) SwitchUnit(unitID string, today daterange.Day, loc *time.Location) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset(unitID, today, loc)
	return m.snapshot()
}

func (m *WindowManager) UnitID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unitID
}
