package units

import (
	"time"

	"rentavail/internal/domain/shared/money"
)

type UnitRegistered struct {
	UnitID   UnitID
	HostID   HostID
	Timezone string
	At       time.Time
}

func (e UnitRegistered) EventName() string     { return "unit.registered" }
func (e UnitRegistered) AggregateID() string   { return string(e.UnitID) }
func (e UnitRegistered) OccurredAt() time.Time { return e.At }

type UnitRateChanged struct {
	UnitID   UnitID
	Previous money.Minor
	Current  money.Minor
	At       time.Time
}

func (e UnitRateChanged) EventName() string     { return "unit.rate_changed" }
func (e UnitRateChanged) AggregateID() string   { return string(e.UnitID) }
func (e UnitRateChanged) OccurredAt() time.Time { return e.At }

type UnitSuspendedEvent struct {
	UnitID UnitID
	Reason string
	At     time.Time
}

func (e UnitSuspendedEvent) EventName() string     { return "unit.suspended" }
func (e UnitSuspendedEvent) AggregateID() string   { return string(e.UnitID) }
func (e UnitSuspendedEvent) OccurredAt() time.Time { return e.At }
