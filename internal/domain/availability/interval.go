package availability

import (
	"errors"
	"time"
)

var ErrInvalidInterval = errors.New("availability: interval end must be after start")

// Source identifies where an occupancy record came from.
type Source string

const (
	SourceBooking       Source = "booking"
	SourceManualBlock   Source = "manual-block"
	SourceChannelImport Source = "channel-import"
)

// Kind is the occupancy verdict an interval contributes to.
type Kind string

const (
	KindBooked  Kind = "booked"
	KindBlocked Kind = "blocked"
)

func (k Kind) Valid() bool {
	return k == KindBooked || k == KindBlocked
}

// OccupancyInterval is a normalized half-open span of instants [Start, End).
// Start and End always fall on the boundaries the normalizer chose for the
// unit's location; End is strictly after Start.
type OccupancyInterval struct {
	UnitID       string
	Source       Source
	Kind         Kind
	Start        time.Time
	End          time.Time
	StatusFilter string
	Reference    string
}

func (i OccupancyInterval) Validate() error {
	if i.Start.IsZero() || i.End.IsZero() || !i.End.After(i.Start) {
		return ErrInvalidInterval
	}
	if !i.Kind.Valid() {
		return ErrInvalidInterval
	}
	return nil
}

// BookingRecord is a raw booking row as supplied by the record store.
type BookingRecord struct {
	ID       string
	UnitID   string
	Status   string
	CheckIn  time.Time
	CheckOut time.Time
}

// DefaultOccupyingStatuses lists booking states that hold the unit's nights.
var DefaultOccupyingStatuses = []string{"PENDING", "ACCEPTED", "CONFIRMED", "CHECKED_IN"}
