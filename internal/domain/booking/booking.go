package booking

import (
	"context"
	"errors"
	"time"

	"rentavail/internal/domain/availability"
	"rentavail/internal/domain/pricing"
	"rentavail/internal/domain/shared/daterange"
	"rentavail/internal/domain/shared/events"
	"rentavail/internal/domain/units"
)

var (
	ErrInvalidGuests    = errors.New("booking: guests count must be positive")
	ErrInvalidState     = errors.New("booking: invalid state transition")
	ErrGuestRequired    = errors.New("booking: guest id required")
	ErrBookingNotFound  = errors.New("booking: not found")
	ErrQuoteUnversioned = errors.New("booking: quote must carry a pricing version")
)

type BookingID string

type BookingState string

const (
	StatePending    BookingState = "PENDING"
	StateAccepted   BookingState = "ACCEPTED"
	StateDeclined   BookingState = "DECLINED"
	StateConfirmed  BookingState = "CONFIRMED"
	StateCancelled  BookingState = "CANCELLED"
	StateCheckedIn  BookingState = "CHECKED_IN"
	StateCheckedOut BookingState = "CHECKED_OUT"
)

// Occupying reports whether a booking in state s holds the unit's nights.
func (s BookingState) Occupying() bool {
	switch s {
	case StatePending, StateAccepted, StateConfirmed, StateCheckedIn:
		return true
	}
	return false
}

type Booking struct {
	ID        BookingID
	UnitID    units.UnitID
	GuestID   string
	Range     daterange.DateRange
	Guests    int
	Currency  string
	Quote     pricing.Quote
	State     BookingState
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	// ListByUnit returns bookings whose stay intersects [from, to).
	ListByUnit(ctx context.Context, unitID units.UnitID, from, to time.Time) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	UnitID    units.UnitID
	GuestID   string
	Range     daterange.DateRange
	Guests    int
	Currency  string
	Quote     pricing.Quote
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.Quote.PricingVersion == "" {
		return nil, ErrQuoteUnversioned
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:        params.ID,
		UnitID:    params.UnitID,
		GuestID:   params.GuestID,
		Range:     params.Range,
		Guests:    params.Guests,
		Currency:  params.Currency,
		Quote:     params.Quote,
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(BookingRequested{BookingID: b.ID, UnitID: b.UnitID, GuestID: b.GuestID, Range: b.Range, GuestsCount: b.Guests, Quote: b.Quote, At: now})
	return b, nil
}

// OccupancyRecord exposes the booking to the occupancy normalizer.
func (b *Booking) OccupancyRecord() availability.BookingRecord {
	return availability.BookingRecord{
		ID:       string(b.ID),
		UnitID:   string(b.UnitID),
		Status:   string(b.State),
		CheckIn:  b.Range.CheckIn,
		CheckOut: b.Range.CheckOut,
	}
}

func (b *Booking) Accept(now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateAccepted
	b.UpdatedAt = now.UTC()
	b.Record(BookingAccepted{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Decline(reason string, now time.Time) error {
	if b.State != StatePending && b.State != StateAccepted {
		return ErrInvalidState
	}
	b.State = StateDeclined
	b.UpdatedAt = now.UTC()
	b.Record(BookingDeclined{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Confirm(now time.Time) error {
	if b.State != StateAccepted && b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, UnitID: b.UnitID, Range: b.Range, TotalMinor: int64(b.Quote.TotalMinor), At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.State {
	case StatePending, StateAccepted, StateConfirmed:
	default:
		return ErrInvalidState
	}
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, UnitID: b.UnitID, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckIn(now time.Time) error {
	if b.State != StateConfirmed {
		return ErrInvalidState
	}
	b.State = StateCheckedIn
	b.UpdatedAt = now.UTC()
	b.Record(CheckInCompleted{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckOut(now time.Time) error {
	if b.State != StateCheckedIn {
		return ErrInvalidState
	}
	b.State = StateCheckedOut
	b.UpdatedAt = now.UTC()
	b.Record(CheckOutCompleted{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}
