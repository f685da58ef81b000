package units

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentavail/internal/domain/shared/events"
	"rentavail/internal/domain/shared/money"
)

var (
	ErrUnitNotFound  = errors.New("units: unit not found")
	ErrTitleRequired = errors.New("units: title is required")
	ErrNightsRange   = errors.New("units: min nights must be <= max nights")
	ErrInvalidState  = errors.New("units: invalid state transition")
	ErrIDRequired    = errors.New("units: id is required")
	ErrHostRequired  = errors.New("units: host is required")
)

type UnitID string
type HostID string

type UnitState string

const (
	UnitActive    UnitState = "ACTIVE"
	UnitSuspended UnitState = "SUSPENDED"
)

// Unit is the directory entry for a bookable rental unit: the nightly rate and
// the timezone every calendar day of the unit is evaluated in.
type Unit struct {
	ID          UnitID
	Host        HostID
	Title       string
	Currency    string
	NightlyRate money.Minor
	Timezone    string
	Lat         float64
	Lon         float64
	MinNights   int
	MaxNights   int
	State       UnitState
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id UnitID) (*Unit, error)
	Save(ctx context.Context, unit *Unit) error
	List(ctx context.Context) ([]*Unit, error)
}

type CreateUnitParams struct {
	ID          UnitID
	Host        HostID
	Title       string
	Currency    string
	NightlyRate money.Minor
	Timezone    string
	Lat         float64
	Lon         float64
	MinNights   int
	MaxNights   int
	Now         time.Time
}

func NewUnit(params CreateUnitParams) (*Unit, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	rate, err := money.New(params.NightlyRate, params.Currency)
	if err != nil {
		return nil, err
	}
	minNights := params.MinNights
	if minNights < 1 {
		minNights = 1
	}
	if params.MaxNights > 0 && minNights > params.MaxNights {
		return nil, ErrNightsRange
	}
	tz := strings.TrimSpace(params.Timezone)
	if tz == "" {
		tz = ZoneForCoordinates(params.Lat, params.Lon)
	}
	if _, err := LoadLocation(tz); err != nil {
		return nil, err
	}

	unit := &Unit{
		ID:          params.ID,
		Host:        params.Host,
		Title:       strings.TrimSpace(params.Title),
		Currency:    rate.Currency,
		NightlyRate: rate.Amount,
		Timezone:    tz,
		Lat:         params.Lat,
		Lon:         params.Lon,
		MinNights:   minNights,
		MaxNights:   params.MaxNights,
		State:       UnitActive,
		CreatedAt:   params.Now.UTC(),
		UpdatedAt:   params.Now.UTC(),
	}
	unit.Record(UnitRegistered{UnitID: unit.ID, HostID: unit.Host, Timezone: tz, At: unit.CreatedAt})
	return unit, nil
}

// NightlyPrice returns the nightly rate as Money in the unit's currency.
func (u *Unit) NightlyPrice() money.Money {
	return money.Money{Amount: u.NightlyRate, Currency: u.Currency}
}

// Bookable reports whether the unit currently accepts stays.
func (u *Unit) Bookable() bool {
	return u.State == UnitActive
}

func (u *Unit) ChangeRate(rate money.Minor, now time.Time) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	previous := u.NightlyRate
	u.NightlyRate = rate
	u.UpdatedAt = now.UTC()
	u.Record(UnitRateChanged{UnitID: u.ID, Previous: previous, Current: rate, At: u.UpdatedAt})
	return nil
}

func (u *Unit) Suspend(reason string, now time.Time) error {
	if u.State != UnitActive {
		return ErrInvalidState
	}
	u.State = UnitSuspended
	u.UpdatedAt = now.UTC()
	u.Record(UnitSuspendedEvent{UnitID: u.ID, Reason: reason, At: u.UpdatedAt})
	return nil
}
