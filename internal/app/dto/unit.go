package dto

import (
	"time"

	domainunits "rentavail/internal/domain/units"
)

type Unit struct {
	ID          string    `json:"id"`
	HostID      string    `json:"host_id"`
	Title       string    `json:"title"`
	Timezone    string    `json:"timezone"`
	NightlyRate MoneyDTO  `json:"nightly_rate"`
	MinNights   int       `json:"min_nights"`
	MaxNights   int       `json:"max_nights,omitempty"`
	State       string    `json:"state"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UnitCollection struct {
	Items []Unit `json:"items"`
}

func MapUnit(u *domainunits.Unit) Unit {
	return Unit{
		ID:          string(u.ID),
		HostID:      string(u.Host),
		Title:       u.Title,
		Timezone:    u.Timezone,
		NightlyRate: MapMoney(u.NightlyRate, u.Currency),
		MinNights:   u.MinNights,
		MaxNights:   u.MaxNights,
		State:       string(u.State),
		UpdatedAt:   u.UpdatedAt,
	}
}
