package dto

import (
	"rentavail/internal/app/policies"
	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/domain/shared/daterange"
)

type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type Occupancy struct {
	UnitID       string    `json:"unit_id"`
	Timezone     string    `json:"timezone"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	BookedDays   []string  `json:"booked_days"`
	BlockedDays  []string  `json:"blocked_days"`
	DisabledDays []string  `json:"disabled_days"`
	Holidays     []Holiday `json:"holidays"`
	Degraded     bool      `json:"degraded"`
	Warning      string    `json:"warning,omitempty"`
}

func MapOccupancy(unitID, timezone string, v domainavailability.Verdict, holidays []policies.Holiday) Occupancy {
	out := Occupancy{
		UnitID:       unitID,
		Timezone:     timezone,
		From:         v.Window.Start.String(),
		To:           v.Window.End.String(),
		BookedDays:   MapDays(v.BookedDays),
		BlockedDays:  MapDays(v.BlockedDays),
		DisabledDays: MapDays(v.Disabled()),
		Holidays:     make([]Holiday, 0, len(holidays)),
		Degraded:     v.Degraded,
		Warning:      v.Warning,
	}
	for _, h := range holidays {
		out.Holidays = append(out.Holidays, Holiday{Date: h.Day.String(), Name: h.Name})
	}
	return out
}

// MapDays renders days as ISO dates; never nil so JSON carries [].
func MapDays(days []daterange.Day) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.String())
	}
	return out
}
