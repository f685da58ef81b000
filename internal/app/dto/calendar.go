package dto

import (
	domainavailability "rentavail/internal/domain/availability"
)

type CalendarWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CalendarView is the answer to a navigation request. When Superseded is
// set a newer request was issued meanwhile and Occupancy must be ignored.
type CalendarView struct {
	SessionID  string         `json:"session_id"`
	UnitID     string         `json:"unit_id"`
	Position   string         `json:"position"`
	Window     CalendarWindow `json:"window"`
	State      string         `json:"state"`
	Stamp      uint64         `json:"stamp"`
	Superseded bool           `json:"superseded"`
	Occupancy  *Occupancy     `json:"occupancy,omitempty"`
}

func MapWindow(w domainavailability.Window) CalendarWindow {
	return CalendarWindow{Start: w.Start.String(), End: w.End.String()}
}
