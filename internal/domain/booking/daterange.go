package booking

import (
	"errors"
	"time"

	"rentavail/internal/domain/shared/daterange"
)

var ErrCheckInInPast = errors.New("booking: check-in date is in the past")

// ValidateDateRange rejects stays whose check-in day, in the unit's zone, is
// before today in that zone.
func ValidateDateRange(dr daterange.DateRange, now time.Time, loc *time.Location) error {
	if daterange.DayOf(dr.CheckIn, loc) < daterange.DayOf(now, loc) {
		return ErrCheckInInPast
	}
	return nil
}
