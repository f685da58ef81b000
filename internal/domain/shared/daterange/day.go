package daterange

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DayLayout is the ISO calendar date format used on every boundary.
const DayLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

var ErrInvalidDay = errors.New("daterange: invalid calendar date")

// Day is a civil calendar date with no time component, counted in days since
// 1970-01-01. A Day only means something relative to the unit's location.
type Day int64

// NewDay builds a Day from calendar components. Out-of-range components are
// normalized the same way time.Date normalizes them.
func NewDay(year int, month time.Month, day int) Day {
	secs := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix()
	return Day(floorDiv(secs, secondsPerDay))
}

// DayOf returns the calendar date of t as observed in loc. A nil loc means UTC;
// the process-local zone is never consulted.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return NewDay(y, m, d)
}

// CeilDayOf returns the first day whose local midnight is at or after t.
func CeilDayOf(t time.Time, loc *time.Location) Day {
	d := DayOf(t, loc)
	if d.Midnight(loc).Equal(t) {
		return d
	}
	return d + 1
}

// ParseDay parses an ISO calendar date (YYYY-MM-DD).
func ParseDay(raw string) (Day, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDay, raw)
	}
	return NewDay(t.Date()), nil
}

// MustParseDay is ParseDay for fixtures and tests.
func MustParseDay(raw string) Day {
	d, err := ParseDay(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) utc() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

// Date returns the calendar components.
func (d Day) Date() (int, time.Month, int) {
	return d.utc().Date()
}

// Midnight returns the instant the day starts in loc.
func (d Day) Midnight(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, dd := d.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, loc)
}

func (d Day) AddDays(n int) Day {
	return d + Day(n)
}

func (d Day) Weekday() time.Weekday {
	return d.utc().Weekday()
}

func (d Day) String() string {
	return d.utc().Format(DayLayout)
}

func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DayRange is a half-open span of days [From, To).
type DayRange struct {
	From Day
	To   Day
}

// Inclusive converts an inclusive [start, end] pair to a half-open range.
func Inclusive(start, end Day) DayRange {
	return DayRange{From: start, To: end + 1}
}

func (r DayRange) Empty() bool {
	return r.To <= r.From
}

func (r DayRange) Len() int {
	if r.Empty() {
		return 0
	}
	return int(r.To - r.From)
}

func (r DayRange) Contains(d Day) bool {
	return d >= r.From && d < r.To
}

func (r DayRange) Overlaps(other DayRange) bool {
	return r.From < other.To && other.From < r.To
}

// Clip returns the intersection of r and bounds; the result may be empty.
func (r DayRange) Clip(bounds DayRange) DayRange {
	out := r
	if out.From < bounds.From {
		out.From = bounds.From
	}
	if out.To > bounds.To {
		out.To = bounds.To
	}
	return out
}

// Days expands the range into its constituent days.
func (r DayRange) Days() []Day {
	out := make([]Day, 0, r.Len())
	for d := r.From; d < r.To; d++ {
		out = append(out, d)
	}
	return out
}

func (r DayRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.From, r.To)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ParseBoundary accepts either an ISO calendar date, read as local midnight in
// loc, or an RFC 3339 instant.
func ParseBoundary(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) == len(DayLayout) {
		d, err := ParseDay(raw)
		if err != nil {
			return time.Time{}, err
		}
		return d.Midnight(loc), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, raw)
	}
	return t, nil
}
