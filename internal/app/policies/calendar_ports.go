package policies

import (
	"context"
	"time"

	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/domain/shared/daterange"
)

// FeedFetcher downloads an external calendar feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FeedEvent is one entry of a decoded calendar feed, dates inclusive.
type FeedEvent struct {
	UID       string
	Summary   string
	Status    string
	StartDate daterange.Day
	EndDate   daterange.Day
}

// ExportedDay is one disabled day of an exported calendar.
type ExportedDay struct {
	Day  daterange.Day
	Kind domainavailability.Kind
}

// CalendarCodec converts between iCalendar documents and calendar days.
type CalendarCodec interface {
	Decode(data []byte, loc *time.Location, kind domainavailability.Kind) ([]FeedEvent, error)
	Encode(unitID, title string, days []ExportedDay, stamp time.Time) ([]byte, error)
}

// CalendarPublisher stores exported calendars where channels can poll them.
type CalendarPublisher interface {
	Publish(ctx context.Context, unitID string, ics []byte) (string, error)
}

// Holiday is a named public holiday.
type Holiday struct {
	Day  daterange.Day
	Name string
}

// HolidayCalendar lists holidays inside a window.
type HolidayCalendar interface {
	Between(r daterange.DayRange) []Holiday
}
