package ical

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentavail/internal/app/policies"
	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/domain/shared/daterange"
)

func feed(lines ...string) []byte {
	body := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//EN"}, lines...)
	body = append(body, "END:VCALENDAR", "")
	return []byte(strings.Join(body, "\r\n"))
}

func TestDecodeAllDayEventsTreatsEndAsExclusive(t *testing.T) {
	events, err := Codec{}.Decode(feed(
		"BEGIN:VEVENT",
		"UID:abc-1",
		"DTSTAMP:20250101T000000Z",
		"DTSTART;VALUE=DATE:20250601",
		"DTEND;VALUE=DATE:20250604",
		"SUMMARY:Reserved",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:abc-2",
		"DTSTAMP:20250101T000000Z",
		"DTSTART;VALUE=DATE:20250610",
		"STATUS:CANCELLED",
		"END:VEVENT",
	), time.UTC, domainavailability.KindBooked)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "abc-1", events[0].UID)
	assert.Equal(t, "Reserved", events[0].Summary)
	assert.Equal(t, daterange.MustParseDay("2025-06-01"), events[0].StartDate)
	assert.Equal(t, daterange.MustParseDay("2025-06-03"), events[0].EndDate)

	assert.Equal(t, daterange.MustParseDay("2025-06-10"), events[1].StartDate)
	assert.Equal(t, events[1].StartDate, events[1].EndDate)
	assert.Equal(t, "cancelled", events[1].Status)
}

func TestDecodeTimedBlockKeepsEveryTouchedDay(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	events, err := Codec{}.Decode(feed(
		"BEGIN:VEVENT",
		"UID:timed",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250601T200000Z",
		"DTEND:20250603T020000Z",
		"END:VEVENT",
	), tokyo, domainavailability.KindBlocked)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, daterange.MustParseDay("2025-06-02"), events[0].StartDate)
	assert.Equal(t, daterange.MustParseDay("2025-06-03"), events[0].EndDate)
}

func TestDecodeTimedReservationLeavesCheckoutDayFree(t *testing.T) {
	checkIn := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
	events, err := Codec{}.Decode(feed(
		"BEGIN:VEVENT",
		"UID:stay",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250601T140000Z",
		"DTEND:20250603T100000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:day-use",
		"DTSTAMP:20250101T000000Z",
		"DTSTART:20250610T090000Z",
		"DTEND:20250610T170000Z",
		"END:VEVENT",
	), time.UTC, domainavailability.KindBooked)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, daterange.MustParseDay("2025-06-01"), events[0].StartDate)
	assert.Equal(t, daterange.MustParseDay("2025-06-02"), events[0].EndDate)
	assert.Equal(t, events[1].StartDate, events[1].EndDate, "same-day stay keeps its check-in day")

	n := domainavailability.NewNormalizer(time.UTC)
	imported, ok := n.FromChannelEvent(domainavailability.ChannelEvent{
		UnitID: "u1", Channel: "airbnb", ExternalID: events[0].UID, Kind: domainavailability.KindBooked,
		StartDate: events[0].StartDate, EndDate: events[0].EndDate,
	})
	require.True(t, ok)
	direct, ok := n.FromBooking(domainavailability.BookingRecord{
		ID: "b1", UnitID: "u1", Status: "CONFIRMED", CheckIn: checkIn, CheckOut: checkOut,
	})
	require.True(t, ok)
	window := domainavailability.Window{
		Start: daterange.MustParseDay("2025-06-01"), End: daterange.MustParseDay("2025-06-10"), Location: time.UTC,
	}
	fromFeed := domainavailability.Aggregate([]domainavailability.OccupancyInterval{imported}, window)
	fromBooking := domainavailability.Aggregate([]domainavailability.OccupancyInterval{direct}, window)
	assert.Equal(t, fromBooking.BookedDays, fromFeed.BookedDays)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Codec{}.Decode([]byte("not a calendar"), time.UTC, domainavailability.KindBooked)
	require.Error(t, err)
}

func TestEncodeMergesRunsByKind(t *testing.T) {
	d := daterange.MustParseDay
	days := []policies.ExportedDay{
		{Day: d("2025-06-03"), Kind: domainavailability.KindBooked},
		{Day: d("2025-06-01"), Kind: domainavailability.KindBooked},
		{Day: d("2025-06-02"), Kind: domainavailability.KindBooked},
		{Day: d("2025-06-04"), Kind: domainavailability.KindBlocked},
		{Day: d("2025-06-09"), Kind: domainavailability.KindBlocked},
	}
	stamp := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	body, err := Codec{}.Encode("u1", "Loft", days, stamp)
	require.NoError(t, err)

	out := string(body)
	assert.Equal(t, 3, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "UID:u1-20250601@rentavail")
	assert.Contains(t, out, "Reserved")
	assert.Contains(t, out, "Not available")

	back, err := Codec{}.Decode(body, time.UTC, domainavailability.KindBooked)
	require.NoError(t, err)
	require.Len(t, back, 3)
	assert.Equal(t, d("2025-06-01"), back[0].StartDate)
	assert.Equal(t, d("2025-06-03"), back[0].EndDate)
	assert.Equal(t, d("2025-06-04"), back[1].StartDate)
	assert.Equal(t, d("2025-06-04"), back[1].EndDate)
}
