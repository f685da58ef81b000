package availability

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentavail/internal/domain/shared/daterange"
)

func day(raw string) daterange.Day { return daterange.MustParseDay(raw) }

func days(raw ...string) []daterange.Day {
	out := make([]daterange.Day, 0, len(raw))
	for _, r := range raw {
		out = append(out, day(r))
	}
	return out
}

func utcWindow(from, to string) Window {
	return Window{Start: day(from), End: day(to), Location: time.UTC}
}

func TestBookingExpansionExcludesCheckoutDay(t *testing.T) {
	n := NewNormalizer(time.UTC)
	iv, ok := n.FromBooking(BookingRecord{
		ID:       "b1",
		UnitID:   "u1",
		Status:   "CONFIRMED",
		CheckIn:  time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC),
	})
	require.True(t, ok)
	assert.Equal(t, SourceBooking, iv.Source)
	assert.Equal(t, "CONFIRMED", iv.StatusFilter)

	v := Aggregate([]OccupancyInterval{iv}, utcWindow("2025-06-01", "2025-06-10"))
	assert.Equal(t, days("2025-06-01", "2025-06-02"), v.BookedDays)
	assert.Empty(t, v.BlockedDays)
}

func TestBookingDaysFollowUnitTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	n := NewNormalizer(tokyo)
	// 2025-06-01T20:00Z is already June 2nd in Tokyo.
	iv, ok := n.FromBooking(BookingRecord{
		Status:   "ACCEPTED",
		CheckIn:  time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, 6, 3, 20, 0, 0, 0, time.UTC),
	})
	require.True(t, ok)
	v := Aggregate([]OccupancyInterval{iv}, Window{Start: day("2025-06-01"), End: day("2025-06-10"), Location: tokyo})
	assert.Equal(t, days("2025-06-02", "2025-06-03"), v.BookedDays)
}

func TestSameDayBookingOccupiesCheckInDay(t *testing.T) {
	iv, ok := NewNormalizer(time.UTC).FromBooking(BookingRecord{
		Status:   "PENDING",
		CheckIn:  time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, 6, 5, 17, 0, 0, 0, time.UTC),
	})
	require.True(t, ok)
	v := Aggregate([]OccupancyInterval{iv}, utcWindow("2025-06-01", "2025-06-10"))
	assert.Equal(t, days("2025-06-05"), v.BookedDays)
}

func TestNormalizerDropsMalformedRecords(t *testing.T) {
	n := NewNormalizer(time.UTC)
	checkIn := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

	_, ok := n.FromBooking(BookingRecord{Status: "CONFIRMED", CheckOut: checkIn})
	assert.False(t, ok, "missing check-in")
	_, ok = n.FromBooking(BookingRecord{Status: "CONFIRMED", CheckIn: checkIn, CheckOut: checkIn.Add(-time.Hour)})
	assert.False(t, ok, "reversed")
	_, ok = n.FromBooking(BookingRecord{Status: "CANCELLED", CheckIn: checkIn, CheckOut: checkIn.Add(48 * time.Hour)})
	assert.False(t, ok, "non-occupying status")
	_, ok = n.FromBlock(&ManualBlock{Span: BlockSpan{Kind: SpanDates, StartDate: day("2025-06-05"), EndDate: day("2025-06-04")}})
	assert.False(t, ok, "reversed block")
	_, ok = n.FromChannelEvent(ChannelEvent{UnitID: "u1", Channel: "airbnb", ExternalID: "x", Kind: "weird", StartDate: day("2025-06-05"), EndDate: day("2025-06-05")})
	assert.False(t, ok, "unknown kind")
	_, ok = n.FromChannelEvent(ChannelEvent{UnitID: "u1", Channel: "airbnb", ExternalID: "x", Kind: KindBooked, Status: "Cancelled", StartDate: day("2025-06-05"), EndDate: day("2025-06-05")})
	assert.False(t, ok, "cancelled")
}

func TestBlockPrecedence(t *testing.T) {
	n := NewNormalizer(time.UTC)
	span, err := DateSpan(day("2025-07-10"), day("2025-07-12"))
	require.NoError(t, err)
	block, ok := n.FromBlock(&ManualBlock{ID: "blk", UnitID: "u1", Span: span})
	require.True(t, ok)
	booking, ok := n.FromBooking(BookingRecord{
		ID: "r1", UnitID: "u1", Status: "CONFIRMED",
		CheckIn:  time.Date(2025, 7, 11, 15, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, 7, 13, 11, 0, 0, 0, time.UTC),
	})
	require.True(t, ok)

	v := Aggregate([]OccupancyInterval{block, booking}, utcWindow("2025-07-01", "2025-07-31"))
	assert.Equal(t, days("2025-07-11", "2025-07-12"), v.BookedDays)
	assert.Equal(t, days("2025-07-10"), v.BlockedDays)
	assert.Equal(t, days("2025-07-10", "2025-07-11", "2025-07-12"), v.Disabled())
	assert.True(t, v.IsBooked(day("2025-07-12")))
	assert.False(t, v.IsBlocked(day("2025-07-12")))
}

func TestInstantBlockCoversEveryTouchedDay(t *testing.T) {
	span, err := InstantSpan(time.Date(2025, 8, 1, 22, 0, 0, 0, time.UTC), time.Date(2025, 8, 3, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	iv, ok := NewNormalizer(time.UTC).FromBlock(&ManualBlock{ID: "b", UnitID: "u1", Span: span})
	require.True(t, ok)
	v := Aggregate([]OccupancyInterval{iv}, utcWindow("2025-08-01", "2025-08-31"))
	assert.Equal(t, days("2025-08-01", "2025-08-02", "2025-08-03"), v.BlockedDays)
}

func TestAggregateClipsToWindow(t *testing.T) {
	n := NewNormalizer(time.UTC)
	iv, ok := n.FromChannelEvent(ChannelEvent{
		UnitID: "u1", Channel: "vrbo", ExternalID: "e", Kind: KindBlocked,
		StartDate: day("2025-05-25"), EndDate: day("2025-06-10"),
	})
	require.True(t, ok)
	v := Aggregate([]OccupancyInterval{iv}, utcWindow("2025-06-01", "2025-06-05"))
	assert.Equal(t, days("2025-06-01", "2025-06-02", "2025-06-03", "2025-06-04"), v.BlockedDays)

	outside := Aggregate([]OccupancyInterval{iv}, utcWindow("2025-07-01", "2025-07-05"))
	assert.NotNil(t, outside.BlockedDays)
	assert.Empty(t, outside.BlockedDays)
}

func TestAggregateWithoutIntervals(t *testing.T) {
	v := Aggregate(nil, utcWindow("2025-06-01", "2025-06-05"))
	assert.NotNil(t, v.BookedDays)
	assert.NotNil(t, v.BlockedDays)
	assert.Empty(t, v.Disabled())
}

func TestAggregateRandomizedProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	window := utcWindow("2025-01-01", "2025-04-01")
	base := day("2024-12-15")
	for round := 0; round < 200; round++ {
		var intervals []OccupancyInterval
		naiveBooked := map[daterange.Day]bool{}
		naiveBlocked := map[daterange.Day]bool{}
		count := rng.Intn(12)
		for i := 0; i < count; i++ {
			from := base.AddDays(rng.Intn(120))
			to := from.AddDays(1 + rng.Intn(20))
			kind := KindBlocked
			if rng.Intn(2) == 0 {
				kind = KindBooked
			}
			intervals = append(intervals, OccupancyInterval{
				UnitID: "u", Kind: kind, Start: from.Midnight(time.UTC), End: to.Midnight(time.UTC),
			})
			for d := from; d < to; d++ {
				if !window.Days().Contains(d) {
					continue
				}
				if kind == KindBooked {
					naiveBooked[d] = true
				} else {
					naiveBlocked[d] = true
				}
			}
		}

		v := Aggregate(intervals, window)
		for _, d := range v.BookedDays {
			require.True(t, window.Days().Contains(d))
			require.True(t, naiveBooked[d])
			require.False(t, v.IsBlocked(d), "day %s both booked and blocked", d)
		}
		for _, d := range v.BlockedDays {
			require.True(t, window.Days().Contains(d))
			require.True(t, naiveBlocked[d])
			require.False(t, naiveBooked[d])
		}
		require.Len(t, v.BookedDays, len(naiveBooked))
		wantBlocked := 0
		for d := range naiveBlocked {
			if !naiveBooked[d] {
				wantBlocked++
			}
		}
		require.Len(t, v.BlockedDays, wantBlocked)
	}
}
