package daterange

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayOfUsesTheGivenZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	at := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, MustParseDay("2025-06-02"), DayOf(at, tokyo))
	assert.Equal(t, MustParseDay("2025-06-01"), DayOf(at, nil))
	assert.Equal(t, Day(-1), NewDay(1969, time.December, 31))
}

func TestCeilDayOf(t *testing.T) {
	midnight := MustParseDay("2025-06-01").Midnight(time.UTC)
	assert.Equal(t, MustParseDay("2025-06-01"), CeilDayOf(midnight, time.UTC))
	assert.Equal(t, MustParseDay("2025-06-02"), CeilDayOf(midnight.Add(time.Second), time.UTC))
}

func TestParseDayRejectsInvalidDates(t *testing.T) {
	for _, raw := range []string{"2025-02-30", "2025/06/01", "", "2025-6-1"} {
		_, err := ParseDay(raw)
		assert.ErrorIs(t, err, ErrInvalidDay, raw)
	}

	var payload struct {
		On Day `json:"on"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"on":"2025-12-31"}`), &payload))
	assert.Equal(t, "2025-12-31", payload.On.String())
	assert.Error(t, json.Unmarshal([]byte(`{"on":"31.12.2025"}`), &payload))
}

func TestDayRange(t *testing.T) {
	d := MustParseDay("2025-07-10")
	single := Inclusive(d, d)
	assert.Equal(t, 1, single.Len())
	assert.True(t, single.Contains(d))
	assert.False(t, single.Contains(d.AddDays(1)))

	r := DayRange{From: d, To: d.AddDays(10)}
	clipped := r.Clip(DayRange{From: d.AddDays(5), To: d.AddDays(20)})
	assert.Equal(t, DayRange{From: d.AddDays(5), To: d.AddDays(10)}, clipped)
	assert.True(t, r.Overlaps(clipped))
	assert.False(t, r.Overlaps(DayRange{From: d.AddDays(10), To: d.AddDays(12)}), "half-open ranges that touch do not overlap")

	empty := r.Clip(DayRange{From: d.AddDays(30), To: d.AddDays(40)})
	assert.True(t, empty.Empty())
	assert.Empty(t, empty.Days())
	assert.Len(t, r.Days(), 10)
}
