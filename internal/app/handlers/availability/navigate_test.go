package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/domain/shared/daterange"
)

func TestBoundedSpan(t *testing.T) {
	start := daterange.NewDay(2030, 1, 1)
	grown := domainavailability.Window{Start: start, End: start.AddDays(810)}

	cases := []struct {
		name     string
		window   domainavailability.Window
		position daterange.Day
		want     daterange.DayRange
	}{
		{"within limit", domainavailability.Window{Start: start, End: start.AddDays(90)}, start,
			daterange.DayRange{From: start, To: start.AddDays(90)}},
		{"near horizon end", grown, start.AddDays(730),
			daterange.DayRange{From: start.AddDays(330), To: start.AddDays(810)}},
		{"back at the start", grown, start,
			daterange.DayRange{From: start, To: start.AddDays(480)}},
		{"middle", grown, start.AddDays(100),
			daterange.DayRange{From: start.AddDays(100), To: start.AddDays(580)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := boundedSpan(tc.window, tc.position, 480)
			assert.Equal(t, tc.want, got.Days())
			assert.LessOrEqual(t, got.Days().Len(), 480)
		})
	}
}
