package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManualBlock(t *testing.T) {
	span, err := DateSpan(day("2025-09-01"), day("2025-09-03"))
	require.NoError(t, err)
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	b, err := NewManualBlock(CreateBlockParams{ID: "b1", UnitID: "u1", Span: span, Label: " Owner stay ", Color: "#AABBCC", Now: now})
	require.NoError(t, err)
	assert.Equal(t, "Owner stay", b.Label)
	assert.Equal(t, "#aabbcc", b.Color)
	require.Len(t, b.PendingEvents(), 1)
	assert.Equal(t, "calendar.blocked", b.PendingEvents()[0].EventName())

	_, err = NewManualBlock(CreateBlockParams{ID: "b1", UnitID: "u1", Span: span, Label: "", Now: now})
	require.ErrorIs(t, err, ErrLabelRequired)
	_, err = NewManualBlock(CreateBlockParams{ID: "b1", UnitID: "u1", Span: span, Label: "x", Color: "red", Now: now})
	require.ErrorIs(t, err, ErrInvalidColor)
	_, err = DateSpan(day("2025-09-03"), day("2025-09-01"))
	require.ErrorIs(t, err, ErrReversedSpan)
	_, err = InstantSpan(now, now)
	require.ErrorIs(t, err, ErrReversedSpan)
}

func TestManualBlockUpdateAndRelease(t *testing.T) {
	span, err := DateSpan(day("2025-09-01"), day("2025-09-03"))
	require.NoError(t, err)
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	b, err := NewManualBlock(CreateBlockParams{ID: "b1", UnitID: "u1", Span: span, Label: "Repairs", Now: now})
	require.NoError(t, err)
	b.ClearEvents()

	empty := "  "
	require.ErrorIs(t, b.Update(UpdateBlockParams{Label: &empty, Now: now}), ErrLabelRequired)
	assert.Equal(t, "Repairs", b.Label, "failed update leaves block untouched")

	next, err := DateSpan(day("2025-09-05"), day("2025-09-06"))
	require.NoError(t, err)
	notes := "plumber"
	require.NoError(t, b.Update(UpdateBlockParams{Span: &next, Notes: &notes, Now: now.Add(time.Hour)}))
	assert.Equal(t, next, b.Span)
	assert.Equal(t, "plumber", b.Notes)
	assert.Equal(t, now.Add(time.Hour), b.UpdatedAt)

	b.Release(now.Add(2 * time.Hour))
	evts := b.PendingEvents()
	require.Len(t, evts, 2)
	assert.Equal(t, "calendar.block_updated", evts[0].EventName())
	assert.Equal(t, "calendar.released", evts[1].EventName())
	assert.Equal(t, "u1", evts[1].AggregateID())
}

func TestBlockSpanBoundsCoverEveryZone(t *testing.T) {
	span, err := DateSpan(day("2025-09-01"), day("2025-09-01"))
	require.NoError(t, err)
	from, to := span.Bounds()
	for _, name := range []string{"Pacific/Kiritimati", "Pacific/Pago_Pago", "UTC", "Asia/Tokyo"} {
		loc, err := time.LoadLocation(name)
		require.NoError(t, err)
		start := day("2025-09-01").Midnight(loc)
		end := day("2025-09-02").Midnight(loc)
		assert.False(t, start.Before(from), name)
		assert.False(t, end.After(to), name)
	}
}
