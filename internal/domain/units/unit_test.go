package units

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneForCoordinates(t *testing.T) {
	assert.Equal(t, "Europe/Lisbon", ZoneForCoordinates(38.7223, -9.1393))
	assert.Equal(t, "Asia/Tokyo", ZoneForCoordinates(35.6895, 139.6917))
	assert.Equal(t, "UTC", ZoneForCoordinates(0, 0), "coordinates not provided")
}

func TestNewUnitResolvesZone(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	u, err := NewUnit(CreateUnitParams{
		ID: "lisbon-loft", Host: "h1", Title: " Loft ", Currency: "eur", NightlyRate: 12500,
		Lat: 38.7223, Lon: -9.1393, Now: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Lisbon", u.Timezone)
	assert.Equal(t, "EUR", u.Currency)
	assert.Equal(t, "Loft", u.Title)
	assert.Equal(t, 1, u.MinNights)
	loc, err := u.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Lisbon", loc.String())
	require.Len(t, u.PendingEvents(), 1)

	_, err = NewUnit(CreateUnitParams{ID: "x", Host: "h1", Title: "X", Currency: "EUR", Timezone: "Mars/Olympus", Now: now})
	require.ErrorIs(t, err, ErrUnknownTimezone)
	_, err = NewUnit(CreateUnitParams{ID: "x", Host: "h1", Title: "X", Currency: "EUR", MinNights: 5, MaxNights: 2, Now: now})
	require.ErrorIs(t, err, ErrNightsRange)
	_, err = NewUnit(CreateUnitParams{Host: "h1", Title: "X", Currency: "EUR", Now: now})
	require.ErrorIs(t, err, ErrIDRequired)
}
