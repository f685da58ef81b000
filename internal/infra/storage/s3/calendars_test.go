package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarStoreAddressing(t *testing.T) {
	store, err := NewCalendarStore("http://minio:9000", false, "k", "s", "cal", "https://cdn.example.com/", nil)
	require.NoError(t, err)
	assert.Equal(t, "calendars/loft%2042.ics", CalendarKey("loft 42"))
	assert.Equal(t, "https://cdn.example.com/cal/calendars/u1.ics", store.objectURL(CalendarKey("u1")))

	_, err = NewCalendarStore("", false, "k", "s", "cal", "", nil)
	require.Error(t, err)
	_, err = NewCalendarStore("http://minio:9000", false, "k", "s", " ", "", nil)
	require.Error(t, err)
}
