package units

import (
	"errors"
	"sync"
	"time"

	"github.com/bradfitz/latlong"
)

var ErrUnknownTimezone = errors.New("units: unknown timezone")

var (
	locationsMu sync.RWMutex
	locations   = map[string]*time.Location{}
)

// ZoneForCoordinates resolves the IANA zone of a coordinate, falling back to UTC
// when the point is unknown (or is the zero value, i.e. not provided).
func ZoneForCoordinates(lat, lon float64) string {
	if lat == 0 && lon == 0 {
		return "UTC"
	}
	name := latlong.LookupZoneName(lat, lon)
	if name == "" {
		return "UTC"
	}
	return name
}

// Location returns the unit's declared timezone. Calendar days of a unit are
// always evaluated here, never in the process-local zone.
func (u *Unit) Location() (*time.Location, error) {
	return LoadLocation(u.Timezone)
}

// LoadLocation caches time.LoadLocation results; zone data is immutable for the
// life of the process.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = "UTC"
	}
	locationsMu.RLock()
	loc, ok := locations[name]
	locationsMu.RUnlock()
	if ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, ErrUnknownTimezone
	}
	locationsMu.Lock()
	locations[name] = loc
	locationsMu.Unlock()
	return loc, nil
}
