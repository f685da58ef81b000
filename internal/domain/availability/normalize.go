package availability

import (
	"strings"
	"time"

	"rentavail/internal/domain/shared/daterange"
)

// Normalizer turns raw occupancy records into intervals bounded by local
// midnights of the unit's zone.
type Normalizer struct {
	Location          *time.Location
	OccupyingStatuses []string
}

// RawRecords is everything the record store returned for one unit.
type RawRecords struct {
	Bookings      []BookingRecord
	Blocks        []*ManualBlock
	ChannelEvents []ChannelEvent
}

func NewNormalizer(loc *time.Location) Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return Normalizer{Location: loc, OccupyingStatuses: DefaultOccupyingStatuses}
}

func (n Normalizer) loc() *time.Location {
	if n.Location == nil {
		return time.UTC
	}
	return n.Location
}

func (n Normalizer) occupying(status string) (string, bool) {
	statuses := n.OccupyingStatuses
	if statuses == nil {
		statuses = DefaultOccupyingStatuses
	}
	status = strings.ToUpper(strings.TrimSpace(status))
	for _, s := range statuses {
		if s == status {
			return s, true
		}
	}
	return "", false
}

func (n Normalizer) interval(unitID string, src Source, kind Kind, days daterange.DayRange, filter, ref string) (OccupancyInterval, bool) {
	if days.Empty() {
		return OccupancyInterval{}, false
	}
	loc := n.loc()
	iv := OccupancyInterval{
		UnitID:       unitID,
		Source:       src,
		Kind:         kind,
		Start:        days.From.Midnight(loc),
		End:          days.To.Midnight(loc),
		StatusFilter: filter,
		Reference:    ref,
	}
	if iv.Validate() != nil {
		return OccupancyInterval{}, false
	}
	return iv, true
}

// FromBooking occupies [day(checkIn), day(checkOut)). The checkout day stays
// free; a stay that checks out on its check-in day occupies that one day.
func (n Normalizer) FromBooking(rec BookingRecord) (OccupancyInterval, bool) {
	if rec.CheckIn.IsZero() || rec.CheckOut.IsZero() || !rec.CheckOut.After(rec.CheckIn) {
		return OccupancyInterval{}, false
	}
	status, ok := n.occupying(rec.Status)
	if !ok {
		return OccupancyInterval{}, false
	}
	loc := n.loc()
	days := daterange.DayRange{From: daterange.DayOf(rec.CheckIn, loc), To: daterange.DayOf(rec.CheckOut, loc)}
	if days.Empty() {
		days.To = days.From + 1
	}
	return n.interval(rec.UnitID, SourceBooking, KindBooked, days, status, rec.ID)
}

func (n Normalizer) FromBlock(block *ManualBlock) (OccupancyInterval, bool) {
	if block == nil || block.Span.Validate() != nil {
		return OccupancyInterval{}, false
	}
	return n.interval(block.UnitID, SourceManualBlock, KindBlocked, block.Span.Days(n.loc()), "", string(block.ID))
}

func (n Normalizer) FromChannelEvent(ev ChannelEvent) (OccupancyInterval, bool) {
	if ev.Cancelled() || ev.Validate() != nil {
		return OccupancyInterval{}, false
	}
	return n.interval(ev.UnitID, SourceChannelImport, ev.Kind, daterange.Inclusive(ev.StartDate, ev.EndDate), ev.Status, ev.Key())
}

// Normalize converts every admissible record; malformed ones are dropped.
func (n Normalizer) Normalize(raw RawRecords) []OccupancyInterval {
	out := make([]OccupancyInterval, 0, len(raw.Bookings)+len(raw.Blocks)+len(raw.ChannelEvents))
	for _, rec := range raw.Bookings {
		if iv, ok := n.FromBooking(rec); ok {
			out = append(out, iv)
		}
	}
	for _, block := range raw.Blocks {
		if iv, ok := n.FromBlock(block); ok {
			out = append(out, iv)
		}
	}
	for _, ev := range raw.ChannelEvents {
		if iv, ok := n.FromChannelEvent(ev); ok {
			out = append(out, iv)
		}
	}
	return out
}
