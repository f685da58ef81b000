// Package ical reads channel calendar feeds and writes the exported
// occupancy calendar of a unit.
package ical

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"rentavail/internal/app/policies"
	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/domain/shared/daterange"
)

const (
	productID    = "-//rentavail//availability export//EN"
	dateLayout   = "20060102"
	utcLayout    = "20060102T150405Z"
	floatLayout  = "20060102T150405"
	bookedTitle  = "Reserved"
	blockedTitle = "Not available"
)

var ErrMalformedFeed = errors.New("ical: malformed calendar")

// Codec implements policies.CalendarCodec.
type Codec struct{}

// Decode returns the events of an iCalendar document as inclusive calendar
// dates in loc. DTEND is exclusive; an event without DTEND covers its start
// day. A date-time DTEND of a booked feed is a checkout: its day stays free,
// as for direct bookings. Blocked feeds keep every day a timed hold touches.
// Events whose dates cannot be read are skipped.
func (Codec) Decode(data []byte, loc *time.Location, kind domainavailability.Kind) ([]policies.FeedEvent, error) {
	if loc == nil {
		loc = time.UTC
	}
	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}
	out := make([]policies.FeedEvent, 0, len(cal.Events()))
	for _, ev := range cal.Events() {
		start, ok := boundary(ev.GetProperty(ics.ComponentPropertyDtStart), loc, false)
		if !ok {
			continue
		}
		end := start
		if endProp := ev.GetProperty(ics.ComponentPropertyDtEnd); endProp != nil {
			exclusive, ok := boundary(endProp, loc, kind == domainavailability.KindBlocked)
			if !ok {
				continue
			}
			if exclusive > start {
				end = exclusive - 1
			}
		}
		out = append(out, policies.FeedEvent{
			UID:       strings.TrimSpace(ev.Id()),
			Summary:   value(ev.GetProperty(ics.ComponentPropertySummary)),
			Status:    strings.ToLower(value(ev.GetProperty(ics.ComponentPropertyStatus))),
			StartDate: start,
			EndDate:   end,
		})
	}
	return out, nil
}

// boundary reads a DTSTART or DTEND value as a day in loc. With roundUp a
// date-time value past midnight counts its own day as touched.
func boundary(prop *ics.IANAProperty, loc *time.Location, roundUp bool) (daterange.Day, bool) {
	if prop == nil {
		return 0, false
	}
	raw := strings.TrimSpace(prop.Value)
	if len(raw) == len(dateLayout) {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return 0, false
		}
		return daterange.NewDay(t.Date()), true
	}
	var t time.Time
	var err error
	switch {
	case strings.HasSuffix(raw, "Z"):
		t, err = time.Parse(utcLayout, raw)
	default:
		zone := loc
		if tzid, ok := prop.ICalParameters["TZID"]; ok && len(tzid) > 0 {
			if named, lerr := time.LoadLocation(tzid[0]); lerr == nil {
				zone = named
			}
		}
		t, err = time.ParseInLocation(floatLayout, raw, zone)
	}
	if err != nil {
		return 0, false
	}
	if roundUp {
		return daterange.CeilDayOf(t, loc), true
	}
	return daterange.DayOf(t, loc), true
}

func value(prop *ics.IANAProperty) string {
	if prop == nil {
		return ""
	}
	return strings.TrimSpace(prop.Value)
}

// Encode writes one all-day event per run of consecutive days of the same
// kind. UIDs derive from the unit and the run's first day, so re-exports
// of an unchanged calendar are identical apart from DTSTAMP.
func (Codec) Encode(unitID, title string, days []policies.ExportedDay, stamp time.Time) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if title != "" {
		cal.SetXWRCalName(title)
	}

	sorted := append([]policies.ExportedDay(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Day < sorted[j].Day })
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j].Kind == sorted[i].Kind && sorted[j].Day == sorted[j-1].Day+1 {
			j++
		}
		first, last := sorted[i].Day, sorted[j-1].Day
		ev := cal.AddEvent(fmt.Sprintf("%s-%s@rentavail", unitID, first.Midnight(time.UTC).Format(dateLayout)))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetAllDayStartAt(first.Midnight(time.UTC))
		ev.SetAllDayEndAt(last.AddDays(1).Midnight(time.UTC))
		ev.SetSummary(summaryFor(sorted[i].Kind))
		ev.SetStatus(ics.ObjectStatusConfirmed)
		i = j
	}
	return []byte(cal.Serialize()), nil
}

func summaryFor(kind domainavailability.Kind) string {
	if kind == domainavailability.KindBooked {
		return bookedTitle
	}
	return blockedTitle
}

var _ policies.CalendarCodec = Codec{}
