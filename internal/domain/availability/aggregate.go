package availability

import (
	"slices"
	"time"

	"rentavail/internal/domain/shared/daterange"
)

// Window is the half-open span of unit-local days [Start, End) a verdict covers.
type Window struct {
	Start    daterange.Day
	End      daterange.Day
	Location *time.Location
}

func (w Window) Days() daterange.DayRange {
	return daterange.DayRange{From: w.Start, To: w.End}
}

func (w Window) loc() *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}

// Instants returns the window bounds as instants, for record-store queries.
func (w Window) Instants() (time.Time, time.Time) {
	return w.Start.Midnight(w.loc()), w.End.Midnight(w.loc())
}

// Verdict is the per-day occupancy of one unit over a window.
// BookedDays and BlockedDays are sorted and never share a day.
type Verdict struct {
	Window      Window
	BookedDays  []daterange.Day
	BlockedDays []daterange.Day
	Degraded    bool
	Warning     string
}

// Disabled returns the sorted union of booked and blocked days.
func (v Verdict) Disabled() []daterange.Day {
	out := make([]daterange.Day, 0, len(v.BookedDays)+len(v.BlockedDays))
	i, j := 0, 0
	for i < len(v.BookedDays) && j < len(v.BlockedDays) {
		if v.BookedDays[i] < v.BlockedDays[j] {
			out = append(out, v.BookedDays[i])
			i++
		} else {
			out = append(out, v.BlockedDays[j])
			j++
		}
	}
	out = append(out, v.BookedDays[i:]...)
	return append(out, v.BlockedDays[j:]...)
}

func (v Verdict) IsBooked(d daterange.Day) bool {
	_, ok := slices.BinarySearch(v.BookedDays, d)
	return ok
}

func (v Verdict) IsBlocked(d daterange.Day) bool {
	_, ok := slices.BinarySearch(v.BlockedDays, d)
	return ok
}

func (v Verdict) IsDisabled(d daterange.Day) bool {
	return v.IsBooked(d) || v.IsBlocked(d)
}

// DisabledWithin reports which days of r are booked or blocked.
func (v Verdict) DisabledWithin(r daterange.DayRange) []daterange.Day {
	var out []daterange.Day
	for _, d := range v.Disabled() {
		if r.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// EmptyVerdict is the verdict of a unit with no known occupancy.
func EmptyVerdict(w Window) Verdict {
	return Verdict{Window: w, BookedDays: []daterange.Day{}, BlockedDays: []daterange.Day{}}
}

// Aggregate merges intervals into a verdict over window. Booked days take
// precedence: a day both booked and blocked is reported as booked only.
func Aggregate(intervals []OccupancyInterval, window Window) Verdict {
	bounds := window.Days()
	loc := window.loc()

	var booked, blocked []daterange.DayRange
	for _, iv := range intervals {
		if iv.Validate() != nil {
			continue
		}
		days := daterange.DayRange{From: daterange.DayOf(iv.Start, loc), To: daterange.CeilDayOf(iv.End, loc)}.Clip(bounds)
		if days.Empty() {
			continue
		}
		if iv.Kind == KindBooked {
			booked = append(booked, days)
		} else {
			blocked = append(blocked, days)
		}
	}

	booked = mergeRanges(booked)
	blocked = subtractRanges(mergeRanges(blocked), booked)

	v := EmptyVerdict(window)
	v.BookedDays = expand(booked)
	v.BlockedDays = expand(blocked)
	return v
}

func mergeRanges(in []daterange.DayRange) []daterange.DayRange {
	if len(in) == 0 {
		return nil
	}
	slices.SortFunc(in, func(a, b daterange.DayRange) int {
		switch {
		case a.From < b.From:
			return -1
		case a.From > b.From:
			return 1
		}
		return 0
	})
	out := []daterange.DayRange{in[0]}
	for _, r := range in[1:] {
		last := &out[len(out)-1]
		if r.From <= last.To {
			if r.To > last.To {
				last.To = r.To
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// subtractRanges removes every day of cut from base. Both inputs must be
// sorted and internally disjoint.
func subtractRanges(base, cut []daterange.DayRange) []daterange.DayRange {
	var out []daterange.DayRange
	j := 0
	for _, r := range base {
		from := r.From
		for j < len(cut) && cut[j].To <= from {
			j++
		}
		k := j
		for k < len(cut) && cut[k].From < r.To {
			if cut[k].From > from {
				out = append(out, daterange.DayRange{From: from, To: cut[k].From})
			}
			if cut[k].To > from {
				from = cut[k].To
			}
			k++
		}
		if from < r.To {
			out = append(out, daterange.DayRange{From: from, To: r.To})
		}
	}
	return out
}

func expand(ranges []daterange.DayRange) []daterange.Day {
	n := 0
	for _, r := range ranges {
		n += r.Len()
	}
	out := make([]daterange.Day, 0, n)
	for _, r := range ranges {
		out = append(out, r.Days()...)
	}
	return out
}
