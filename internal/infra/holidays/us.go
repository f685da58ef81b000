// Package holidays annotates calendar windows with public holidays.
package holidays

import (
	"time"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"

	"rentavail/internal/app/policies"
	"rentavail/internal/domain/shared/daterange"
)

// Calendar lists holidays of a business calendar.
type Calendar struct {
	bc *cal.BusinessCalendar
}

// USFederal observes the US federal holidays.
func USFederal() *Calendar {
	bc := cal.NewBusinessCalendar()
	bc.AddHoliday(
		us.NewYear,
		us.MlkDay,
		us.PresidentsDay,
		us.MemorialDay,
		us.Juneteenth,
		us.IndependenceDay,
		us.LaborDay,
		us.ColumbusDay,
		us.VeteransDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
	)
	return &Calendar{bc: bc}
}

// Between returns the holidays falling on days of r, in order. Observed
// dates are reported when a holiday moves off a weekend.
func (c *Calendar) Between(r daterange.DayRange) []policies.Holiday {
	out := make([]policies.Holiday, 0)
	for d := r.From; d < r.To; d++ {
		y, m, dd := d.Date()
		actual, observed, h := c.bc.IsHoliday(time.Date(y, m, dd, 12, 0, 0, 0, time.UTC))
		if !actual && !observed {
			continue
		}
		name := ""
		if h != nil {
			name = h.Name
			if observed && !actual {
				name += " (observed)"
			}
		}
		out = append(out, policies.Holiday{Day: d, Name: name})
	}
	return out
}

var _ policies.HolidayCalendar = (*Calendar)(nil)
