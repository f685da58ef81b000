package availability

import (
	"context"
	"fmt"
	"log/slog"

	"rentavail/internal/app/dto"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/policies"
	"rentavail/internal/app/queries"
	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/daterange"
)

const (
	getOccupancyKey    = "availability.occupancy"
	DefaultMaxSpanDays = 120
)

// GetOccupancyQuery asks for the verdict over [From, To). Strict callers get
// an error instead of a degraded verdict when a source is down.
type GetOccupancyQuery struct {
	UnitID string `validate:"required"`
	From   string `validate:"required"`
	To     string `validate:"required"`
	Strict bool
}

func (q GetOccupancyQuery) Key() string { return getOccupancyKey }

type GetOccupancyHandler struct {
	UoWFactory  uow.UoWFactory
	Holidays    policies.HolidayCalendar
	MaxSpanDays int
	Logger      *slog.Logger
}

func (h *GetOccupancyHandler) Handle(ctx context.Context, q GetOccupancyQuery) (dto.Occupancy, error) {
	days, err := ParseWindow(q.From, q.To, h.maxSpan())
	if err != nil {
		return dto.Occupancy{}, err
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Occupancy{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	u, loc, err := handlersupport.LoadUnit(execCtx, unit, q.UnitID)
	if err != nil {
		return dto.Occupancy{}, err
	}

	window := domainavailability.Window{Start: days.From, End: days.To, Location: loc}
	mode := domainavailability.BestEffort
	if q.Strict {
		mode = domainavailability.Strict
	}
	verdict, err := handlersupport.OccupancyReader(unit).Read(execCtx, q.UnitID, window, mode)
	if err != nil {
		return dto.Occupancy{}, handlersupport.Classify(err)
	}
	if verdict.Degraded && h.Logger != nil {
		h.Logger.Warn("occupancy degraded", "unit_id", q.UnitID, "from", days.From, "to", days.To)
	}

	var holidays []policies.Holiday
	if h.Holidays != nil {
		holidays = h.Holidays.Between(days)
	}
	return dto.MapOccupancy(string(u.ID), u.Timezone, verdict, holidays), nil
}

func (h *GetOccupancyHandler) maxSpan() int {
	if h.MaxSpanDays <= 0 {
		return DefaultMaxSpanDays
	}
	return h.MaxSpanDays
}

// ParseWindow validates an occupancy window given as ISO dates, to exclusive.
func ParseWindow(fromRaw, toRaw string, maxSpan int) (daterange.DayRange, error) {
	from, err := daterange.ParseDay(fromRaw)
	if err != nil {
		return daterange.DayRange{}, apperr.Validation(apperr.CodeInvalidDate, "from must be a YYYY-MM-DD date")
	}
	to, err := daterange.ParseDay(toRaw)
	if err != nil {
		return daterange.DayRange{}, apperr.Validation(apperr.CodeInvalidDate, "to must be a YYYY-MM-DD date")
	}
	switch {
	case to < from:
		return daterange.DayRange{}, apperr.Validation(apperr.CodeReversedRange, "to must not precede from")
	case to == from:
		return daterange.DayRange{}, apperr.Validation(apperr.CodeEmptyRange, "window must cover at least one day")
	}
	r := daterange.DayRange{From: from, To: to}
	if r.Len() > maxSpan {
		return daterange.DayRange{}, apperr.Validation(apperr.CodeWindowTooLarge, fmt.Sprintf("window spans %d days, at most %d allowed", r.Len(), maxSpan))
	}
	return r, nil
}

var _ queries.Handler[GetOccupancyQuery, dto.Occupancy] = (*GetOccupancyHandler)(nil)
