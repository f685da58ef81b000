package availability

import (
	"context"
	"strings"
	"time"

	"rentavail/internal/app/dto"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/policies"
	"rentavail/internal/app/queries"
	"rentavail/internal/app/sessions"
	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/daterange"
)

const (
	navigateCalendarKey = "availability.navigate"
	// navigateSpanMultiple bounds one navigate read to this many occupancy
	// spans; the session horizon itself keeps growing.
	navigateSpanMultiple = 4
)

// NavigateCalendarQuery moves a session's calendar to Position. An empty
// Position re-reads the current window.
type NavigateCalendarQuery struct {
	SessionID string `validate:"required"`
	UnitID    string `validate:"required"`
	Position  string
}

func (q NavigateCalendarQuery) Key() string { return navigateCalendarKey }

type NavigateCalendarHandler struct {
	UoWFactory  uow.UoWFactory
	Sessions    *sessions.Registry
	Holidays    policies.HolidayCalendar
	MaxSpanDays int
}

func (h *NavigateCalendarHandler) Handle(ctx context.Context, q NavigateCalendarQuery) (dto.CalendarView, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CalendarView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	u, loc, err := handlersupport.LoadUnit(execCtx, unit, q.UnitID)
	if err != nil {
		return dto.CalendarView{}, err
	}
	manager, err := h.Sessions.Manager(q.SessionID, string(u.ID), loc)
	if err != nil {
		return dto.CalendarView{}, apperr.Validation(apperr.CodeInvalidPayload, err.Error())
	}

	snap := manager.Snapshot()
	if raw := strings.TrimSpace(q.Position); raw != "" {
		position, err := daterange.ParseDay(raw)
		if err != nil {
			return dto.CalendarView{}, apperr.Validation(apperr.CodeInvalidDate, "position must be a YYYY-MM-DD date")
		}
		snap = manager.Navigate(position)
	}

	stamp, window := manager.Begin()
	span := boundedSpan(window, snap.Position, h.readLimit())
	verdict, err := handlersupport.OccupancyReader(unit).Read(execCtx, q.UnitID, span, domainavailability.BestEffort)
	if err != nil {
		return dto.CalendarView{}, handlersupport.Classify(err)
	}

	view := dto.CalendarView{
		SessionID: q.SessionID,
		UnitID:    q.UnitID,
		Position:  snap.Position.String(),
		Window:    dto.MapWindow(window),
		State:     string(snap.State),
		Stamp:     uint64(stamp),
	}
	if !manager.Accept(stamp) {
		view.Superseded = true
		return view, nil
	}
	var holidays []policies.Holiday
	if h.Holidays != nil {
		holidays = h.Holidays.Between(span.Days())
	}
	occupancy := dto.MapOccupancy(string(u.ID), u.Timezone, verdict, holidays)
	view.Occupancy = &occupancy
	return view, nil
}

func (h *NavigateCalendarHandler) readLimit() int {
	if h.MaxSpanDays <= 0 {
		return DefaultMaxSpanDays * navigateSpanMultiple
	}
	return h.MaxSpanDays * navigateSpanMultiple
}

// boundedSpan trims a grown horizon to at most limit days. The slice starts at
// position unless that would leave it short of limit before the horizon end.
func boundedSpan(window domainavailability.Window, position daterange.Day, limit int) domainavailability.Window {
	if window.Days().Len() <= limit {
		return window
	}
	start := window.End.AddDays(-limit)
	if position < start {
		start = position
	}
	if start < window.Start {
		start = window.Start
	}
	end := start.AddDays(limit)
	if end > window.End {
		end = window.End
	}
	return domainavailability.Window{Start: start, End: end, Location: window.Location}
}

// EvictIdleSessions is run on a schedule; sessions idle past ttl lose their
// windows.
func EvictIdleSessions(registry *sessions.Registry, ttl time.Duration) func(context.Context) error {
	return func(context.Context) error {
		registry.EvictIdle(ttl)
		return nil
	}
}

var _ queries.Handler[NavigateCalendarQuery, dto.CalendarView] = (*NavigateCalendarHandler)(nil)
