package channels

import (
	"context"
	"log/slog"
	"time"

	"rentavail/internal/app/dto"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/policies"
	"rentavail/internal/app/queries"
	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/domain/shared/daterange"
	domainunits "rentavail/internal/domain/units"
)

const (
	exportCalendarKey = "channels.export_calendar"
	ExportHorizonDays = 365
	CalendarMediaType = "text/calendar; charset=utf-8"
)

// ExportCalendarQuery renders the disabled days of the next year as an
// iCalendar document. The read is strict so that an outage never publishes
// an empty calendar to other channels.
type ExportCalendarQuery struct {
	UnitID string `validate:"required"`
}

func (q ExportCalendarQuery) Key() string { return exportCalendarKey }

type ExportCalendarHandler struct {
	UoWFactory uow.UoWFactory
	Codec      policies.CalendarCodec
	Now        func() time.Time
}

func (h *ExportCalendarHandler) Handle(ctx context.Context, q ExportCalendarQuery) (dto.CalendarExport, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CalendarExport{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	u, loc, err := handlersupport.LoadUnit(execCtx, unit, q.UnitID)
	if err != nil {
		return dto.CalendarExport{}, err
	}
	body, err := render(execCtx, unit, h.Codec, u, loc, now(h.Now))
	if err != nil {
		return dto.CalendarExport{}, err
	}
	return dto.CalendarExport{UnitID: string(u.ID), ContentType: CalendarMediaType, Body: body}, nil
}

func render(ctx context.Context, unit uow.UnitOfWork, codec policies.CalendarCodec, u *domainunits.Unit, loc *time.Location, at time.Time) ([]byte, error) {
	today := daterange.DayOf(at, loc)
	window := domainavailability.Window{Start: today, End: today.AddDays(ExportHorizonDays), Location: loc}
	verdict, err := handlersupport.OccupancyReader(unit).Read(ctx, string(u.ID), window, domainavailability.Strict)
	if err != nil {
		return nil, handlersupport.Classify(err)
	}
	days := make([]policies.ExportedDay, 0, len(verdict.BookedDays)+len(verdict.BlockedDays))
	for _, d := range verdict.BookedDays {
		days = append(days, policies.ExportedDay{Day: d, Kind: domainavailability.KindBooked})
	}
	for _, d := range verdict.BlockedDays {
		days = append(days, policies.ExportedDay{Day: d, Kind: domainavailability.KindBlocked})
	}
	body, err := codec.Encode(string(u.ID), u.Title, days, at)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// PublishCalendars returns a scheduled job that exports every unit's
// calendar and hands it to the publisher.
func PublishCalendars(factory uow.UoWFactory, codec policies.CalendarCodec, publisher policies.CalendarPublisher, clock func() time.Time, logger *slog.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, factory)
		if err != nil {
			return err
		}
		if cleanup != nil {
			defer cleanup()
		}
		units, err := unit.Units().List(execCtx)
		if err != nil {
			return handlersupport.Classify(err)
		}
		at := now(clock)
		for _, u := range units {
			loc, err := u.Location()
			if err != nil {
				continue
			}
			body, err := render(execCtx, unit, codec, u, loc, at)
			if err == nil {
				var url string
				url, err = publisher.Publish(execCtx, string(u.ID), body)
				if err == nil && logger != nil {
					logger.Debug("calendar published", "unit_id", u.ID, "url", url)
				}
			}
			if err != nil && logger != nil {
				logger.Warn("calendar publish failed", "unit_id", u.ID, "error", err)
			}
		}
		return nil
	}
}

var _ queries.Handler[ExportCalendarQuery, dto.CalendarExport] = (*ExportCalendarHandler)(nil)
