package support

import (
	"context"
	"errors"
	"time"

	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
	domainbooking "rentavail/internal/domain/booking"
	domainquotes "rentavail/internal/domain/quotes"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/daterange"
	"rentavail/internal/domain/shared/money"
	domainunits "rentavail/internal/domain/units"
)

type bookingSource struct {
	repo domainbooking.Repository
}

func (s bookingSource) ListForUnit(ctx context.Context, unitID string, from, to time.Time) ([]domainavailability.BookingRecord, error) {
	rows, err := s.repo.ListByUnit(ctx, domainunits.UnitID(unitID), from, to)
	if err != nil {
		return nil, err
	}
	out := make([]domainavailability.BookingRecord, 0, len(rows))
	for _, b := range rows {
		out = append(out, b.OccupancyRecord())
	}
	return out, nil
}

// OccupancyReader reads every occupancy source of the unit of work.
func OccupancyReader(unit uow.UnitOfWork) *domainavailability.Reader {
	return domainavailability.NewReader(bookingSource{repo: unit.Bookings()}, unit.Blocks(), unit.ChannelEvents())
}

// LoadUnit fetches a unit and its location from the unit directory.
func LoadUnit(ctx context.Context, unit uow.UnitOfWork, id string) (*domainunits.Unit, *time.Location, error) {
	u, err := unit.Units().ByID(ctx, domainunits.UnitID(id))
	if err != nil {
		return nil, nil, Classify(err)
	}
	loc, err := u.Location()
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindUpstream, apperr.CodeRecordStore, err)
	}
	return u, loc, nil
}

// Classify maps domain sentinel errors onto the application taxonomy.
// Errors that are already classified pass through.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, domainunits.ErrUnitNotFound):
		return apperr.Wrap(apperr.KindNotFound, apperr.CodeUnitNotFound, err)
	case errors.Is(err, domainavailability.ErrBlockNotFound):
		return apperr.Wrap(apperr.KindNotFound, apperr.CodeBlockNotFound, err)
	case errors.Is(err, domainavailability.ErrFeedNotFound):
		return apperr.Wrap(apperr.KindNotFound, apperr.CodeFeedNotFound, err)
	case errors.Is(err, domainbooking.ErrBookingNotFound):
		return apperr.Wrap(apperr.KindNotFound, apperr.CodeBookingNotFound, err)
	case errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainunits.ErrInvalidState):
		return apperr.Wrap(apperr.KindConflict, apperr.CodeInvalidTransition, err)
	case errors.Is(err, domainunits.ErrIDRequired),
		errors.Is(err, domainunits.ErrHostRequired),
		errors.Is(err, domainunits.ErrTitleRequired),
		errors.Is(err, domainunits.ErrNightsRange),
		errors.Is(err, domainunits.ErrUnknownTimezone),
		errors.Is(err, money.ErrInvalidCurrency):
		return apperr.Wrap(apperr.KindValidation, apperr.CodeInvalidPayload, err)
	case errors.Is(err, domainavailability.ErrLabelRequired),
		errors.Is(err, domainavailability.ErrReversedSpan),
		errors.Is(err, domainavailability.ErrSpanRequired),
		errors.Is(err, domainavailability.ErrInvalidColor),
		errors.Is(err, domainavailability.ErrUnitIDRequired),
		errors.Is(err, domainavailability.ErrChannelEventInvalid),
		errors.Is(err, domainavailability.ErrFeedURLRequired):
		return apperr.Wrap(apperr.KindValidation, apperr.CodeInvalidBlock, err)
	case errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainbooking.ErrGuestRequired):
		return apperr.Wrap(apperr.KindValidation, apperr.CodeInvalidPayload, err)
	case errors.Is(err, domainquotes.ErrQuoteNotFound):
		return apperr.Wrap(apperr.KindNotFound, apperr.CodeQuoteNotFound, err)
	case errors.Is(err, daterange.ErrInvalidDay):
		return apperr.Wrap(apperr.KindValidation, apperr.CodeInvalidDate, err)
	case errors.Is(err, daterange.ErrInvalidRange):
		return apperr.Wrap(apperr.KindValidation, apperr.CodeReversedRange, err)
	case errors.Is(err, domainbooking.ErrCheckInInPast):
		return apperr.Wrap(apperr.KindValidation, apperr.CodeCheckInInPast, err)
	case errors.Is(err, money.ErrNegativeAmount),
		errors.Is(err, money.ErrAmountTooLarge),
		errors.Is(err, money.ErrInvalidAmount):
		return apperr.Wrap(apperr.KindValidation, apperr.CodeInvalidMoney, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return apperr.Upstream(err)
}
