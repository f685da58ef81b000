package quotes

import (
	"context"
	"time"

	"rentavail/internal/app/dto"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/queries"
	"rentavail/internal/app/uow"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/daterange"
)

const quoteStayKey = "quotes.stay"

// QuoteStayQuery prices a stay without storing the result. CheckIn and
// CheckOut are ISO dates in the unit's zone or RFC3339 instants.
type QuoteStayQuery struct {
	UnitID                string `validate:"required"`
	CheckIn               string `validate:"required"`
	CheckOut              string `validate:"required"`
	FirstCompletedBooking bool
}

func (q QuoteStayQuery) Key() string { return quoteStayKey }

type QuoteStayHandler struct {
	UoWFactory uow.UoWFactory
	Service    *Service
	Now        func() time.Time
}

func (h *QuoteStayHandler) Handle(ctx context.Context, q QuoteStayQuery) (dto.StayQuote, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.StayQuote{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	u, loc, err := handlersupport.LoadUnit(execCtx, unit, q.UnitID)
	if err != nil {
		return dto.StayQuote{}, err
	}
	checkIn, checkOut, err := ParseStay(q.CheckIn, q.CheckOut, loc)
	if err != nil {
		return dto.StayQuote{}, err
	}
	quote, err := h.Service.Quote(StayRequest{Unit: u, Location: loc, CheckIn: checkIn, CheckOut: checkOut, FirstCompletedBooking: q.FirstCompletedBooking})
	if err != nil {
		return dto.StayQuote{}, err
	}
	quote.IssuedAt = now(h.Now)
	return dto.MapStayQuote(quote), nil
}

// ParseStay reads both stay boundaries in the unit's zone.
func ParseStay(checkInRaw, checkOutRaw string, loc *time.Location) (time.Time, time.Time, error) {
	checkIn, err := daterange.ParseBoundary(checkInRaw, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation(apperr.CodeInvalidDate, "check_in must be a date or RFC3339 timestamp")
	}
	checkOut, err := daterange.ParseBoundary(checkOutRaw, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation(apperr.CodeInvalidDate, "check_out must be a date or RFC3339 timestamp")
	}
	return checkIn, checkOut, nil
}

func now(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock().UTC()
}

var _ queries.Handler[QuoteStayQuery, dto.StayQuote] = (*QuoteStayHandler)(nil)
