package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentavail/internal/app/commands"
	quotesvc "rentavail/internal/app/handlers/quotes"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/middleware"
	"rentavail/internal/app/outbox"
	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
	domainbooking "rentavail/internal/domain/booking"
	"rentavail/internal/domain/shared/apperr"
	domainrange "rentavail/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

type RequestBookingCommand struct {
	UnitID                string `validate:"required"`
	GuestID               string `validate:"required"`
	CheckIn               string `validate:"required"`
	CheckOut              string `validate:"required"`
	Guests                int    `validate:"gte=1"`
	FirstCompletedBooking bool
	IdempotencyKeyV       string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

type RequestBookingResult struct {
	BookingID      string `json:"booking_id"`
	Status         string `json:"status"`
	Nights         int    `json:"nights"`
	TotalMinor     int64  `json:"total_minor"`
	Currency       string `json:"currency"`
	PricingVersion string `json:"pricing_version"`
}

// RequestBookingHandler stores a pending booking once the stay's days are
// free in a strict read of every occupancy source. Two concurrent requests
// can both pass the check; nothing here serializes them.
type RequestBookingHandler struct {
	UoWFactory uow.UoWFactory
	Quotes     *quotesvc.Service
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	unit, ctx, managed, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	u, loc, err := handlersupport.LoadUnit(ctx, unit, cmd.UnitID)
	if err != nil {
		return nil, err
	}
	checkIn, checkOut, err := quotesvc.ParseStay(cmd.CheckIn, cmd.CheckOut, loc)
	if err != nil {
		return nil, err
	}
	quote, err := h.Quotes.Quote(quotesvc.StayRequest{Unit: u, Location: loc, CheckIn: checkIn, CheckOut: checkOut, FirstCompletedBooking: cmd.FirstCompletedBooking})
	if err != nil {
		return nil, err
	}
	dr, err := domainrange.New(checkIn, checkOut)
	if err != nil {
		return nil, handlersupport.Classify(err)
	}
	now := h.now()
	if err := domainbooking.ValidateDateRange(dr, now, loc); err != nil {
		return nil, handlersupport.Classify(err)
	}

	stay := dr.Days(loc)
	window := domainavailability.Window{Start: stay.From, End: stay.To, Location: loc}
	verdict, err := handlersupport.OccupancyReader(unit).Read(ctx, cmd.UnitID, window, domainavailability.Strict)
	if err != nil {
		return nil, handlersupport.Classify(err)
	}
	if taken := verdict.DisabledWithin(stay); len(taken) > 0 {
		dates := make([]string, 0, len(taken))
		for _, d := range taken {
			dates = append(dates, d.String())
		}
		return nil, apperr.Conflict(apperr.CodeDatesUnavailable, "unavailable: "+strings.Join(dates, ", "))
	}

	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(uuid.NewString()),
		UnitID:    u.ID,
		GuestID:   strings.TrimSpace(cmd.GuestID),
		Range:     dr,
		Guests:    cmd.Guests,
		Currency:  u.Currency,
		Quote:     quote.Stay,
		CreatedAt: now,
	})
	if err != nil {
		return nil, handlersupport.Classify(err)
	}
	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, handlersupport.Classify(err)
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, handlersupport.Classify(err)
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("booking requested", "booking_id", booking.ID, "unit_id", booking.UnitID, "nights", quote.Nights, "total_minor", booking.Quote.TotalMinor)
	}
	return &RequestBookingResult{
		BookingID:      string(booking.ID),
		Status:         string(booking.State),
		Nights:         quote.Nights,
		TotalMinor:     booking.Quote.TotalMinor.Int64(),
		Currency:       booking.Currency,
		PricingVersion: booking.Quote.PricingVersion,
	}, nil
}

func (h *RequestBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = RequestBookingCommand{}
