package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"rentavail/internal/app/commands"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/outbox"
	"rentavail/internal/app/uow"
	domainbooking "rentavail/internal/domain/booking"
	"rentavail/internal/domain/shared/apperr"
)

const transitionBookingKey = "booking.transition"

// Booking lifecycle actions accepted by TransitionBookingCommand.
const (
	ActionAccept   = "accept"
	ActionDecline  = "decline"
	ActionConfirm  = "confirm"
	ActionCancel   = "cancel"
	ActionCheckIn  = "check_in"
	ActionCheckOut = "check_out"
)

type TransitionBookingCommand struct {
	BookingID string `validate:"required"`
	Action    string `validate:"required,oneof=accept decline confirm cancel check_in check_out"`
	Reason    string `validate:"max=500"`
}

func (c TransitionBookingCommand) Key() string { return transitionBookingKey }

type TransitionBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// TransitionBookingHandler moves a booking through its lifecycle. Declined and
// cancelled bookings stop occupying their days on the next read.
type TransitionBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *TransitionBookingHandler) Handle(ctx context.Context, cmd TransitionBookingCommand) (*TransitionBookingResult, error) {
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

	booking, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(strings.TrimSpace(cmd.BookingID)))
	if err != nil {
		return nil, handlersupport.Classify(err)
	}
	if err := apply(booking, cmd, h.now()); err != nil {
		return nil, err
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
		h.Logger.Info("booking transitioned", "booking_id", booking.ID, "unit_id", booking.UnitID, "action", cmd.Action, "status", booking.State)
	}
	return &TransitionBookingResult{BookingID: string(booking.ID), Status: string(booking.State)}, nil
}

func apply(b *domainbooking.Booking, cmd TransitionBookingCommand, now time.Time) error {
	reason := strings.TrimSpace(cmd.Reason)
	var err error
	switch cmd.Action {
	case ActionAccept:
		err = b.Accept(now)
	case ActionDecline:
		if reason == "" {
			reason = "host-declined"
		}
		err = b.Decline(reason, now)
	case ActionConfirm:
		err = b.Confirm(now)
	case ActionCancel:
		if reason == "" {
			reason = "cancelled"
		}
		err = b.Cancel(reason, now)
	case ActionCheckIn:
		err = b.CheckIn(now)
	case ActionCheckOut:
		err = b.CheckOut(now)
	default:
		return apperr.Validation(apperr.CodeInvalidPayload, "unknown action "+cmd.Action)
	}
	return handlersupport.Classify(err)
}

func (h *TransitionBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[TransitionBookingCommand, *TransitionBookingResult] = (*TransitionBookingHandler)(nil)
