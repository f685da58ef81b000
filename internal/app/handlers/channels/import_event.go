package channels

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"rentavail/internal/app/commands"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/outbox"
	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/daterange"
	"rentavail/internal/domain/shared/events"
)

const importChannelEventKey = "channels.import_event"

// ImportChannelEventCommand applies one record pushed by a sales channel.
// Dates are inclusive. Removed or cancelled records are deleted.
type ImportChannelEventCommand struct {
	UnitID     string `validate:"required"`
	Channel    string `validate:"required"`
	ExternalID string `validate:"required"`
	Kind       string `validate:"omitempty,oneof=booked blocked"`
	Status     string
	StartDate  string
	EndDate    string
	Summary    string
	Removed    bool
}

func (c ImportChannelEventCommand) Key() string { return importChannelEventKey }

type ImportChannelEventResult struct {
	Key     string `json:"key"`
	Removed bool   `json:"removed"`
}

type ImportChannelEventHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *ImportChannelEventHandler) Handle(ctx context.Context, cmd ImportChannelEventCommand) (*ImportChannelEventResult, error) {
	event := domainavailability.ChannelEvent{
		UnitID:     strings.TrimSpace(cmd.UnitID),
		Channel:    strings.ToLower(strings.TrimSpace(cmd.Channel)),
		ExternalID: strings.TrimSpace(cmd.ExternalID),
		Kind:       domainavailability.Kind(cmd.Kind),
		Status:     strings.TrimSpace(cmd.Status),
		Summary:    strings.TrimSpace(cmd.Summary),
		UpdatedAt:  now(h.Now),
	}
	if event.Kind == "" {
		event.Kind = domainavailability.KindBooked
	}
	removed := cmd.Removed || event.Cancelled()
	if !removed {
		start, err := daterange.ParseDay(cmd.StartDate)
		if err != nil {
			return nil, apperr.Validation(apperr.CodeInvalidDate, "start_date must be a YYYY-MM-DD date")
		}
		end, err := daterange.ParseDay(cmd.EndDate)
		if err != nil {
			return nil, apperr.Validation(apperr.CodeInvalidDate, "end_date must be a YYYY-MM-DD date")
		}
		event.StartDate, event.EndDate = start, end
		if err := event.Validate(); err != nil {
			return nil, handlersupport.Classify(err)
		}
	}

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

	if _, _, err := handlersupport.LoadUnit(ctx, unit, event.UnitID); err != nil {
		return nil, err
	}
	if removed {
		err = unit.ChannelEvents().Delete(ctx, event.UnitID, event.Channel, event.ExternalID)
	} else {
		err = unit.ChannelEvents().Upsert(ctx, event)
	}
	if err != nil {
		return nil, handlersupport.Classify(err)
	}
	imported := domainavailability.ChannelEventImported{
		UnitID:     event.UnitID,
		Channel:    event.Channel,
		ExternalID: event.ExternalID,
		Removed:    removed,
		At:         event.UpdatedAt,
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{imported}); err != nil {
		return nil, err
	}
	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, handlersupport.Classify(err)
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Debug("channel event applied", "key", event.Key(), "removed", removed)
	}
	return &ImportChannelEventResult{Key: event.Key(), Removed: removed}, nil
}

func now(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock().UTC()
}

var _ commands.Handler[ImportChannelEventCommand, *ImportChannelEventResult] = (*ImportChannelEventHandler)(nil)
