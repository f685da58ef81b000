package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/IBM/sarama"

	"rentavail/internal/app/commands"
	channelhandlers "rentavail/internal/app/handlers/channels"
	"rentavail/internal/domain/shared/apperr"
)

// Inbox deduplicates consumed messages.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// channelRecord is one availability record pushed by a sales channel.
type channelRecord struct {
	EventID    string `json:"event_id"`
	UnitID     string `json:"unit_id"`
	Channel    string `json:"channel"`
	ExternalID string `json:"external_id"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Summary    string `json:"summary"`
	Removed    bool   `json:"removed"`
}

type cloudEvent struct {
	SpecVersion string          `json:"specversion"`
	ID          string          `json:"id"`
	Data        json.RawMessage `json:"data"`
}

// ChannelImportHandler turns channel records into import commands.
type ChannelImportHandler struct {
	Bus    commands.Bus
	Inbox  Inbox
	Logger *slog.Logger
}

func (h *ChannelImportHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	rec, err := decodeChannelRecord(msg)
	if err != nil {
		h.logger().Warn("channel record rejected", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, rec.EventID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}

	res, err := commands.Dispatch[channelhandlers.ImportChannelEventCommand, *channelhandlers.ImportChannelEventResult](ctx, h.Bus, channelhandlers.ImportChannelEventCommand{
		UnitID:     rec.UnitID,
		Channel:    rec.Channel,
		ExternalID: rec.ExternalID,
		Kind:       rec.Kind,
		Status:     rec.Status,
		StartDate:  rec.StartDate,
		EndDate:    rec.EndDate,
		Summary:    rec.Summary,
		Removed:    rec.Removed,
	})
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindUpstream, "":
			if h.Inbox != nil {
				if ferr := h.Inbox.Forget(ctx, rec.EventID); ferr != nil {
					h.logger().Warn("inbox forget failed", "event_id", rec.EventID, "error", ferr)
				}
			}
			return err
		default:
			h.logger().Warn("channel record rejected", "event_id", rec.EventID, "code", apperr.CodeOf(err), "error", err)
			return nil
		}
	}
	if res != nil {
		h.logger().Debug("channel record applied", "event_id", rec.EventID, "key", res.Key, "removed", res.Removed)
	}
	return nil
}

func (h *ChannelImportHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// decodeChannelRecord accepts a bare record or one wrapped in a CloudEvents
// envelope. Records without an id are keyed by their position in the log.
func decodeChannelRecord(msg *sarama.ConsumerMessage) (channelRecord, error) {
	var rec channelRecord
	var env cloudEvent
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return rec, fmt.Errorf("decode channel record: %w", err)
	}
	body := msg.Value
	if env.SpecVersion != "" && len(env.Data) > 0 {
		body = env.Data
	}
	if err := json.Unmarshal(body, &rec); err != nil {
		return rec, fmt.Errorf("decode channel record: %w", err)
	}
	if rec.EventID == "" {
		rec.EventID = env.ID
	}
	if rec.EventID == "" {
		rec.EventID = msg.Topic + "/" + strconv.Itoa(int(msg.Partition)) + "/" + strconv.FormatInt(msg.Offset, 10)
	}
	return rec, nil
}

var _ MessageHandler = (*ChannelImportHandler)(nil)
