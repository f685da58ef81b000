package channels

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"rentavail/internal/app/commands"
	"rentavail/internal/app/dto"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/policies"
	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
)

const (
	registerFeedKey = "channels.register_feed"
	syncFeedKey     = "channels.sync_feed"
)

type RegisterFeedCommand struct {
	UnitID    string `validate:"required"`
	Channel   string `validate:"required"`
	URL       string `validate:"required,url"`
	Kind      string `validate:"omitempty,oneof=booked blocked"`
	CanManage bool
}

func (c RegisterFeedCommand) Key() string { return registerFeedKey }

func (c RegisterFeedCommand) PermissionGranted() bool { return c.CanManage }

type RegisterFeedHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *RegisterFeedHandler) Handle(ctx context.Context, cmd RegisterFeedCommand) (*dto.FeedSubscription, error) {
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

	u, _, err := handlersupport.LoadUnit(ctx, unit, cmd.UnitID)
	if err != nil {
		return nil, err
	}
	feed := domainavailability.FeedSubscription{
		ID:      uuid.NewString(),
		UnitID:  string(u.ID),
		Channel: strings.ToLower(strings.TrimSpace(cmd.Channel)),
		URL:     strings.TrimSpace(cmd.URL),
		Kind:    domainavailability.Kind(cmd.Kind),
	}
	if feed.Kind == "" {
		feed.Kind = domainavailability.KindBooked
	}
	if err := feed.Validate(); err != nil {
		return nil, handlersupport.Classify(err)
	}
	if err := unit.Feeds().Save(ctx, feed); err != nil {
		return nil, handlersupport.Classify(err)
	}
	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, handlersupport.Classify(err)
		}
		committed = true
	}
	if h.Logger != nil {
		h.Logger.Info("feed registered", "feed_id", feed.ID, "unit_id", feed.UnitID, "channel", feed.Channel)
	}
	out := dto.MapFeed(feed)
	return &out, nil
}

type SyncFeedCommand struct {
	FeedID string `validate:"required"`
}

func (c SyncFeedCommand) Key() string { return syncFeedKey }

// SyncFeedHandler downloads a feed and replaces every event previously
// imported from it. Fetch and decode failures are stored on the feed and
// reported in the result; the feed's earlier events stay in place.
type SyncFeedHandler struct {
	UoWFactory uow.UoWFactory
	Fetcher    policies.FeedFetcher
	Codec      policies.CalendarCodec
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *SyncFeedHandler) Handle(ctx context.Context, cmd SyncFeedCommand) (*dto.FeedSyncResult, error) {
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

	feed, err := unit.Feeds().ByID(ctx, cmd.FeedID)
	if err != nil {
		return nil, handlersupport.Classify(err)
	}
	_, loc, err := handlersupport.LoadUnit(ctx, unit, feed.UnitID)
	if err != nil {
		return nil, err
	}

	result := &dto.FeedSyncResult{FeedID: feed.ID}
	syncedAt := now(h.Now)
	imported, skipped, syncErr := h.pull(ctx, feed, loc, syncedAt)
	if syncErr == nil {
		syncErr = unit.ChannelEvents().ReplaceFeed(ctx, feed.UnitID, feed.ID, imported)
	}
	if syncErr != nil {
		feed.LastError = syncErr.Error()
		if h.Logger != nil {
			h.Logger.Warn("feed sync failed", "feed_id", feed.ID, "unit_id", feed.UnitID, "error", syncErr)
		}
	} else {
		feed.LastError = ""
		feed.LastSyncedAt = syncedAt
		result.Imported = len(imported)
		result.Skipped = skipped
	}
	if err := unit.Feeds().Save(ctx, feed); err != nil {
		return nil, handlersupport.Classify(err)
	}
	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, handlersupport.Classify(err)
		}
		committed = true
	}
	if syncErr != nil {
		result.Error = feed.LastError
		return result, nil
	}
	if h.Logger != nil {
		h.Logger.Info("feed synced", "feed_id", feed.ID, "unit_id", feed.UnitID, "imported", result.Imported, "skipped", result.Skipped)
	}
	return result, nil
}

func (h *SyncFeedHandler) pull(ctx context.Context, feed domainavailability.FeedSubscription, loc *time.Location, at time.Time) ([]domainavailability.ChannelEvent, int, error) {
	body, err := h.Fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		return nil, 0, err
	}
	entries, err := h.Codec.Decode(body, loc, feed.Kind)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domainavailability.ChannelEvent, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		ev := domainavailability.ChannelEvent{
			UnitID:     feed.UnitID,
			Channel:    feed.Channel,
			ExternalID: entry.UID,
			FeedID:     feed.ID,
			Kind:       feed.Kind,
			Status:     entry.Status,
			StartDate:  entry.StartDate,
			EndDate:    entry.EndDate,
			Summary:    entry.Summary,
			UpdatedAt:  at,
		}
		if ev.Cancelled() || ev.Validate() != nil {
			skipped++
			continue
		}
		out = append(out, ev)
	}
	return out, skipped, nil
}

// SyncAllFeeds returns a scheduled job that syncs every registered feed. One
// failing feed does not stop the others.
func SyncAllFeeds(factory uow.UoWFactory, bus commands.Bus, logger *slog.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, factory)
		if err != nil {
			return err
		}
		feeds, err := unit.Feeds().List(execCtx)
		if cleanup != nil {
			cleanup()
		}
		if err != nil {
			return err
		}
		for _, feed := range feeds {
			if _, err := commands.Dispatch[SyncFeedCommand, *dto.FeedSyncResult](ctx, bus, SyncFeedCommand{FeedID: feed.ID}); err != nil && logger != nil {
				logger.Warn("scheduled feed sync failed", "feed_id", feed.ID, "error", err)
			}
		}
		return nil
	}
}

var _ commands.Handler[RegisterFeedCommand, *dto.FeedSubscription] = (*RegisterFeedHandler)(nil)
var _ commands.Handler[SyncFeedCommand, *dto.FeedSyncResult] = (*SyncFeedHandler)(nil)
var _ policies.GuardedMessage = RegisterFeedCommand{}
