package availability

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentavail/internal/domain/shared/daterange"
)

var (
	ErrChannelEventInvalid = errors.New("availability: channel event is invalid")
	ErrFeedNotFound        = errors.New("availability: feed subscription not found")
	ErrFeedURLRequired     = errors.New("availability: feed url is required")
)

const ChannelStatusCancelled = "cancelled"

// ChannelEvent is an occupancy record imported from another sales channel.
// StartDate and EndDate are inclusive calendar dates in the unit's zone.
type ChannelEvent struct {
	UnitID     string
	Channel    string
	ExternalID string
	FeedID     string
	Kind       Kind
	Status     string
	StartDate  daterange.Day
	EndDate    daterange.Day
	Summary    string
	UpdatedAt  time.Time
}

// Key identifies the event across re-imports.
func (e ChannelEvent) Key() string {
	return e.UnitID + "/" + e.Channel + "/" + e.ExternalID
}

func (e ChannelEvent) Cancelled() bool {
	return strings.EqualFold(strings.TrimSpace(e.Status), ChannelStatusCancelled)
}

func (e ChannelEvent) Validate() error {
	if strings.TrimSpace(e.UnitID) == "" || strings.TrimSpace(e.Channel) == "" || strings.TrimSpace(e.ExternalID) == "" {
		return ErrChannelEventInvalid
	}
	if !e.Kind.Valid() || e.EndDate < e.StartDate {
		return ErrChannelEventInvalid
	}
	return nil
}

type ChannelEventRepository interface {
	Upsert(ctx context.Context, event ChannelEvent) error
	Delete(ctx context.Context, unitID, channel, externalID string) error
	// ReplaceFeed swaps every event previously imported from feedID for events.
	ReplaceFeed(ctx context.Context, unitID, feedID string, events []ChannelEvent) error
	ListByUnit(ctx context.Context, unitID string, from, to daterange.Day) ([]ChannelEvent, error)
}

// FeedSubscription is an external iCal calendar polled for a unit.
type FeedSubscription struct {
	ID           string
	UnitID       string
	Channel      string
	URL          string
	Kind         Kind
	LastSyncedAt time.Time
	LastError    string
}

func (f FeedSubscription) Validate() error {
	if strings.TrimSpace(f.URL) == "" {
		return ErrFeedURLRequired
	}
	if strings.TrimSpace(f.UnitID) == "" {
		return ErrUnitIDRequired
	}
	return nil
}

type FeedRepository interface {
	ByID(ctx context.Context, id string) (FeedSubscription, error)
	Save(ctx context.Context, feed FeedSubscription) error
	List(ctx context.Context) ([]FeedSubscription, error)
}
