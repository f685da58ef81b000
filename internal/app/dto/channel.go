package dto

import (
	"time"

	domainavailability "rentavail/internal/domain/availability"
)

type FeedSubscription struct {
	ID           string    `json:"id"`
	UnitID       string    `json:"unit_id"`
	Channel      string    `json:"channel"`
	URL          string    `json:"url"`
	Kind         string    `json:"kind"`
	LastSyncedAt time.Time `json:"last_synced_at,omitzero"`
	LastError    string    `json:"last_error,omitempty"`
}

type FeedSyncResult struct {
	FeedID   string `json:"feed_id"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Error    string `json:"error,omitempty"`
}

type CalendarExport struct {
	UnitID      string `json:"unit_id"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"-"`
	PublicURL   string `json:"public_url,omitempty"`
}

func MapFeed(f domainavailability.FeedSubscription) FeedSubscription {
	return FeedSubscription{
		ID:           f.ID,
		UnitID:       f.UnitID,
		Channel:      f.Channel,
		URL:          f.URL,
		Kind:         string(f.Kind),
		LastSyncedAt: f.LastSyncedAt,
		LastError:    f.LastError,
	}
}
