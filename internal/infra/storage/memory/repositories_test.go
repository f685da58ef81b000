package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/domain/shared/daterange"
)

func TestBlockRepositoryListsOverlappingBlocks(t *testing.T) {
	ctx := context.Background()
	repo := NewBlockRepository()
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range [][2]string{{"2030-02-01", "2030-02-03"}, {"2030-03-10", "2030-03-12"}} {
		span, err := domainavailability.DateSpan(daterange.MustParseDay(r[0]), daterange.MustParseDay(r[1]))
		require.NoError(t, err)
		b, err := domainavailability.NewManualBlock(domainavailability.CreateBlockParams{
			ID: domainavailability.BlockID([]string{"b1", "b2"}[i]), UnitID: "u1", Span: span, Label: "Owner", Now: now.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, b))
	}

	from := daterange.MustParseDay("2030-02-02").Midnight(time.UTC)
	to := daterange.MustParseDay("2030-02-20").Midnight(time.UTC)
	got, err := repo.ListByUnit(ctx, "u1", from, to)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domainavailability.BlockID("b1"), got[0].ID)
	assert.Empty(t, got[0].PendingEvents(), "stored copies carry no pending events")

	got, err = repo.ListByUnit(ctx, "u2", from, to)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, repo.Delete(ctx, "b1"))
	require.ErrorIs(t, repo.Delete(ctx, "b1"), domainavailability.ErrBlockNotFound)
}

func TestChannelEventReplaceFeed(t *testing.T) {
	ctx := context.Background()
	repo := NewChannelEventRepository()
	ev := func(id, feed, start, end string) domainavailability.ChannelEvent {
		return domainavailability.ChannelEvent{
			UnitID: "u1", Channel: "airbnb", ExternalID: id, FeedID: feed, Kind: domainavailability.KindBooked,
			StartDate: daterange.MustParseDay(start), EndDate: daterange.MustParseDay(end),
		}
	}
	require.NoError(t, repo.Upsert(ctx, ev("pushed", "", "2030-01-05", "2030-01-06")))
	require.NoError(t, repo.ReplaceFeed(ctx, "u1", "f1", []domainavailability.ChannelEvent{
		ev("a", "f1", "2030-01-10", "2030-01-12"),
		ev("b", "f1", "2030-01-20", "2030-01-21"),
	}))
	require.NoError(t, repo.ReplaceFeed(ctx, "u1", "f1", []domainavailability.ChannelEvent{
		ev("b", "f1", "2030-01-20", "2030-01-22"),
	}))

	got, err := repo.ListByUnit(ctx, "u1", daterange.MustParseDay("2030-01-01"), daterange.MustParseDay("2030-02-01"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ExternalID)
	assert.Equal(t, daterange.MustParseDay("2030-01-22"), got[0].EndDate)
	assert.Equal(t, "pushed", got[1].ExternalID, "pushed events survive a feed replace")

	got, err = repo.ListByUnit(ctx, "u1", daterange.MustParseDay("2030-01-22"), daterange.MustParseDay("2030-01-23"))
	require.NoError(t, err)
	require.Len(t, got, 1, "inclusive end day still overlaps")
}
