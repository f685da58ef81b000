package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Client struct {
	DB *mongo.Database
}

func New(ctx context.Context, uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Client{DB: m.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, readpref.Primary())
}

func (c *Client) Close(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}

// Repositories opens every collection-backed repository and makes sure
// their indexes exist.
func (c *Client) Repositories(ctx context.Context) (Factory, error) {
	bookings := NewBookingRepository(c.DB)
	blocks := NewBlockRepository(c.DB)
	channelEvents := NewChannelEventRepository(c.DB)
	for _, ix := range []indexer{bookings, blocks, channelEvents} {
		if err := ix.ensureIndexes(ctx); err != nil {
			return Factory{}, fmt.Errorf("mongo: ensure indexes: %w", err)
		}
	}
	return Factory{
		DB:                c.DB,
		UnitsRepo:         NewUnitRepository(c.DB),
		BookingsRepo:      bookings,
		BlocksRepo:        blocks,
		ChannelEventsRepo: channelEvents,
		FeedsRepo:         NewFeedRepository(c.DB),
		QuotesRepo:        NewQuoteRepository(c.DB),
	}, nil
}

type indexer interface {
	ensureIndexes(ctx context.Context) error
}
