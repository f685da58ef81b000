package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/daterange"
)

// ChannelEventRepository keeps imported channel records keyed by
// unit/channel/external id. Dates are stored as day numbers.
type ChannelEventRepository struct {
	col *mongo.Collection
}

func NewChannelEventRepository(db *mongo.Database) *ChannelEventRepository {
	return &ChannelEventRepository{col: db.Collection("channel_events")}
}

func (r *ChannelEventRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "start_date", Value: 1}}},
		{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "feed_id", Value: 1}}},
	})
	return err
}

func (r *ChannelEventRepository) Upsert(ctx context.Context, event domainavailability.ChannelEvent) error {
	doc := newChannelEventDocument(event)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

func (r *ChannelEventRepository) Delete(ctx context.Context, unitID, channel, externalID string) error {
	key := domainavailability.ChannelEvent{UnitID: unitID, Channel: channel, ExternalID: externalID}.Key()
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

// ReplaceFeed runs inside the caller's transaction when one is on ctx.
func (r *ChannelEventRepository) ReplaceFeed(ctx context.Context, unitID, feedID string, events []domainavailability.ChannelEvent) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{"unit_id": unitID, "feed_id": feedID}); err != nil {
		return apperr.Upstream(err)
	}
	if len(events) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(events))
	for _, ev := range events {
		doc := newChannelEventDocument(ev)
		models = append(models, mongo.NewReplaceOneModel().SetFilter(bson.M{"_id": doc.ID}).SetReplacement(doc).SetUpsert(true))
	}
	if _, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

func (r *ChannelEventRepository) ListByUnit(ctx context.Context, unitID string, from, to daterange.Day) ([]domainavailability.ChannelEvent, error) {
	filter := bson.M{
		"unit_id":    unitID,
		"start_date": bson.M{"$lt": int64(to)},
		"end_date":   bson.M{"$gte": int64(from)},
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	var docs []channelEventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperr.Upstream(err)
	}
	out := make([]domainavailability.ChannelEvent, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toEvent())
	}
	return out, nil
}

type channelEventDocument struct {
	ID         string    `bson:"_id"`
	UnitID     string    `bson:"unit_id"`
	Channel    string    `bson:"channel"`
	ExternalID string    `bson:"external_id"`
	FeedID     string    `bson:"feed_id,omitempty"`
	Kind       string    `bson:"kind"`
	Status     string    `bson:"status,omitempty"`
	StartDate  int64     `bson:"start_date"`
	EndDate    int64     `bson:"end_date"`
	Summary    string    `bson:"summary,omitempty"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func newChannelEventDocument(ev domainavailability.ChannelEvent) channelEventDocument {
	return channelEventDocument{
		ID:         ev.Key(),
		UnitID:     ev.UnitID,
		Channel:    ev.Channel,
		ExternalID: ev.ExternalID,
		FeedID:     ev.FeedID,
		Kind:       string(ev.Kind),
		Status:     ev.Status,
		StartDate:  int64(ev.StartDate),
		EndDate:    int64(ev.EndDate),
		Summary:    ev.Summary,
		UpdatedAt:  ev.UpdatedAt.UTC(),
	}
}

func (d channelEventDocument) toEvent() domainavailability.ChannelEvent {
	return domainavailability.ChannelEvent{
		UnitID:     d.UnitID,
		Channel:    d.Channel,
		ExternalID: d.ExternalID,
		FeedID:     d.FeedID,
		Kind:       domainavailability.Kind(d.Kind),
		Status:     d.Status,
		StartDate:  daterange.Day(d.StartDate),
		EndDate:    daterange.Day(d.EndDate),
		Summary:    d.Summary,
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

// FeedRepository stores iCal feed subscriptions.
type FeedRepository struct {
	col *mongo.Collection
}

func NewFeedRepository(db *mongo.Database) *FeedRepository {
	return &FeedRepository{col: db.Collection("channel_feeds")}
}

func (r *FeedRepository) ByID(ctx context.Context, id string) (domainavailability.FeedSubscription, error) {
	var doc feedDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return domainavailability.FeedSubscription{}, storeErr(err, domainavailability.ErrFeedNotFound)
	}
	return doc.toFeed(), nil
}

func (r *FeedRepository) Save(ctx context.Context, feed domainavailability.FeedSubscription) error {
	doc := feedDocument{
		ID:           feed.ID,
		UnitID:       feed.UnitID,
		Channel:      feed.Channel,
		URL:          feed.URL,
		Kind:         string(feed.Kind),
		LastSyncedAt: feed.LastSyncedAt.UTC(),
		LastError:    feed.LastError,
	}
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true)); err != nil {
		return apperr.Upstream(err)
	}
	return nil
}

func (r *FeedRepository) List(ctx context.Context) ([]domainavailability.FeedSubscription, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	var docs []feedDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperr.Upstream(err)
	}
	out := make([]domainavailability.FeedSubscription, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toFeed())
	}
	return out, nil
}

type feedDocument struct {
	ID           string    `bson:"_id"`
	UnitID       string    `bson:"unit_id"`
	Channel      string    `bson:"channel"`
	URL          string    `bson:"url"`
	Kind         string    `bson:"kind"`
	LastSyncedAt time.Time `bson:"last_synced_at"`
	LastError    string    `bson:"last_error,omitempty"`
}

func (d feedDocument) toFeed() domainavailability.FeedSubscription {
	return domainavailability.FeedSubscription{
		ID:           d.ID,
		UnitID:       d.UnitID,
		Channel:      d.Channel,
		URL:          d.URL,
		Kind:         domainavailability.Kind(d.Kind),
		LastSyncedAt: d.LastSyncedAt.UTC(),
		LastError:    d.LastError,
	}
}

var (
	_ domainavailability.ChannelEventRepository = (*ChannelEventRepository)(nil)
	_ domainavailability.FeedRepository         = (*FeedRepository)(nil)
)
