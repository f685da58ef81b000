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

// BlockRepository stores manual blocks. Each document carries the span's
// zone-independent bounds so range queries need no unit timezone.
type BlockRepository struct {
	col *mongo.Collection
}

func NewBlockRepository(db *mongo.Database) *BlockRepository {
	return &BlockRepository{col: db.Collection("agg_block")}
}

func (r *BlockRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "bounds_from", Value: 1}},
	})
	return err
}

func (r *BlockRepository) ByID(ctx context.Context, id domainavailability.BlockID) (*domainavailability.ManualBlock, error) {
	var doc blockDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, storeErr(err, domainavailability.ErrBlockNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *BlockRepository) Save(ctx context.Context, b *domainavailability.ManualBlock) error {
	doc := newBlockDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err := versionedSave(res, err); err != nil {
		return err
	}
	b.Version = doc.Version
	return nil
}

func (r *BlockRepository) Delete(ctx context.Context, id domainavailability.BlockID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return apperr.Upstream(err)
	}
	if res.DeletedCount == 0 {
		return domainavailability.ErrBlockNotFound
	}
	return nil
}

func (r *BlockRepository) ListByUnit(ctx context.Context, unitID string, from, to time.Time) ([]*domainavailability.ManualBlock, error) {
	filter := bson.M{
		"unit_id":     unitID,
		"bounds_from": bson.M{"$lt": to},
		"bounds_to":   bson.M{"$gt": from},
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	var docs []blockDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperr.Upstream(err)
	}
	out := make([]*domainavailability.ManualBlock, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type blockDocument struct {
	ID         string    `bson:"_id"`
	UnitID     string    `bson:"unit_id"`
	SpanKind   string    `bson:"span_kind"`
	StartDate  int64     `bson:"start_date,omitempty"`
	EndDate    int64     `bson:"end_date,omitempty"`
	StartAt    time.Time `bson:"start_at,omitempty"`
	EndAt      time.Time `bson:"end_at,omitempty"`
	BoundsFrom time.Time `bson:"bounds_from"`
	BoundsTo   time.Time `bson:"bounds_to"`
	Label      string    `bson:"label"`
	Notes      string    `bson:"notes,omitempty"`
	Color      string    `bson:"color,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
	Version    int64     `bson:"version"`
}

func newBlockDocument(b *domainavailability.ManualBlock) blockDocument {
	from, to := b.Span.Bounds()
	doc := blockDocument{
		ID:         string(b.ID),
		UnitID:     b.UnitID,
		SpanKind:   string(b.Span.Kind),
		BoundsFrom: from,
		BoundsTo:   to,
		Label:      b.Label,
		Notes:      b.Notes,
		Color:      b.Color,
		CreatedAt:  b.CreatedAt.UTC(),
		UpdatedAt:  b.UpdatedAt.UTC(),
		Version:    b.Version,
	}
	if b.Span.Kind == domainavailability.SpanDates {
		doc.StartDate = int64(b.Span.StartDate)
		doc.EndDate = int64(b.Span.EndDate)
	} else {
		doc.StartAt = b.Span.StartAt
		doc.EndAt = b.Span.EndAt
	}
	return doc
}

func (d blockDocument) toAggregate() *domainavailability.ManualBlock {
	span := domainavailability.BlockSpan{Kind: domainavailability.SpanKind(d.SpanKind)}
	if span.Kind == domainavailability.SpanDates {
		span.StartDate = daterange.Day(d.StartDate)
		span.EndDate = daterange.Day(d.EndDate)
	} else {
		span.StartAt = d.StartAt.UTC()
		span.EndAt = d.EndAt.UTC()
	}
	return &domainavailability.ManualBlock{
		ID:        domainavailability.BlockID(d.ID),
		UnitID:    d.UnitID,
		Span:      span,
		Label:     d.Label,
		Notes:     d.Notes,
		Color:     d.Color,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		Version:   d.Version,
	}
}

var _ domainavailability.BlockRepository = (*BlockRepository)(nil)
