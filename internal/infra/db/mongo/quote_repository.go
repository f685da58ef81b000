package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainquotes "rentavail/internal/domain/quotes"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/money"
	domainunits "rentavail/internal/domain/units"
)

// QuoteRepository stores issued quotes. Quotes are immutable once issued.
type QuoteRepository struct {
	col *mongo.Collection
}

func NewQuoteRepository(db *mongo.Database) *QuoteRepository {
	return &QuoteRepository{col: db.Collection("stay_quotes")}
}

func (r *QuoteRepository) ByID(ctx context.Context, id domainquotes.QuoteID) (*domainquotes.StayQuote, error) {
	var doc quoteDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, storeErr(err, domainquotes.ErrQuoteNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *QuoteRepository) Save(ctx context.Context, q *domainquotes.StayQuote) error {
	doc := quoteDocument{
		ID:                    string(q.ID),
		UnitID:                string(q.UnitID),
		CheckIn:               q.CheckIn.UTC(),
		CheckOut:              q.CheckOut.UTC(),
		Nights:                q.Nights,
		Currency:              q.Currency,
		Stay:                  newPriceDocument(q.Stay),
		SingleNight:           newPriceDocument(q.SingleNight),
		AverageNightly:        int64(q.AverageNightlyMinor),
		FirstCompletedBooking: q.FirstCompletedBooking,
		IssuedAt:              q.IssuedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return apperr.Upstream(err)
	}
	return nil
}

type quoteDocument struct {
	ID                    string        `bson:"_id"`
	UnitID                string        `bson:"unit_id"`
	CheckIn               time.Time     `bson:"check_in"`
	CheckOut              time.Time     `bson:"check_out"`
	Nights                int           `bson:"nights"`
	Currency              string        `bson:"currency"`
	Stay                  priceDocument `bson:"stay"`
	SingleNight           priceDocument `bson:"single_night"`
	AverageNightly        int64         `bson:"average_nightly"`
	FirstCompletedBooking bool          `bson:"first_completed_booking"`
	IssuedAt              time.Time     `bson:"issued_at"`
}

func (d quoteDocument) toAggregate() *domainquotes.StayQuote {
	return &domainquotes.StayQuote{
		ID:                    domainquotes.QuoteID(d.ID),
		UnitID:                domainunits.UnitID(d.UnitID),
		CheckIn:               d.CheckIn.UTC(),
		CheckOut:              d.CheckOut.UTC(),
		Nights:                d.Nights,
		Currency:              d.Currency,
		Stay:                  d.Stay.toQuote(),
		SingleNight:           d.SingleNight.toQuote(),
		AverageNightlyMinor:   money.Minor(d.AverageNightly),
		FirstCompletedBooking: d.FirstCompletedBooking,
		IssuedAt:              d.IssuedAt.UTC(),
	}
}

var _ domainquotes.Repository = (*QuoteRepository)(nil)
