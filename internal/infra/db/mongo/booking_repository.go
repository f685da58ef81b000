package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "rentavail/internal/domain/booking"
	"rentavail/internal/domain/pricing"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/daterange"
	"rentavail/internal/domain/shared/money"
	domainunits "rentavail/internal/domain/units"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("agg_booking")}
}

func (r *BookingRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "range.check_in", Value: 1}}},
		{Keys: bson.D{{Key: "guest_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, storeErr(err, domainbooking.ErrBookingNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err := versionedSave(res, err); err != nil {
		return err
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"guest_id": guestID}, opts)
}

// ListByUnit returns bookings in any state whose stay meets [from, to).
func (r *BookingRepository) ListByUnit(ctx context.Context, unitID domainunits.UnitID, from, to time.Time) ([]*domainbooking.Booking, error) {
	filter := bson.M{
		"unit_id":         string(unitID),
		"range.check_in":  bson.M{"$lt": to.UnixMilli()},
		"range.check_out": bson.M{"$gte": from.UnixMilli()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainbooking.Booking, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperr.Upstream(err)
	}
	out := make([]*domainbooking.Booking, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type bookingDocument struct {
	ID        string        `bson:"_id"`
	UnitID    string        `bson:"unit_id"`
	GuestID   string        `bson:"guest_id"`
	Range     rangeDocument `bson:"range"`
	Guests    int           `bson:"guests"`
	Currency  string        `bson:"currency"`
	Quote     priceDocument `bson:"quote"`
	State     string        `bson:"state"`
	CreatedAt int64         `bson:"created_at"`
	UpdatedAt int64         `bson:"updated_at"`
	Version   int64         `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:        string(b.ID),
		UnitID:    string(b.UnitID),
		GuestID:   b.GuestID,
		Range:     rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Guests:    b.Guests,
		Currency:  b.Currency,
		Quote:     newPriceDocument(b.Quote),
		State:     string(b.State),
		CreatedAt: b.CreatedAt.UnixMilli(),
		UpdatedAt: b.UpdatedAt.UnixMilli(),
		Version:   b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		UnitID:    domainunits.UnitID(d.UnitID),
		GuestID:   d.GuestID,
		Range:     daterange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Guests:    d.Guests,
		Currency:  d.Currency,
		Quote:     d.Quote.toQuote(),
		State:     domainbooking.BookingState(d.State),
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

// priceDocument stores amounts in minor units.
type priceDocument struct {
	Base           int64  `bson:"base"`
	ServiceFee     int64  `bson:"service_fee"`
	ProcessorFee   int64  `bson:"processor_fee"`
	Total          int64  `bson:"total"`
	PricingVersion string `bson:"pricing_version"`
}

func newPriceDocument(q pricing.Quote) priceDocument {
	return priceDocument{
		Base:           int64(q.BaseMinor),
		ServiceFee:     int64(q.ServiceFeeMinor),
		ProcessorFee:   int64(q.ProcessorFeeMinor),
		Total:          int64(q.TotalMinor),
		PricingVersion: q.PricingVersion,
	}
}

func (d priceDocument) toQuote() pricing.Quote {
	return pricing.Quote{
		BaseMinor:         money.Minor(d.Base),
		ServiceFeeMinor:   money.Minor(d.ServiceFee),
		ProcessorFeeMinor: money.Minor(d.ProcessorFee),
		TotalMinor:        money.Minor(d.Total),
		PricingVersion:    d.PricingVersion,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
