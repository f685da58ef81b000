package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/money"
	domainunits "rentavail/internal/domain/units"
)

type UnitRepository struct {
	col *mongo.Collection
}

func NewUnitRepository(db *mongo.Database) *UnitRepository {
	return &UnitRepository{col: db.Collection("agg_unit")}
}

func (r *UnitRepository) ByID(ctx context.Context, id domainunits.UnitID) (*domainunits.Unit, error) {
	var doc unitDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		return nil, storeErr(err, domainunits.ErrUnitNotFound)
	}
	return doc.toAggregate(), nil
}

func (r *UnitRepository) Save(ctx context.Context, u *domainunits.Unit) error {
	doc := newUnitDocument(u)
	filter := bson.M{"_id": doc.ID, "version": u.Version}
	doc.Version = u.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err := versionedSave(res, err); err != nil {
		return err
	}
	u.Version = doc.Version
	return nil
}

func (r *UnitRepository) List(ctx context.Context) ([]*domainunits.Unit, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	var docs []unitDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperr.Upstream(err)
	}
	out := make([]*domainunits.Unit, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

type unitDocument struct {
	ID          string  `bson:"_id"`
	HostID      string  `bson:"host_id"`
	Title       string  `bson:"title"`
	Currency    string  `bson:"currency"`
	NightlyRate int64   `bson:"nightly_rate"`
	Timezone    string  `bson:"timezone"`
	Lat         float64 `bson:"lat"`
	Lon         float64 `bson:"lon"`
	MinNights   int     `bson:"min_nights"`
	MaxNights   int     `bson:"max_nights"`
	State       string  `bson:"state"`
	CreatedAt   int64   `bson:"created_at"`
	UpdatedAt   int64   `bson:"updated_at"`
	Version     int64   `bson:"version"`
}

func newUnitDocument(u *domainunits.Unit) unitDocument {
	return unitDocument{
		ID:          string(u.ID),
		HostID:      string(u.Host),
		Title:       u.Title,
		Currency:    u.Currency,
		NightlyRate: int64(u.NightlyRate),
		Timezone:    u.Timezone,
		Lat:         u.Lat,
		Lon:         u.Lon,
		MinNights:   u.MinNights,
		MaxNights:   u.MaxNights,
		State:       string(u.State),
		CreatedAt:   u.CreatedAt.UnixMilli(),
		UpdatedAt:   u.UpdatedAt.UnixMilli(),
		Version:     u.Version,
	}
}

func (d unitDocument) toAggregate() *domainunits.Unit {
	return &domainunits.Unit{
		ID:          domainunits.UnitID(d.ID),
		Host:        domainunits.HostID(d.HostID),
		Title:       d.Title,
		Currency:    d.Currency,
		NightlyRate: money.Minor(d.NightlyRate),
		Timezone:    d.Timezone,
		Lat:         d.Lat,
		Lon:         d.Lon,
		MinNights:   d.MinNights,
		MaxNights:   d.MaxNights,
		State:       domainunits.UnitState(d.State),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
		Version:     d.Version,
	}
}

var _ domainunits.Repository = (*UnitRepository)(nil)
