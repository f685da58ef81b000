package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
	domainbooking "rentavail/internal/domain/booking"
	domainquotes "rentavail/internal/domain/quotes"
	domainunits "rentavail/internal/domain/units"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	UnitsRepo         domainunits.Repository
	BookingsRepo      domainbooking.Repository
	BlocksRepo        domainavailability.BlockRepository
	ChannelEventsRepo domainavailability.ChannelEventRepository
	FeedsRepo         domainavailability.FeedRepository
	QuotesRepo        domainquotes.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction. Read-only units read a
// snapshot so the three occupancy sources agree with each other.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Snapshot())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{session: session, factory: f}, nil
}

type Unit struct {
	session mongo.Session
	factory Factory
}

func (u *Unit) Units() domainunits.Repository { return u.factory.UnitsRepo }

func (u *Unit) Bookings() domainbooking.Repository { return u.factory.BookingsRepo }

func (u *Unit) Blocks() domainavailability.BlockRepository { return u.factory.BlocksRepo }

func (u *Unit) ChannelEvents() domainavailability.ChannelEventRepository {
	return u.factory.ChannelEventsRepo
}

func (u *Unit) Feeds() domainavailability.FeedRepository { return u.factory.FeedsRepo }

func (u *Unit) Quotes() domainquotes.Repository { return u.factory.QuotesRepo }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.ContextInjector = (*Unit)(nil)
