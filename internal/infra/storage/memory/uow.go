package memory

import (
	"context"
	"errors"

	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
	domainbooking "rentavail/internal/domain/booking"
	domainquotes "rentavail/internal/domain/quotes"
	domainunits "rentavail/internal/domain/units"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	UnitsRepo         domainunits.Repository
	BookingsRepo      domainbooking.Repository
	BlocksRepo        domainavailability.BlockRepository
	ChannelEventsRepo domainavailability.ChannelEventRepository
	FeedsRepo         domainavailability.FeedRepository
	QuotesRepo        domainquotes.Repository
}

// NewFactory builds a factory over fresh, empty stores.
func NewFactory() Factory {
	return Factory{
		UnitsRepo:         NewUnitRepository(),
		BookingsRepo:      NewBookingRepository(),
		BlocksRepo:        NewBlockRepository(),
		ChannelEventsRepo: NewChannelEventRepository(),
		FeedsRepo:         NewFeedRepository(),
		QuotesRepo:        NewQuoteRepository(),
	}
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided but
// the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.UnitsRepo == nil || f.BookingsRepo == nil || f.BlocksRepo == nil || f.ChannelEventsRepo == nil || f.FeedsRepo == nil || f.QuotesRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
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
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}

var _ uow.UoWFactory = Factory{}
