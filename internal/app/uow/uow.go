package uow

import (
	"context"

	domainavailability "rentavail/internal/domain/availability"
	domainbooking "rentavail/internal/domain/booking"
	domainquotes "rentavail/internal/domain/quotes"
	domainunits "rentavail/internal/domain/units"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Units() domainunits.Repository
	Bookings() domainbooking.Repository
	Blocks() domainavailability.BlockRepository
	ChannelEvents() domainavailability.ChannelEventRepository
	Feeds() domainavailability.FeedRepository
	Quotes() domainquotes.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
