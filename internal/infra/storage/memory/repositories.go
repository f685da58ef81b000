package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainavailability "rentavail/internal/domain/availability"
	domainbooking "rentavail/internal/domain/booking"
	domainquotes "rentavail/internal/domain/quotes"
	"rentavail/internal/domain/shared/daterange"
	domainunits "rentavail/internal/domain/units"
)

// Repositories store copies, so callers never share state with the store and
// pending domain events are never persisted.

// UnitRepository is the in-memory unit directory.
type UnitRepository struct {
	mu    sync.RWMutex
	items map[domainunits.UnitID]domainunits.Unit
}

func NewUnitRepository() *UnitRepository {
	return &UnitRepository{items: make(map[domainunits.UnitID]domainunits.Unit)}
}

func (r *UnitRepository) ByID(ctx context.Context, id domainunits.UnitID) (*domainunits.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domainunits.ErrUnitNotFound
	}
	return &u, nil
}

func (r *UnitRepository) Save(ctx context.Context, unit *domainunits.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	unit.Version++
	cp := *unit
	cp.ClearEvents()
	r.items[unit.ID] = cp
	return nil
}

func (r *UnitRepository) List(ctx context.Context) ([]*domainunits.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainunits.Unit, 0, len(r.items))
	for _, u := range r.items {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]domainbooking.Booking
}

// NewBookingRepository builds an empty booking repo.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]domainbooking.Booking)}
}

// ByID fetches a booking.
func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return &booking, nil
}

// Save stores the current booking state.
func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.Version++
	cp := *booking
	cp.ClearEvents()
	r.items[booking.ID] = cp
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	id := strings.TrimSpace(guestID)
	return r.filter(func(b domainbooking.Booking) bool { return b.GuestID == id }), nil
}

// ListByUnit returns every booking of the unit whose stay meets [from, to),
// whatever its state. The occupancy normalizer filters by state.
func (r *BookingRepository) ListByUnit(ctx context.Context, unitID domainunits.UnitID, from, to time.Time) ([]*domainbooking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.filter(func(b domainbooking.Booking) bool {
		return b.UnitID == unitID && b.Range.CheckIn.Before(to) && !b.Range.CheckOut.Before(from)
	}), nil
}

func (r *BookingRepository) filter(keep func(domainbooking.Booking) bool) []*domainbooking.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if keep(b) {
			b := b
			matches = append(matches, &b)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches
}

// BlockRepository keeps manual blocks in memory.
type BlockRepository struct {
	mu    sync.RWMutex
	items map[domainavailability.BlockID]domainavailability.ManualBlock
}

func NewBlockRepository() *BlockRepository {
	return &BlockRepository{items: make(map[domainavailability.BlockID]domainavailability.ManualBlock)}
}

func (r *BlockRepository) ByID(ctx context.Context, id domainavailability.BlockID) (*domainavailability.ManualBlock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainavailability.ErrBlockNotFound
	}
	return &b, nil
}

func (r *BlockRepository) Save(ctx context.Context, block *domainavailability.ManualBlock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	block.Version++
	cp := *block
	cp.ClearEvents()
	r.items[block.ID] = cp
	return nil
}

func (r *BlockRepository) Delete(ctx context.Context, id domainavailability.BlockID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainavailability.ErrBlockNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BlockRepository) ListByUnit(ctx context.Context, unitID string, from, to time.Time) ([]*domainavailability.ManualBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainavailability.ManualBlock, 0)
	for _, b := range r.items {
		if b.UnitID != unitID {
			continue
		}
		start, end := b.Span.Bounds()
		if start.Before(to) && end.After(from) {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ChannelEventRepository keeps imported channel events keyed by
// unit/channel/external id.
type ChannelEventRepository struct {
	mu    sync.RWMutex
	items map[string]domainavailability.ChannelEvent
}

func NewChannelEventRepository() *ChannelEventRepository {
	return &ChannelEventRepository{items: make(map[string]domainavailability.ChannelEvent)}
}

func (r *ChannelEventRepository) Upsert(ctx context.Context, event domainavailability.ChannelEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[event.Key()] = event
	return nil
}

func (r *ChannelEventRepository) Delete(ctx context.Context, unitID, channel, externalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, domainavailability.ChannelEvent{UnitID: unitID, Channel: channel, ExternalID: externalID}.Key())
	return nil
}

func (r *ChannelEventRepository) ReplaceFeed(ctx context.Context, unitID, feedID string, events []domainavailability.ChannelEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, ev := range r.items {
		if ev.UnitID == unitID && ev.FeedID == feedID {
			delete(r.items, key)
		}
	}
	for _, ev := range events {
		r.items[ev.Key()] = ev
	}
	return nil
}

func (r *ChannelEventRepository) ListByUnit(ctx context.Context, unitID string, from, to daterange.Day) ([]domainavailability.ChannelEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainavailability.ChannelEvent, 0)
	for _, ev := range r.items {
		if ev.UnitID == unitID && ev.StartDate < to && ev.EndDate >= from {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}

type FeedRepository struct {
	mu    sync.RWMutex
	items map[string]domainavailability.FeedSubscription
}

func NewFeedRepository() *FeedRepository {
	return &FeedRepository{items: make(map[string]domainavailability.FeedSubscription)}
}

func (r *FeedRepository) ByID(ctx context.Context, id string) (domainavailability.FeedSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	feed, ok := r.items[id]
	if !ok {
		return domainavailability.FeedSubscription{}, domainavailability.ErrFeedNotFound
	}
	return feed, nil
}

func (r *FeedRepository) Save(ctx context.Context, feed domainavailability.FeedSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[feed.ID] = feed
	return nil
}

func (r *FeedRepository) List(ctx context.Context) ([]domainavailability.FeedSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainavailability.FeedSubscription, 0, len(r.items))
	for _, feed := range r.items {
		out = append(out, feed)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type QuoteRepository struct {
	mu    sync.RWMutex
	items map[domainquotes.QuoteID]domainquotes.StayQuote
}

func NewQuoteRepository() *QuoteRepository {
	return &QuoteRepository{items: make(map[domainquotes.QuoteID]domainquotes.StayQuote)}
}

func (r *QuoteRepository) ByID(ctx context.Context, id domainquotes.QuoteID) (*domainquotes.StayQuote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.items[id]
	if !ok {
		return nil, domainquotes.ErrQuoteNotFound
	}
	return &q, nil
}

func (r *QuoteRepository) Save(ctx context.Context, quote *domainquotes.StayQuote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *quote
	cp.ClearEvents()
	r.items[quote.ID] = cp
	return nil
}

var (
	_ domainunits.Repository                    = (*UnitRepository)(nil)
	_ domainbooking.Repository                  = (*BookingRepository)(nil)
	_ domainavailability.BlockRepository        = (*BlockRepository)(nil)
	_ domainavailability.ChannelEventRepository = (*ChannelEventRepository)(nil)
	_ domainavailability.FeedRepository         = (*FeedRepository)(nil)
	_ domainquotes.Repository                   = (*QuoteRepository)(nil)
)
