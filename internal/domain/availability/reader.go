package availability

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/daterange"
)

// BookingSource lists raw booking rows that may intersect [from, to).
type BookingSource interface {
	ListForUnit(ctx context.Context, unitID string, from, to time.Time) ([]BookingRecord, error)
}

type BlockSource interface {
	ListByUnit(ctx context.Context, unitID string, from, to time.Time) ([]*ManualBlock, error)
}

type ChannelSource interface {
	ListByUnit(ctx context.Context, unitID string, from, to daterange.Day) ([]ChannelEvent, error)
}

// ReadMode selects how a failed sub-fetch is handled.
type ReadMode int

const (
	// Strict fails the whole read. Pricing and booking checks use it.
	Strict ReadMode = iota
	// BestEffort degrades to an empty verdict flagged as degraded.
	BestEffort
)

const DegradedWarning = "occupancy source unavailable; calendar may be incomplete"

// Reader fetches every occupancy source for a unit concurrently and
// aggregates the joined result.
type Reader struct {
	bookings BookingSource
	blocks   BlockSource
	channels ChannelSource
}

func NewReader(bookings BookingSource, blocks BlockSource, channels ChannelSource) *Reader {
	return &Reader{bookings: bookings, blocks: blocks, channels: channels}
}

func (r *Reader) Read(ctx context.Context, unitID string, window Window, mode ReadMode) (Verdict, error) {
	raw, err := r.fetch(ctx, unitID, window)
	if err != nil {
		if mode == BestEffort && apperr.IsUpstream(err) && !errors.Is(err, context.Canceled) {
			v := EmptyVerdict(window)
			v.Degraded = true
			v.Warning = DegradedWarning
			return v, nil
		}
		return Verdict{}, err
	}
	return Aggregate(NewNormalizer(window.Location).Normalize(raw), window), nil
}

func (r *Reader) fetch(ctx context.Context, unitID string, window Window) (RawRecords, error) {
	from, to := window.Instants()
	var raw RawRecords
	g, gctx := errgroup.WithContext(ctx)
	if r.bookings != nil {
		g.Go(func() error {
			rows, err := r.bookings.ListForUnit(gctx, unitID, from, to)
			raw.Bookings = rows
			return err
		})
	}
	if r.blocks != nil {
		g.Go(func() error {
			rows, err := r.blocks.ListByUnit(gctx, unitID, from, to)
			raw.Blocks = rows
			return err
		})
	}
	if r.channels != nil {
		g.Go(func() error {
			rows, err := r.channels.ListByUnit(gctx, unitID, window.Start, window.End)
			raw.ChannelEvents = rows
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return RawRecords{}, err
	}
	return raw, nil
}
