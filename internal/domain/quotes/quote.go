package quotes

import (
	"context"
	"errors"
	"time"

	"rentavail/internal/domain/pricing"
	"rentavail/internal/domain/shared/events"
	"rentavail/internal/domain/shared/money"
	"rentavail/internal/domain/units"
)

var ErrQuoteNotFound = errors.New("quotes: quote not found")

type QuoteID string

// StayQuote is an issued price for a stay. It keeps the pricing version it was
// computed under and is never recomputed.
type StayQuote struct {
	ID                    QuoteID
	UnitID                units.UnitID
	CheckIn               time.Time
	CheckOut              time.Time
	Nights                int
	Currency              string
	Stay                  pricing.Quote
	SingleNight           pricing.Quote
	AverageNightlyMinor   money.Minor
	FirstCompletedBooking bool
	IssuedAt              time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id QuoteID) (*StayQuote, error)
	Save(ctx context.Context, quote *StayQuote) error
}

// Issue records the quote for downstream consumers.
func (q *StayQuote) Issue() {
	q.Record(QuoteIssued{
		QuoteID:        q.ID,
		UnitID:         q.UnitID,
		Nights:         q.Nights,
		TotalMinor:     q.Stay.TotalMinor,
		PricingVersion: q.Stay.PricingVersion,
		At:             q.IssuedAt,
	})
}

type QuoteIssued struct {
	QuoteID        QuoteID
	UnitID         units.UnitID
	Nights         int
	TotalMinor     money.Minor
	PricingVersion string
	At             time.Time
}

func (e QuoteIssued) EventName() string     { return "quote.issued" }
func (e QuoteIssued) AggregateID() string   { return string(e.QuoteID) }
func (e QuoteIssued) OccurredAt() time.Time { return e.At }
