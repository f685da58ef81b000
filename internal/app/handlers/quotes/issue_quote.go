package quotes

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"rentavail/internal/app/commands"
	"rentavail/internal/app/dto"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/middleware"
	"rentavail/internal/app/outbox"
	"rentavail/internal/app/uow"
	domainquotes "rentavail/internal/domain/quotes"
)

const issueQuoteKey = "quotes.issue"

type IssueQuoteCommand struct {
	UnitID                string `validate:"required"`
	CheckIn               string `validate:"required"`
	CheckOut              string `validate:"required"`
	FirstCompletedBooking bool
	IdempotencyKeyV       string
}

func (c IssueQuoteCommand) Key() string { return issueQuoteKey }

func (c IssueQuoteCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c IssueQuoteCommand) ResultPrototype() any { return &dto.StayQuote{} }

// IssueQuoteHandler prices a stay and stores the quote with the pricing
// version it was computed under.
type IssueQuoteHandler struct {
	UoWFactory uow.UoWFactory
	Service    *Service
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *IssueQuoteHandler) Handle(ctx context.Context, cmd IssueQuoteCommand) (*dto.StayQuote, error) {
	unit, ctx, managed, err := handlersupport.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	u, loc, err := handlersupport.LoadUnit(ctx, unit, cmd.UnitID)
	if err != nil {
		return nil, err
	}
	checkIn, checkOut, err := ParseStay(cmd.CheckIn, cmd.CheckOut, loc)
	if err != nil {
		return nil, err
	}
	quote, err := h.Service.Quote(StayRequest{Unit: u, Location: loc, CheckIn: checkIn, CheckOut: checkOut, FirstCompletedBooking: cmd.FirstCompletedBooking})
	if err != nil {
		return nil, err
	}
	quote.ID = domainquotes.QuoteID(uuid.NewString())
	quote.IssuedAt = now(h.Now)
	quote.Issue()

	if err := unit.Quotes().Save(ctx, quote); err != nil {
		return nil, handlersupport.Classify(err)
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, quote); err != nil {
		return nil, err
	}
	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, handlersupport.Classify(err)
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("quote issued", "quote_id", quote.ID, "unit_id", quote.UnitID, "nights", quote.Nights, "total_minor", quote.Stay.TotalMinor, "pricing_version", quote.Stay.PricingVersion)
	}
	out := dto.MapStayQuote(quote)
	return &out, nil
}

var _ commands.Handler[IssueQuoteCommand, *dto.StayQuote] = (*IssueQuoteHandler)(nil)
var _ middleware.IdempotentCommand = IssueQuoteCommand{}
