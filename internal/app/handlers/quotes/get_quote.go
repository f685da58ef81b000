package quotes

import (
	"context"

	"rentavail/internal/app/dto"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/queries"
	"rentavail/internal/app/uow"
	domainquotes "rentavail/internal/domain/quotes"
)

const getQuoteKey = "quotes.get"

type GetQuoteQuery struct {
	QuoteID string `validate:"required"`
}

func (q GetQuoteQuery) Key() string { return getQuoteKey }

// GetQuoteHandler returns a stored quote verbatim; it is never repriced.
type GetQuoteHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (dto.StayQuote, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.StayQuote{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	quote, err := unit.Quotes().ByID(execCtx, domainquotes.QuoteID(q.QuoteID))
	if err != nil {
		return dto.StayQuote{}, handlersupport.Classify(err)
	}
	return dto.MapStayQuote(quote), nil
}

var _ queries.Handler[GetQuoteQuery, dto.StayQuote] = (*GetQuoteHandler)(nil)
