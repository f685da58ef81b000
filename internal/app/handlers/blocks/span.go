package blocks

import (
	"context"
	"strings"
	"time"

	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/daterange"
)

// SpanInput is the wire shape of a block span: either both dates (inclusive)
// or both RFC3339 instants.
type SpanInput struct {
	StartDate string
	EndDate   string
	StartAt   string
	EndAt     string
}

func (in SpanInput) empty() bool {
	return strings.TrimSpace(in.StartDate+in.EndDate+in.StartAt+in.EndAt) == ""
}

func (in SpanInput) parse() (domainavailability.BlockSpan, error) {
	hasDates := strings.TrimSpace(in.StartDate) != "" || strings.TrimSpace(in.EndDate) != ""
	hasInstants := strings.TrimSpace(in.StartAt) != "" || strings.TrimSpace(in.EndAt) != ""
	switch {
	case hasDates && hasInstants:
		return domainavailability.BlockSpan{}, apperr.Validation(apperr.CodeInvalidBlock, "use either start_date/end_date or start_at/end_at")
	case hasDates:
		start, err := daterange.ParseDay(in.StartDate)
		if err != nil {
			return domainavailability.BlockSpan{}, apperr.Validation(apperr.CodeInvalidDate, "start_date must be a YYYY-MM-DD date")
		}
		end, err := daterange.ParseDay(in.EndDate)
		if err != nil {
			return domainavailability.BlockSpan{}, apperr.Validation(apperr.CodeInvalidDate, "end_date must be a YYYY-MM-DD date")
		}
		span, err := domainavailability.DateSpan(start, end)
		return span, handlersupport.Classify(err)
	case hasInstants:
		start, err := time.Parse(time.RFC3339, strings.TrimSpace(in.StartAt))
		if err != nil {
			return domainavailability.BlockSpan{}, apperr.Validation(apperr.CodeInvalidDate, "start_at must be an RFC3339 timestamp")
		}
		end, err := time.Parse(time.RFC3339, strings.TrimSpace(in.EndAt))
		if err != nil {
			return domainavailability.BlockSpan{}, apperr.Validation(apperr.CodeInvalidDate, "end_at must be an RFC3339 timestamp")
		}
		span, err := domainavailability.InstantSpan(start, end)
		return span, handlersupport.Classify(err)
	}
	return domainavailability.BlockSpan{}, handlersupport.Classify(domainavailability.ErrSpanRequired)
}

// conflicts lists booked days under the block. They are advisory: a failed
// read yields none rather than failing the mutation.
func conflicts(ctx context.Context, unit uow.UnitOfWork, block *domainavailability.ManualBlock, loc *time.Location) []string {
	days := block.Span.Days(loc)
	if days.Empty() {
		return []string{}
	}
	window := domainavailability.Window{Start: days.From, End: days.To, Location: loc}
	verdict, err := handlersupport.OccupancyReader(unit).Read(ctx, block.UnitID, window, domainavailability.BestEffort)
	if err != nil {
		return []string{}
	}
	out := make([]string, 0, len(verdict.BookedDays))
	for _, d := range verdict.BookedDays {
		out = append(out, d.String())
	}
	return out
}

func now(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock().UTC()
}
