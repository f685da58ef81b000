package blocks

import (
	"context"
	"sort"
	"strings"
	"time"

	"rentavail/internal/app/dto"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/queries"
	"rentavail/internal/app/uow"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/daterange"
)

const listBlocksKey = "blocks.list"

// ListBlocksQuery lists a unit's blocks. Without From/To the next year from
// today, in the unit's zone, is listed.
type ListBlocksQuery struct {
	UnitID string `validate:"required"`
	From   string
	To     string
}

func (q ListBlocksQuery) Key() string { return listBlocksKey }

type ListBlocksHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *ListBlocksHandler) Handle(ctx context.Context, q ListBlocksQuery) (dto.BlockCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BlockCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	u, loc, err := handlersupport.LoadUnit(execCtx, unit, q.UnitID)
	if err != nil {
		return dto.BlockCollection{}, err
	}

	today := daterange.DayOf(now(h.Now), loc)
	days := daterange.DayRange{From: today, To: today.AddDays(365)}
	if raw := strings.TrimSpace(q.From); raw != "" {
		if days.From, err = daterange.ParseDay(raw); err != nil {
			return dto.BlockCollection{}, apperr.Validation(apperr.CodeInvalidDate, "from must be a YYYY-MM-DD date")
		}
	}
	if raw := strings.TrimSpace(q.To); raw != "" {
		if days.To, err = daterange.ParseDay(raw); err != nil {
			return dto.BlockCollection{}, apperr.Validation(apperr.CodeInvalidDate, "to must be a YYYY-MM-DD date")
		}
	}
	if days.To < days.From {
		return dto.BlockCollection{}, apperr.Validation(apperr.CodeReversedRange, "to must not precede from")
	}

	rows, err := unit.Blocks().ListByUnit(execCtx, string(u.ID), days.From.Midnight(loc), days.To.Midnight(loc))
	if err != nil {
		return dto.BlockCollection{}, handlersupport.Classify(err)
	}
	items := make([]dto.Block, 0, len(rows))
	for _, b := range rows {
		if !b.Span.Days(loc).Overlaps(days) {
			continue
		}
		items = append(items, dto.MapBlock(b))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return dto.BlockCollection{Items: items}, nil
}

var _ queries.Handler[ListBlocksQuery, dto.BlockCollection] = (*ListBlocksHandler)(nil)
