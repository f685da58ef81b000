package blocks

import (
	"context"
	"log/slog"
	"time"

	"rentavail/internal/app/commands"
	"rentavail/internal/app/dto"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/outbox"
	"rentavail/internal/app/policies"
	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
)

const updateBlockKey = "blocks.update"

// UpdateBlockCommand patches a block. A zero Span keeps the current span; nil
// text fields are left untouched.
type UpdateBlockCommand struct {
	BlockID   string `validate:"required"`
	Span      SpanInput
	Label     *string
	Notes     *string
	Color     *string
	CanManage bool
}

func (c UpdateBlockCommand) Key() string { return updateBlockKey }

func (c UpdateBlockCommand) PermissionGranted() bool { return c.CanManage }

type UpdateBlockHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *UpdateBlockHandler) Handle(ctx context.Context, cmd UpdateBlockCommand) (*dto.BlockResult, error) {
	params := domainavailability.UpdateBlockParams{Label: cmd.Label, Notes: cmd.Notes, Color: cmd.Color, Now: now(h.Now)}
	if !cmd.Span.empty() {
		span, err := cmd.Span.parse()
		if err != nil {
			return nil, err
		}
		params.Span = &span
	}

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

	block, err := unit.Blocks().ByID(ctx, domainavailability.BlockID(cmd.BlockID))
	if err != nil {
		return nil, handlersupport.Classify(err)
	}
	_, loc, err := handlersupport.LoadUnit(ctx, unit, block.UnitID)
	if err != nil {
		return nil, err
	}
	if err := block.Update(params); err != nil {
		return nil, handlersupport.Classify(err)
	}
	if err := unit.Blocks().Save(ctx, block); err != nil {
		return nil, handlersupport.Classify(err)
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, block); err != nil {
		return nil, err
	}
	overlap := conflicts(ctx, unit, block, loc)

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, handlersupport.Classify(err)
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("block updated", "block_id", block.ID, "unit_id", block.UnitID, "conflicts", len(overlap))
	}
	return &dto.BlockResult{Block: dto.MapBlock(block), Conflicts: overlap}, nil
}

var _ commands.Handler[UpdateBlockCommand, *dto.BlockResult] = (*UpdateBlockHandler)(nil)
var _ policies.GuardedMessage = UpdateBlockCommand{}
