package blocks

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
	"rentavail/internal/app/policies"
	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
)

const createBlockKey = "blocks.create"

type CreateBlockCommand struct {
	UnitID          string `validate:"required"`
	Span            SpanInput
	Label           string `validate:"max=120"`
	Notes           string `validate:"max=2000"`
	Color           string
	CanManage       bool
	IdempotencyKeyV string
}

func (c CreateBlockCommand) Key() string { return createBlockKey }

func (c CreateBlockCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBlockCommand) ResultPrototype() any { return &dto.BlockResult{} }

func (c CreateBlockCommand) PermissionGranted() bool { return c.CanManage }

type CreateBlockHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *CreateBlockHandler) Handle(ctx context.Context, cmd CreateBlockCommand) (*dto.BlockResult, error) {
	span, err := cmd.Span.parse()
	if err != nil {
		return nil, err
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

	u, loc, err := handlersupport.LoadUnit(ctx, unit, cmd.UnitID)
	if err != nil {
		return nil, err
	}
	block, err := domainavailability.NewManualBlock(domainavailability.CreateBlockParams{
		ID:     domainavailability.BlockID(uuid.NewString()),
		UnitID: string(u.ID),
		Span:   span,
		Label:  cmd.Label,
		Notes:  cmd.Notes,
		Color:  cmd.Color,
		Now:    now(h.Now),
	})
	if err != nil {
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
		h.Logger.Info("block created", "block_id", block.ID, "unit_id", block.UnitID, "kind", block.Span.Kind, "conflicts", len(overlap))
	}
	return &dto.BlockResult{Block: dto.MapBlock(block), Conflicts: overlap}, nil
}

var _ commands.Handler[CreateBlockCommand, *dto.BlockResult] = (*CreateBlockHandler)(nil)
var _ middleware.IdempotentCommand = CreateBlockCommand{}
var _ policies.GuardedMessage = CreateBlockCommand{}
