package blocks

import (
	"context"
	"log/slog"
	"time"

	"rentavail/internal/app/commands"
	handlersupport "rentavail/internal/app/handlers/support"
	"rentavail/internal/app/outbox"
	"rentavail/internal/app/policies"
	"rentavail/internal/app/uow"
	domainavailability "rentavail/internal/domain/availability"
)

const deleteBlockKey = "blocks.delete"

type DeleteBlockCommand struct {
	BlockID   string `validate:"required"`
	CanManage bool
}

func (c DeleteBlockCommand) Key() string { return deleteBlockKey }

func (c DeleteBlockCommand) PermissionGranted() bool { return c.CanManage }

type DeleteBlockResult struct {
	BlockID string `json:"block_id"`
	UnitID  string `json:"unit_id"`
}

type DeleteBlockHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *DeleteBlockHandler) Handle(ctx context.Context, cmd DeleteBlockCommand) (*DeleteBlockResult, error) {
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
	block.Release(now(h.Now))
	if err := unit.Blocks().Delete(ctx, block.ID); err != nil {
		return nil, handlersupport.Classify(err)
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, block); err != nil {
		return nil, err
	}
	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, handlersupport.Classify(err)
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("block released", "block_id", block.ID, "unit_id", block.UnitID)
	}
	return &DeleteBlockResult{BlockID: string(block.ID), UnitID: block.UnitID}, nil
}

var _ commands.Handler[DeleteBlockCommand, *DeleteBlockResult] = (*DeleteBlockHandler)(nil)
var _ policies.GuardedMessage = DeleteBlockCommand{}
