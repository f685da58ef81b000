package middleware

import (
	"context"

	"rentavail/internal/app/commands"
	"rentavail/internal/app/outbox"
)

// OutboxFlush flushes staged events once the inner chain succeeded. Placed
// inside Transaction, a flush failure rolls the change back with it.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
