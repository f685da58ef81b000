package middleware_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentavail/internal/app/commands"
	"rentavail/internal/app/middleware"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/infra/storage/memory"
)

type reserveCommand struct {
	Nights int
	Key_   string
}

func (c reserveCommand) Key() string            { return "test.reserve" }
func (c reserveCommand) IdempotencyKey() string { return c.Key_ }
func (c reserveCommand) ResultPrototype() any   { return &reserveResult{} }

type reserveResult struct {
	Attempt int `json:"attempt"`
}

func newReserveBus(t *testing.T, fail func(attempt int) error) (commands.Bus, *int) {
	t.Helper()
	calls := 0
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, reserveCommand{}.Key(), commands.HandlerFunc[reserveCommand, *reserveResult](
		func(ctx context.Context, cmd reserveCommand) (*reserveResult, error) {
			calls++
			if err := fail(calls); err != nil {
				return nil, err
			}
			return &reserveResult{Attempt: calls}, nil
		}))
	return middleware.ChainCommands(bus, middleware.Idempotency(memory.NewIdempotencyStore(time.Hour), nil)), &calls
}

func TestIdempotencyReplaysFirstResult(t *testing.T) {
	bus, calls := newReserveBus(t, func(int) error { return nil })
	ctx := context.Background()

	first, err := commands.Dispatch[reserveCommand, *reserveResult](ctx, bus, reserveCommand{Key_: "k1"})
	require.NoError(t, err)
	second, err := commands.Dispatch[reserveCommand, *reserveResult](ctx, bus, reserveCommand{Key_: "k1"})
	require.NoError(t, err)
	assert.Equal(t, first.Attempt, second.Attempt)
	assert.Equal(t, 1, *calls)

	_, err = commands.Dispatch[reserveCommand, *reserveResult](ctx, bus, reserveCommand{})
	require.NoError(t, err)
	_, err = commands.Dispatch[reserveCommand, *reserveResult](ctx, bus, reserveCommand{})
	require.NoError(t, err)
	assert.Equal(t, 3, *calls, "commands without a key always run")
}

func TestIdempotencyReplaysClassifiedFailure(t *testing.T) {
	bus, calls := newReserveBus(t, func(int) error {
		return apperr.Conflict(apperr.CodeDatesUnavailable, "unavailable: 2030-02-11")
	})
	ctx := context.Background()

	_, err := commands.Dispatch[reserveCommand, *reserveResult](ctx, bus, reserveCommand{Key_: "k2"})
	require.Error(t, err)
	_, err = commands.Dispatch[reserveCommand, *reserveResult](ctx, bus, reserveCommand{Key_: "k2"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeDatesUnavailable, apperr.CodeOf(err))
	assert.Equal(t, 1, *calls)
}

func TestIdempotencyDoesNotPinTransientFailures(t *testing.T) {
	bus, calls := newReserveBus(t, func(attempt int) error {
		if attempt == 1 {
			return apperr.Upstream(errors.New("mongo unreachable"))
		}
		return nil
	})
	ctx := context.Background()

	_, err := commands.Dispatch[reserveCommand, *reserveResult](ctx, bus, reserveCommand{Key_: "k3"})
	require.Error(t, err)
	res, err := commands.Dispatch[reserveCommand, *reserveResult](ctx, bus, reserveCommand{Key_: "k3"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempt)
	assert.Equal(t, 2, *calls)
}
