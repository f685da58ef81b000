package commands

import (
	"context"
	"errors"
	"fmt"
)

// Command is a write intent. Key names the handler it is routed to.
type Command interface {
	Key() string
}

type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

// Bus is what handlers and middleware see. Results are untyped; use Dispatch.
type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound  = errors.New("commands: no handler registered")
	ErrDuplicateHandler = errors.New("commands: handler already registered")
	ErrInvalidCommand   = errors.New("commands: command does not match handler")
	ErrResultType       = errors.New("commands: unexpected result type")
	ErrNilBus           = errors.New("commands: nil bus")
	ErrNilCommand       = errors.New("commands: nil command")
)

// Dispatch sends cmd through bus and asserts the result to R. A nil result
// from a handler with a non-pointer R yields the zero value.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
	if err != nil || res == nil {
		return zero, err
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T", ErrResultType, cmd.Key(), res)
	}
	return value, nil
}
