package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rentavail/internal/app/commands"
	"rentavail/internal/domain/shared/apperr"
)

// IdempotentCommand is a command whose caller may supply a replay key.
// ResultPrototype returns a pointer of the handler's result type.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any
}

// IdempotencyRecord stores the outcome of the first dispatch of a key. Failed
// dispatches keep their classification so a replay answers with the same
// status as the original.
type IdempotencyRecord struct {
	Key        string
	Payload    []byte
	Error      string
	ErrorKind  string
	ErrorCode  string
	OccurredAt time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONResultCodec) Decode(data []byte, out any) error { return json.Unmarshal(data, out) }

var errMissingPrototype = errors.New("middleware: idempotent command requires result prototype")

type idempotency struct {
	store IdempotencyStore
	codec ResultCodec
	now   func() time.Time
}

// Idempotency answers a repeated key with the stored outcome of its first
// dispatch. Keys are scoped by command, so one client key reused across two
// different commands does not collide.
func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	m := idempotency{store: store, codec: codec, now: time.Now}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := fmt.Sprintf("%s:%s", cmd.Key(), idCmd.IdempotencyKey())
			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			if found {
				return m.replay(rec, idCmd)
			}
			result, err := next.Dispatch(ctx, cmd)
			return m.remember(ctx, key, result, err)
		})
	}
}

func (m idempotency) replay(rec IdempotencyRecord, cmd IdempotentCommand) (any, error) {
	if rec.Error != "" {
		if rec.ErrorKind == "" {
			return nil, errors.New(rec.Error)
		}
		return nil, &apperr.Error{Kind: apperr.Kind(rec.ErrorKind), Code: rec.ErrorCode, Message: rec.Error}
	}
	proto := cmd.ResultPrototype()
	if proto == nil {
		return nil, errMissingPrototype
	}
	if len(rec.Payload) == 0 {
		return proto, nil
	}
	if err := m.codec.Decode(rec.Payload, proto); err != nil {
		return nil, fmt.Errorf("middleware: decode replay %s: %w", rec.Key, err)
	}
	return proto, nil
}

// remember stores final outcomes. Upstream and context failures are
// transient and leave the key free for a retry.
func (m idempotency) remember(ctx context.Context, key string, result any, err error) (any, error) {
	rec := IdempotencyRecord{Key: key, OccurredAt: m.now().UTC()}
	if err != nil {
		if !storable(err) {
			return nil, err
		}
		rec.Error = err.Error()
		rec.ErrorKind = string(apperr.KindOf(err))
		rec.ErrorCode = apperr.CodeOf(err)
		if saveErr := m.store.Save(ctx, rec); saveErr != nil {
			return nil, errors.Join(err, saveErr)
		}
		return nil, err
	}
	if result != nil {
		payload, encErr := m.codec.Encode(result)
		if encErr != nil {
			return nil, encErr
		}
		rec.Payload = payload
	}
	if saveErr := m.store.Save(ctx, rec); saveErr != nil {
		return nil, saveErr
	}
	return result, nil
}

func storable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	kind := apperr.KindOf(err)
	return kind != "" && kind != apperr.KindUpstream
}
