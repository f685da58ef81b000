package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoQuery struct{ Value int }

func (echoQuery) Key() string { return "test.echo" }

func TestAskReturnsTypedResult(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler(bus, echoQuery{}.Key(), HandlerFunc[echoQuery, int](func(_ context.Context, q echoQuery) (int, error) {
		return q.Value * 2, nil
	}))

	out, err := Ask[echoQuery, int](context.Background(), bus, echoQuery{Value: 21})
	require.NoError(t, err)
	assert.Equal(t, 42, out)

	_, err = Ask[echoQuery, string](context.Background(), bus, echoQuery{})
	require.ErrorIs(t, err, ErrResultType)

	_, err = bus.Ask(context.Background(), nil)
	require.ErrorIs(t, err, ErrNilQuery)

	assert.Panics(t, func() {
		RegisterHandler(bus, echoQuery{}.Key(), HandlerFunc[echoQuery, int](func(context.Context, echoQuery) (int, error) { return 0, nil }))
	})
}
