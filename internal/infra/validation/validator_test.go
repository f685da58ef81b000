package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentavail/internal/domain/shared/apperr"
)

type sample struct {
	UnitID string `validate:"required"`
	Action string `validate:"omitempty,oneof=accept decline"`
	Label  string `json:"label" validate:"max=5"`
}

func TestValidateMapsToInvalidPayload(t *testing.T) {
	v := New()
	require.NoError(t, v.Validate(context.Background(), sample{UnitID: "u1"}))
	require.NoError(t, v.Validate(context.Background(), "not a struct"))

	err := v.Validate(context.Background(), sample{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeInvalidPayload, apperr.CodeOf(err))
	assert.Contains(t, err.Error(), "unit_id is required")

	err = v.Validate(context.Background(), &sample{UnitID: "u1", Action: "nope"})
	assert.Contains(t, err.Error(), "action must be one of")

	err = v.Validate(context.Background(), sample{UnitID: "u1", Label: "too long"})
	assert.Contains(t, err.Error(), "label must be at most 5")
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "unit_id", toSnake("UnitID"))
	assert.Equal(t, "idempotency_key_v", toSnake("IdempotencyKeyV"))
	assert.Equal(t, "url", toSnake("URL"))
}
