package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRate(t *testing.T) {
	r, err := ParseRate(" 0.029 ")
	require.NoError(t, err)
	assert.Equal(t, int64(29_000), r.PPM())
	assert.Equal(t, "0.06", MustRate("0.06").String())

	for _, raw := range []string{"abc", "-0.1", "1.5"} {
		_, err := ParseRate(raw)
		assert.ErrorIs(t, err, ErrInvalidRate, raw)
	}
	_, err = ParseRate("0.0000001")
	assert.ErrorIs(t, err, ErrPrecision)
}

func TestMajorUnitBoundary(t *testing.T) {
	m, err := ParseMajor("123.45", "usd")
	require.NoError(t, err)
	assert.Equal(t, Minor(12345), m)

	_, err = ParseMajor("1.5", "JPY")
	assert.ErrorIs(t, err, ErrPrecision)
	_, err = ParseMajor("-1", "USD")
	assert.ErrorIs(t, err, ErrNegativeAmount)
	_, err = ParseMajor("1e15", "USD")
	assert.ErrorIs(t, err, ErrAmountTooLarge)

	assert.Equal(t, "109.38", FormatMajor(10938, "EUR"))
	assert.Equal(t, "500", FormatMajor(500, "JPY"))
	assert.Equal(t, "1.250", FormatMajor(1250, "KWD"))
}

func TestMinorFromAnyRejectsLooseValues(t *testing.T) {
	m, err := MinorFromAny(json.Number("1200"))
	require.NoError(t, err)
	assert.Equal(t, Minor(1200), m)
	m, err = MinorFromAny(float64(99))
	require.NoError(t, err)
	assert.Equal(t, Minor(99), m)

	_, err = MinorFromAny("12.5")
	assert.ErrorIs(t, err, ErrPrecision)
	_, err = MinorFromAny(math.NaN())
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = MinorFromAny(math.Inf(1))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = MinorFromAny(-1)
	assert.ErrorIs(t, err, ErrNegativeAmount)
	_, err = MinorFromAny(true)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestMinorArithmetic(t *testing.T) {
	total, err := Minor(12_500).Times(3)
	require.NoError(t, err)
	assert.Equal(t, Minor(37_500), total)
	_, err = MaxMinor.Times(2)
	assert.ErrorIs(t, err, ErrAmountTooLarge)

	assert.Equal(t, Minor(2735), Minor(10938).DivRoundHalfUp(4))
	assert.Equal(t, Minor(4), Minor(7).DivRoundHalfUp(2))
	assert.Equal(t, Minor(3), Minor(10).DivRoundHalfUp(3))
	assert.Equal(t, Minor(0), Minor(10).DivRoundHalfUp(0))
}

func TestMoneyCurrencyGuard(t *testing.T) {
	_, err := New(100, "EURO")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
	_, err = Must(100, "EUR").Add(Must(100, "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}
