package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentavail/internal/domain/pricing"
	"rentavail/internal/domain/shared/money"
	"rentavail/internal/infra/config"
)

func TestLoadEngineFlat(t *testing.T) {
	engine, err := LoadEngine(config.FeeSettings{ServiceFeeRate: "0.06", ProcessorPercentRate: "0.029", ProcessorFixedMinor: 20}, nil)
	require.NoError(t, err)

	q, err := engine.Price(10_000, pricing.PriceOptions{})
	require.NoError(t, err)
	assert.Equal(t, money.Minor(600), q.ServiceFeeMinor)
	assert.Equal(t, money.Minor(10_938), q.TotalMinor)
	assert.Equal(t, engine.Version(), q.PricingVersion)
}

func TestLoadEngineTieredWaiver(t *testing.T) {
	engine, err := LoadEngine(config.FeeSettings{
		ServiceFeeRate:       "0.06",
		ProcessorPercentRate: "0",
		Tiers:                "0:800,50000:1200",
		WaiveFirstCompleted:  true,
	}, nil)
	require.NoError(t, err)

	q, err := engine.Price(10_000, pricing.PriceOptions{})
	require.NoError(t, err)
	assert.Equal(t, money.Minor(1_200), q.ServiceFeeMinor)

	waived, err := engine.Price(10_000, pricing.PriceOptions{FirstCompletedBooking: true})
	require.NoError(t, err)
	assert.Equal(t, money.Minor(0), waived.ServiceFeeMinor)
	assert.Equal(t, money.Minor(10_000), waived.TotalMinor)
}

func TestLoadEngineRejectsBadTerms(t *testing.T) {
	_, err := LoadEngine(config.FeeSettings{ServiceFeeRate: "abc", ProcessorPercentRate: "0.029"}, nil)
	require.ErrorContains(t, err, "SERVICE_FEE_RATE")

	_, err = LoadEngine(config.FeeSettings{ServiceFeeRate: "0.06", ProcessorPercentRate: "1"}, nil)
	require.ErrorIs(t, err, pricing.ErrProcessorRate)

	_, err = LoadEngine(config.FeeSettings{ServiceFeeRate: "0.06", ProcessorPercentRate: "0.029", ProcessorFixedMinor: -1}, nil)
	require.ErrorIs(t, err, money.ErrNegativeAmount)

	_, err = LoadEngine(config.FeeSettings{ServiceFeeRate: "0.06", ProcessorPercentRate: "0.029", Tiers: "x"}, nil)
	require.ErrorContains(t, err, "SERVICE_FEE_TIERS")
}
