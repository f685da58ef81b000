package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentavail/internal/domain/shared/money"
)

func standardFees() FeeConfig {
	return FeeConfig{
		ServiceFeeRate:       money.MustRate("0.06"),
		ProcessorPercentRate: money.MustRate("0.029"),
		ProcessorFixedMinor:  20,
	}
}

func TestPriceWorkedExample(t *testing.T) {
	q, err := Price(10000, standardFees())
	require.NoError(t, err)

	assert.Equal(t, money.Minor(10000), q.BaseMinor)
	assert.Equal(t, money.Minor(600), q.ServiceFeeMinor)
	assert.Equal(t, money.Minor(10600), q.NetAfterService())
	assert.Equal(t, money.Minor(10938), q.TotalMinor)
	assert.Equal(t, money.Minor(338), q.ProcessorFeeMinor)
	assert.NotEmpty(t, q.PricingVersion)
}

func TestPriceReturnsBaseToHostAcrossRange(t *testing.T) {
	engine, err := NewEngine(standardFees(), nil)
	require.NoError(t, err)

	var previous money.Minor
	for base := money.Minor(0); base <= 1_000_000; base++ {
		q, err := engine.Price(base, PriceOptions{})
		if err != nil {
			t.Fatalf("base %d: %v", base, err)
		}
		if q.TotalMinor-q.ServiceFeeMinor-q.ProcessorFeeMinor != base {
			t.Fatalf("base %d: identity broken: %+v", base, q)
		}
		if q.TotalMinor < previous {
			t.Fatalf("base %d: total %d decreased from %d", base, q.TotalMinor, previous)
		}
		previous = q.TotalMinor
	}
}

func TestPriceCoversProcessorDeduction(t *testing.T) {
	fees := standardFees()
	for _, base := range []money.Minor{0, 1, 99, 12345, 987654321} {
		q, err := Price(base, fees)
		require.NoError(t, err)
		// processor keeps rate*total + fixed; the rest must reach host and platform
		kept := int64(q.TotalMinor)*(money.RateScale-fees.ProcessorPercentRate.PPM()) - int64(fees.ProcessorFixedMinor)*money.RateScale
		assert.GreaterOrEqual(t, kept, int64(q.NetAfterService())*money.RateScale, "base %d", base)
	}
}

func TestPriceZeroBaseStillCoversFixedFee(t *testing.T) {
	q, err := Price(0, standardFees())
	require.NoError(t, err)
	assert.Equal(t, money.Minor(0), q.ServiceFeeMinor)
	// ceil(20 / 0.971) = 21
	assert.Equal(t, money.Minor(21), q.TotalMinor)
	assert.Equal(t, money.Minor(21), q.ProcessorFeeMinor)
}

func TestPriceRejectsInvalidInput(t *testing.T) {
	_, err := Price(-1, standardFees())
	require.ErrorIs(t, err, money.ErrNegativeAmount)

	_, err = Price(money.MaxMinor+1, standardFees())
	require.ErrorIs(t, err, money.ErrAmountTooLarge)

	bad := standardFees()
	bad.ProcessorPercentRate = money.MustRate("1")
	_, err = NewEngine(bad, nil)
	require.ErrorIs(t, err, ErrProcessorRate)
}

func TestServiceFeeRoundsHalfUp(t *testing.T) {
	flat := FlatRate{Rate: money.MustRate("0.05")}
	assert.Equal(t, money.Minor(1), flat.ServiceFee(10, PriceOptions{})) // 0.5 -> 1
	assert.Equal(t, money.Minor(0), flat.ServiceFee(9, PriceOptions{}))  // 0.45 -> 0
	assert.Equal(t, money.Minor(2), flat.ServiceFee(30, PriceOptions{})) // 1.5 -> 2
	assert.Equal(t, money.Minor(50), flat.ServiceFee(1000, PriceOptions{}))
}

func TestTieredFee(t *testing.T) {
	tiers, err := ParseTierTable("0:800, 50000:1200, 200000:1000")
	require.NoError(t, err)
	require.Equal(t, []Tier{{UpToMinor: 50000, BasisPoints: 1200}, {UpToMinor: 200000, BasisPoints: 1000}, {UpToMinor: 0, BasisPoints: 800}}, tiers)

	policy := TieredFee{Tiers: tiers, CapMinor: 20000, WaiveFirstCompleted: true}
	require.NoError(t, policy.Validate())

	assert.Equal(t, money.Minor(1200), policy.ServiceFee(10000, PriceOptions{}))
	assert.Equal(t, money.Minor(10000), policy.ServiceFee(100000, PriceOptions{}))
	assert.Equal(t, money.Minor(20000), policy.ServiceFee(1_000_000, PriceOptions{}), "capped")
	assert.Equal(t, money.Minor(0), policy.ServiceFee(10000, PriceOptions{FirstCompletedBooking: true}))

	engine, err := NewEngine(standardFees(), policy)
	require.NoError(t, err)
	for _, opts := range []PriceOptions{{}, {FirstCompletedBooking: true}} {
		for base := money.Minor(0); base <= 300_000; base += 7 {
			q, err := engine.Price(base, opts)
			require.NoError(t, err)
			require.Equal(t, base, q.TotalMinor-q.ServiceFeeMinor-q.ProcessorFeeMinor)
		}
	}

	waived, err := engine.Price(10000, PriceOptions{FirstCompletedBooking: true})
	require.NoError(t, err)
	assert.Equal(t, money.Minor(0), waived.ServiceFeeMinor)
	// ceil(10020 / 0.971) = 10320
	assert.Equal(t, money.Minor(10320), waived.TotalMinor)
}

func TestTieredFeeValidation(t *testing.T) {
	err := TieredFee{}.Validate()
	require.ErrorIs(t, err, ErrTierTableEmpty)

	err = TieredFee{Tiers: []Tier{{UpToMinor: 0, BasisPoints: 100}, {UpToMinor: 10, BasisPoints: 100}}}.Validate()
	require.ErrorIs(t, err, ErrTierOrder)

	err = TieredFee{Tiers: []Tier{{UpToMinor: 0, BasisPoints: 10001}}}.Validate()
	require.ErrorIs(t, err, ErrBasisPoints)

	_, err = ParseTierTable("nonsense")
	require.Error(t, err)
}

func TestVersionIsStableAndConfigSensitive(t *testing.T) {
	a, err := NewEngine(standardFees(), nil)
	require.NoError(t, err)
	b, err := NewEngine(standardFees(), nil)
	require.NoError(t, err)
	assert.Equal(t, a.Version(), b.Version())

	changed := standardFees()
	changed.ProcessorFixedMinor = 25
	c, err := NewEngine(changed, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.Version(), c.Version())
	assert.Contains(t, a.Version(), FormulaVersion)
}

func TestInvariantViolationPanics(t *testing.T) {
	broken := Quote{BaseMinor: 100, ServiceFeeMinor: 6, ProcessorFeeMinor: 4, TotalMinor: 111}
	require.PanicsWithValue(t, InvariantViolation{Quote: broken, Reason: "total - fees != base"}, func() {
		mustHold(broken, standardFees())
	})
}
