package quotes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainpricing "rentavail/internal/domain/pricing"
	"rentavail/internal/domain/shared/apperr"
	"rentavail/internal/domain/shared/money"
	domainunits "rentavail/internal/domain/units"
)

func testService(t *testing.T) *Service {
	t.Helper()
	engine, err := domainpricing.NewEngine(domainpricing.FeeConfig{
		ServiceFeeRate:       money.MustRate("0.06"),
		ProcessorPercentRate: money.MustRate("0.029"),
		ProcessorFixedMinor:  20,
	}, nil)
	require.NoError(t, err)
	return &Service{Pricing: engine}
}

func testUnit(t *testing.T, minNights, maxNights int) *domainunits.Unit {
	t.Helper()
	u, err := domainunits.NewUnit(domainunits.CreateUnitParams{
		ID: "u1", Host: "h1", Title: "Flat", Currency: "USD", NightlyRate: 10000,
		Timezone: "UTC", MinNights: minNights, MaxNights: maxNights,
		Now: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return u
}

func stay(from, to string) (time.Time, time.Time) {
	in, _ := time.Parse("2006-01-02", from)
	out, _ := time.Parse("2006-01-02", to)
	return in, out
}

func TestQuoteStay(t *testing.T) {
	in, out := stay("2030-03-01", "2030-03-04")
	q, err := testService(t).Quote(StayRequest{Unit: testUnit(t, 1, 0), Location: time.UTC, CheckIn: in, CheckOut: out})
	require.NoError(t, err)

	assert.Equal(t, 3, q.Nights)
	assert.Equal(t, money.Minor(30000), q.Stay.BaseMinor)
	assert.Equal(t, money.Minor(10938), q.SingleNight.TotalMinor)
	assert.Equal(t, q.Stay.TotalMinor.DivRoundHalfUp(3), q.AverageNightlyMinor)
	assert.Equal(t, q.Stay.BaseMinor, q.Stay.TotalMinor-q.Stay.ServiceFeeMinor-q.Stay.ProcessorFeeMinor)
	assert.Equal(t, "USD", q.Currency)
}

func TestQuoteStayRules(t *testing.T) {
	svc := testService(t)
	cases := []struct {
		name     string
		from, to string
		min, max int
		code     string
	}{
		{"same day", "2030-03-01", "2030-03-01", 1, 0, apperr.CodeZeroNightStay},
		{"reversed", "2030-03-04", "2030-03-01", 1, 0, apperr.CodeReversedRange},
		{"below minimum", "2030-03-01", "2030-03-02", 2, 0, apperr.CodeBelowMinimumStay},
		{"above maximum", "2030-03-01", "2030-03-10", 1, 7, apperr.CodeAboveMaximumStay},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, out := stay(tc.from, tc.to)
			_, err := svc.Quote(StayRequest{Unit: testUnit(t, tc.min, tc.max), Location: time.UTC, CheckIn: in, CheckOut: out})
			require.Error(t, err)
			assert.Equal(t, tc.code, apperr.CodeOf(err))
		})
	}
}

func TestQuoteRejectsSuspendedUnit(t *testing.T) {
	u := testUnit(t, 1, 0)
	require.NoError(t, u.Suspend("inspection", time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)))
	in, out := stay("2030-03-01", "2030-03-03")
	_, err := testService(t).Quote(StayRequest{Unit: u, Location: time.UTC, CheckIn: in, CheckOut: out})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestQuoteRequiresPricing(t *testing.T) {
	in, out := stay("2030-03-01", "2030-03-03")
	_, err := (&Service{}).Quote(StayRequest{Unit: testUnit(t, 1, 0), Location: time.UTC, CheckIn: in, CheckOut: out})
	require.ErrorIs(t, err, ErrPricingRequired)
}
