package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rentavail/internal/domain/shared/money"
)

var (
	ErrTierTableEmpty = errors.New("pricing: tier table must have at least one tier")
	ErrTierOrder      = errors.New("pricing: tiers must be ordered by ascending bound with a single open-ended tier last")
	ErrBasisPoints    = errors.New("pricing: basis points must be within 0..10000")
)

const basisPointScale = 10_000

// ServiceFeePolicy derives the platform service fee from the host's base amount.
// Implementations must return a non-negative amount; the rest of the formula is
// shared.
type ServiceFeePolicy interface {
	ServiceFee(base money.Minor, opts PriceOptions) money.Minor
	Validate() error
	Fingerprint() string
}

// FlatRate charges round_half_up(base * Rate).
type FlatRate struct {
	Rate money.Rate
}

func (f FlatRate) ServiceFee(base money.Minor, _ PriceOptions) money.Minor {
	return money.Minor(roundHalfUp(int64(base)*f.Rate.PPM(), money.RateScale))
}

func (f FlatRate) Validate() error { return f.Rate.Validate() }

func (f FlatRate) Fingerprint() string { return "flat:" + strconv.FormatInt(f.Rate.PPM(), 10) }

// Tier applies BasisPoints to bases up to and including UpToMinor. A zero bound
// marks the open-ended last tier.
type Tier struct {
	UpToMinor   money.Minor
	BasisPoints int64
}

// TieredFee picks the tier matching the whole base, caps the fee at CapMinor
// (when positive) and waives it entirely for a caller's first completed booking
// when WaiveFirstCompleted is set.
type TieredFee struct {
	Tiers               []Tier
	CapMinor            money.Minor
	WaiveFirstCompleted bool
}

func (t TieredFee) ServiceFee(base money.Minor, opts PriceOptions) money.Minor {
	if t.WaiveFirstCompleted && opts.FirstCompletedBooking {
		return 0
	}
	bps := t.basisPointsFor(base)
	fee := money.Minor(roundHalfUp(int64(base)*bps, basisPointScale))
	if t.CapMinor > 0 && fee > t.CapMinor {
		fee = t.CapMinor
	}
	return fee
}

func (t TieredFee) basisPointsFor(base money.Minor) int64 {
	for _, tier := range t.Tiers {
		if tier.UpToMinor == 0 || base <= tier.UpToMinor {
			return tier.BasisPoints
		}
	}
	return t.Tiers[len(t.Tiers)-1].BasisPoints
}

func (t TieredFee) Validate() error {
	if len(t.Tiers) == 0 {
		return ErrTierTableEmpty
	}
	for i, tier := range t.Tiers {
		if tier.BasisPoints < 0 || tier.BasisPoints > basisPointScale {
			return ErrBasisPoints
		}
		if err := tier.UpToMinor.Validate(); err != nil {
			return err
		}
		last := i == len(t.Tiers)-1
		if tier.UpToMinor == 0 && !last {
			return ErrTierOrder
		}
		if i > 0 && tier.UpToMinor != 0 && tier.UpToMinor <= t.Tiers[i-1].UpToMinor {
			return ErrTierOrder
		}
	}
	return t.CapMinor.Validate()
}

func (t TieredFee) Fingerprint() string {
	parts := make([]string, 0, len(t.Tiers))
	for _, tier := range t.Tiers {
		parts = append(parts, fmt.Sprintf("%d@%d", tier.UpToMinor, tier.BasisPoints))
	}
	return fmt.Sprintf("tiered:%s;cap=%d;waive=%t", strings.Join(parts, ","), t.CapMinor, t.WaiveFirstCompleted)
}

// ParseTierTable reads "upTo:bps" pairs separated by commas, e.g.
// "50000:1200,200000:1000,0:800". Tiers are sorted by bound with the open-ended
// tier last.
func ParseTierTable(raw string) ([]Tier, error) {
	var tiers []Tier
	for _, chunk := range strings.Split(raw, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		bound, bps, ok := strings.Cut(chunk, ":")
		if !ok {
			return nil, fmt.Errorf("pricing: invalid tier %q", chunk)
		}
		upTo, err := strconv.ParseInt(strings.TrimSpace(bound), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("pricing: invalid tier bound %q: %w", bound, err)
		}
		points, err := strconv.ParseInt(strings.TrimSpace(bps), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("pricing: invalid tier basis points %q: %w", bps, err)
		}
		limit, err := money.NewMinor(upTo)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, Tier{UpToMinor: limit, BasisPoints: points})
	}
	if len(tiers) == 0 {
		return nil, ErrTierTableEmpty
	}
	sort.SliceStable(tiers, func(i, j int) bool {
		a, b := tiers[i].UpToMinor, tiers[j].UpToMinor
		if a == 0 {
			return false
		}
		if b == 0 {
			return true
		}
		return a < b
	})
	return tiers, nil
}

var (
	_ ServiceFeePolicy = FlatRate{}
	_ ServiceFeePolicy = TieredFee{}
)
