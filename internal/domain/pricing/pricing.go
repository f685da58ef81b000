package pricing

import (
	"errors"
	"fmt"

	"rentavail/internal/domain/shared/money"
)

var (
	ErrProcessorRate = errors.New("pricing: processor percent rate must be below 1")
	ErrPolicyMissing = errors.New("pricing: service fee policy missing")
)

// FormulaVersion names the all-in formula below. Bump it whenever the formula
// or its rounding changes so that issued quotes keep their meaning.
const FormulaVersion = "allin-v1"

// FeeConfig is loaded once at start and never mutated.
type FeeConfig struct {
	ServiceFeeRate       money.Rate
	ProcessorPercentRate money.Rate
	ProcessorFixedMinor  money.Minor
}

func (c FeeConfig) Validate() error {
	if err := c.ServiceFeeRate.Validate(); err != nil {
		return fmt.Errorf("service fee rate: %w", err)
	}
	if err := c.ProcessorPercentRate.Validate(); err != nil {
		return fmt.Errorf("processor rate: %w", err)
	}
	if c.ProcessorPercentRate.PPM() >= money.RateScale {
		return ErrProcessorRate
	}
	if err := c.ProcessorFixedMinor.Validate(); err != nil {
		return fmt.Errorf("processor fixed fee: %w", err)
	}
	return nil
}

// Quote is the fee-inclusive price of a base amount owed to the host.
type Quote struct {
	BaseMinor         money.Minor `json:"base_minor"`
	ServiceFeeMinor   money.Minor `json:"service_fee_minor"`
	ProcessorFeeMinor money.Minor `json:"processor_fee_minor"`
	TotalMinor        money.Minor `json:"total_minor"`
	PricingVersion    string      `json:"pricing_version"`
}

// NetAfterService is what remains once the processor has taken its cut.
func (q Quote) NetAfterService() money.Minor {
	return q.BaseMinor + q.ServiceFeeMinor
}

// PriceOptions carries caller facts that may change the service fee.
type PriceOptions struct {
	FirstCompletedBooking bool
}

// Engine derives guest totals from host net amounts.
type Engine struct {
	fees    FeeConfig
	policy  ServiceFeePolicy
	version string
}

// NewEngine validates the configuration. A nil policy charges the flat
// ServiceFeeRate from fees.
func NewEngine(fees FeeConfig, policy ServiceFeePolicy) (*Engine, error) {
	if err := fees.Validate(); err != nil {
		return nil, err
	}
	if policy == nil {
		policy = FlatRate{Rate: fees.ServiceFeeRate}
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Engine{fees: fees, policy: policy, version: versionTag(fees, policy)}, nil
}

// Price computes a quote with the flat service fee of cfg.
func Price(base money.Minor, cfg FeeConfig) (Quote, error) {
	engine, err := NewEngine(cfg, nil)
	if err != nil {
		return Quote{}, err
	}
	return engine.Price(base, PriceOptions{})
}

func (e *Engine) Version() string { return e.version }

func (e *Engine) Fees() FeeConfig { return e.fees }

// Price applies
//
//	service   = round_half_up(base * serviceRate)
//	net       = base + service
//	total     = ceil((net + processorFixed) / (1 - processorRate))
//	processor = total - net
//
// Rounding up the total means the host is never short-paid; the platform
// absorbs the sub-minor residue.
func (e *Engine) Price(base money.Minor, opts PriceOptions) (Quote, error) {
	if e == nil || e.policy == nil {
		return Quote{}, ErrPolicyMissing
	}
	if err := base.Validate(); err != nil {
		return Quote{}, err
	}
	service := e.policy.ServiceFee(base, opts)
	if err := service.Validate(); err != nil {
		return Quote{}, err
	}
	net := base + service

	numerator := (int64(net) + int64(e.fees.ProcessorFixedMinor)) * money.RateScale
	denominator := money.RateScale - e.fees.ProcessorPercentRate.PPM()
	total := money.Minor(ceilDiv(numerator, denominator))
	if err := total.Validate(); err != nil {
		return Quote{}, err
	}

	q := Quote{
		BaseMinor:         base,
		ServiceFeeMinor:   service,
		ProcessorFeeMinor: total - net,
		TotalMinor:        total,
		PricingVersion:    e.version,
	}
	mustHold(q, e.fees)
	return q, nil
}

func roundHalfUp(numerator, denominator int64) int64 {
	return (numerator + denominator/2) / denominator
}

func ceilDiv(numerator, denominator int64) int64 {
	return (numerator + denominator - 1) / denominator
}
