// Package pricing turns configured fee terms into the pricing engine.
package pricing

import (
	"fmt"
	"log/slog"
	"strings"

	"rentavail/internal/domain/pricing"
	"rentavail/internal/domain/shared/money"
	"rentavail/internal/infra/config"
)

// LoadEngine validates the fee settings once at start. The returned engine is
// read-only for the life of the process.
func LoadEngine(settings config.FeeSettings, logger *slog.Logger) (*pricing.Engine, error) {
	serviceRate, err := money.ParseRate(settings.ServiceFeeRate)
	if err != nil {
		return nil, fmt.Errorf("SERVICE_FEE_RATE: %w", err)
	}
	processorRate, err := money.ParseRate(settings.ProcessorPercentRate)
	if err != nil {
		return nil, fmt.Errorf("PROCESSOR_PERCENT_RATE: %w", err)
	}
	fixed, err := money.NewMinor(settings.ProcessorFixedMinor)
	if err != nil {
		return nil, fmt.Errorf("PROCESSOR_FIXED_MINOR: %w", err)
	}
	fees := pricing.FeeConfig{
		ServiceFeeRate:       serviceRate,
		ProcessorPercentRate: processorRate,
		ProcessorFixedMinor:  fixed,
	}

	policy, err := servicePolicy(settings, serviceRate)
	if err != nil {
		return nil, err
	}
	engine, err := pricing.NewEngine(fees, policy)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("fee schedule loaded",
			"service_fee_rate", serviceRate.String(),
			"processor_rate", processorRate.String(),
			"processor_fixed_minor", fixed,
			"pricing_version", engine.Version(),
		)
	}
	return engine, nil
}

func servicePolicy(settings config.FeeSettings, flat money.Rate) (pricing.ServiceFeePolicy, error) {
	if strings.TrimSpace(settings.Tiers) == "" {
		return pricing.FlatRate{Rate: flat}, nil
	}
	tiers, err := pricing.ParseTierTable(settings.Tiers)
	if err != nil {
		return nil, fmt.Errorf("SERVICE_FEE_TIERS: %w", err)
	}
	capMinor, err := money.NewMinor(settings.CapMinor)
	if err != nil {
		return nil, fmt.Errorf("SERVICE_FEE_CAP_MINOR: %w", err)
	}
	return pricing.TieredFee{Tiers: tiers, CapMinor: capMinor, WaiveFirstCompleted: settings.WaiveFirstCompleted}, nil
}
