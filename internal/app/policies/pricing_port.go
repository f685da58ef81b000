package policies

import (
	domainpricing "rentavail/internal/domain/pricing"
	"rentavail/internal/domain/shared/money"
)

// PricingPort prices a host net amount. *pricing.Engine satisfies it.
type PricingPort interface {
	Price(base money.Minor, opts domainpricing.PriceOptions) (domainpricing.Quote, error)
	Version() string
}

var _ PricingPort = (*domainpricing.Engine)(nil)
