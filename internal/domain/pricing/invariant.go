package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"rentavail/internal/domain/shared/money"
)

// InvariantViolation is raised (as a panic value) when a computed quote does not
// return exactly the base amount to the host. It indicates a bug in the engine,
// never bad input, so callers are not given an error to handle.
type InvariantViolation struct {
	Quote  Quote
	Reason string
}

func (v InvariantViolation) Error() string {
	return fmt.Sprintf("pricing invariant violated: %s (base=%d service=%d processor=%d total=%d)",
		v.Reason, v.Quote.BaseMinor, v.Quote.ServiceFeeMinor, v.Quote.ProcessorFeeMinor, v.Quote.TotalMinor)
}

func mustHold(q Quote, fees FeeConfig) {
	if q.TotalMinor-q.ServiceFeeMinor-q.ProcessorFeeMinor != q.BaseMinor {
		panic(InvariantViolation{Quote: q, Reason: "total - fees != base"})
	}
	if q.ProcessorFeeMinor < 0 {
		panic(InvariantViolation{Quote: q, Reason: "negative processor fee"})
	}
	// What the processor leaves behind must cover the host and the platform.
	kept := int64(q.TotalMinor)*(money.RateScale-fees.ProcessorPercentRate.PPM()) - int64(fees.ProcessorFixedMinor)*money.RateScale
	if kept < int64(q.NetAfterService())*money.RateScale {
		panic(InvariantViolation{Quote: q, Reason: "processor deduction exceeds fee"})
	}
}

func versionTag(fees FeeConfig, policy ServiceFeePolicy) string {
	canonical := FormulaVersion +
		"|proc=" + strconv.FormatInt(fees.ProcessorPercentRate.PPM(), 10) +
		"+" + strconv.FormatInt(int64(fees.ProcessorFixedMinor), 10) +
		"|svc=" + policy.Fingerprint()
	sum := sha256.Sum256([]byte(canonical))
	return FormulaVersion + "-" + hex.EncodeToString(sum[:])[:10]
}
