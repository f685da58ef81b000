package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("money: amount is not a finite decimal")
	ErrPrecision     = errors.New("money: value has more precision than allowed")
	ErrInvalidRate   = errors.New("money: rate must be a fraction between 0 and 1")
)

// RateScale is the denominator of Rate: rates are stored in parts per million.
const RateScale int64 = 1_000_000

// Rate is a fraction in [0, 1] expressed in parts per million.
type Rate int64

// ParseRate reads a decimal fraction such as "0.029". Values finer than one
// part per million are rejected instead of rounded.
func ParseRate(raw string) (Rate, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRate, raw)
	}
	scaled := d.Mul(decimal.NewFromInt(RateScale))
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: rate %q", ErrPrecision, raw)
	}
	r := Rate(scaled.IntPart())
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return r, nil
}

// MustRate is ParseRate for fixtures and tests.
func MustRate(raw string) Rate {
	r, err := ParseRate(raw)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rate) Validate() error {
	if r < 0 || int64(r) > RateScale {
		return ErrInvalidRate
	}
	return nil
}

func (r Rate) PPM() int64 { return int64(r) }

func (r Rate) String() string {
	return decimal.New(int64(r), -6).String()
}

// Exponent returns the number of minor-unit digits for an ISO 4217 code.
func Exponent(currency string) int32 {
	switch strings.ToUpper(currency) {
	case "JPY", "KRW", "VND", "CLP", "ISK", "UGX", "XAF", "XOF":
		return 0
	case "BHD", "KWD", "OMR", "JOD", "TND", "IQD", "LYD":
		return 3
	default:
		return 2
	}
}

// ParseMajor converts a major-unit decimal string ("123.45") into minor units.
func ParseMajor(raw string, currency string) (Minor, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return fromDecimal(d, Exponent(currency))
}

// FormatMajor renders minor units as a major-unit decimal string.
func FormatMajor(m Minor, currency string) string {
	exp := Exponent(currency)
	return decimal.New(int64(m), -exp).StringFixed(exp)
}

// MinorFromAny accepts the loosely typed values found in fixtures and legacy
// payloads (integers, json.Number, decimal strings, floats) and returns a
// validated minor amount. Strings and floats are read as minor units too;
// anything non-integral, non-finite or negative is rejected.
func MinorFromAny(v any) (Minor, error) {
	switch val := v.(type) {
	case Minor:
		return val, val.Validate()
	case int:
		return NewMinor(int64(val))
	case int64:
		return NewMinor(val)
	case json.Number:
		return MinorFromAny(string(val))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, val)
		}
		return fromDecimal(d, 0)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, ErrInvalidAmount
		}
		return fromDecimal(decimal.NewFromFloat(val), 0)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, v)
	}
}

func fromDecimal(d decimal.Decimal, exponent int32) (Minor, error) {
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	scaled := d.Shift(exponent)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, ErrPrecision
	}
	if scaled.GreaterThan(decimal.NewFromInt(int64(MaxMinor))) {
		return 0, ErrAmountTooLarge
	}
	return NewMinor(scaled.IntPart())
}
