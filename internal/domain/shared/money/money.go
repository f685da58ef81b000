package money

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrNegativeAmount   = errors.New("money: amount must not be negative")
	ErrAmountTooLarge   = errors.New("money: amount exceeds supported range")
)

// Minor is an amount in the smallest denomination of a currency. Valid values
// are non-negative and at most MaxMinor.
type Minor int64

// MaxMinor bounds every amount so that fee arithmetic scaled by RateScale stays
// inside int64.
const MaxMinor Minor = 1_000_000_000_000

// NewMinor validates a raw integer amount.
func NewMinor(v int64) (Minor, error) {
	m := Minor(v)
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return m, nil
}

func (m Minor) Validate() error {
	if m < 0 {
		return ErrNegativeAmount
	}
	if m > MaxMinor {
		return ErrAmountTooLarge
	}
	return nil
}

func (m Minor) Int64() int64 { return int64(m) }

// Times multiplies by a non-negative count, rejecting results above MaxMinor.
func (m Minor) Times(n int64) (Minor, error) {
	if n < 0 {
		return 0, ErrNegativeAmount
	}
	if n != 0 && int64(m) > int64(MaxMinor)/n {
		return 0, ErrAmountTooLarge
	}
	return Minor(int64(m) * n), nil
}

// Money pairs an amount with its ISO 4217 currency code.
type Money struct {
	Amount   Minor
	Currency string
}

// New constructs a Money value validating minimal invariants.
func New(amount Minor, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	if err := amount.Validate(); err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount Minor, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	sum := m.Amount + other.Amount
	if err := sum.Validate(); err != nil {
		return Money{}, err
	}
	return Money{Amount: sum, Currency: m.Currency}, nil
}

// Multiply multiplies the amount by the provided factor.
func (m Money) Multiply(times int64) (Money, error) {
	amount, err := m.Amount.Times(times)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: m.Currency}, nil
}

// IsZero returns true if the amount equals zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}

// DivRoundHalfUp divides m into n parts, rounding half away from zero.
func (m Minor) DivRoundHalfUp(n int64) Minor {
	if n <= 0 {
		return 0
	}
	return Minor((int64(m) + n/2) / n)
}
