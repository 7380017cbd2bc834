package types

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMixedCurrency is returned when amounts in different currencies meet.
var ErrMixedCurrency = NewError(KindConflict, "mixed_currency", "mixed currencies are not supported")

// ErrAmountOverflow is returned when arithmetic would exceed what an int64
// of minor units can hold.
var ErrAmountOverflow = NewError(KindValidation, "amount_overflow", "amount is too large")

// minorUnitExponent lists ISO 4217 currencies whose minor unit is not 1/100.
var minorUnitExponent = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"BHD": 3,
	"KWD": 3,
}

// Money represents a monetary value with currency.
// Immutable value object - all operations return new instances.
type Money struct {
	amount   int64  // Amount in smallest currency unit (paise, cents)
	currency string // ISO 4217 currency code
}

func NewMoney(amount int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return Money{}, fmt.Errorf("currency is required")
	}
	if len(currency) != 3 {
		return Money{}, fmt.Errorf("currency must be 3-letter ISO code")
	}
	if amount < 0 {
		return Money{}, fmt.Errorf("amount must not be negative")
	}
	return Money{amount: amount, currency: currency}, nil
}

func MustNewMoney(amount int64, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromMajor converts a major-unit amount (e.g. 99.50 INR) to Money.
// Amounts finer than the currency's minor unit are rejected.
func MoneyFromMajor(amount decimal.Decimal, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	minor := amount.Shift(exponent(currency))
	if !minor.IsInteger() {
		return Money{}, fmt.Errorf("amount %s has more precision than %s allows", amount, currency)
	}
	return NewMoney(minor.IntPart(), currency)
}

func exponent(currency string) int32 {
	if e, ok := minorUnitExponent[currency]; ok {
		return e
	}
	return 2
}

func (m Money) Amount() int64    { return m.amount }
func (m Money) Currency() string { return m.currency }
func (m Money) IsZero() bool     { return m.amount == 0 }

// Major returns the amount in major units (rupees, dollars).
func (m Money) Major() decimal.Decimal {
	return decimal.New(m.amount, -exponent(m.currency))
}

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add %s to %s: %w", other.currency, m.currency, ErrMixedCurrency)
	}
	if other.amount > math.MaxInt64-m.amount {
		return Money{}, fmt.Errorf("%s + %s: %w", m, other, ErrAmountOverflow)
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Multiply scales m by a non-negative factor.
func (m Money) Multiply(factor int64) (Money, error) {
	if factor < 0 {
		return Money{}, fmt.Errorf("negative factor %d", factor)
	}
	if factor != 0 && m.amount > math.MaxInt64/factor {
		return Money{}, fmt.Errorf("%s x %d: %w", m, factor, ErrAmountOverflow)
	}
	return Money{amount: m.amount * factor, currency: m.currency}, nil
}

func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Major().StringFixed(exponent(m.currency)), m.currency)
}
