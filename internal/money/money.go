// Package money holds the decimal helpers shared by the case and payment
// components. Amounts are decimal.Decimal with two fractional digits; all
// splitting happens in whole cents so allocations never drift.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

const Scale int32 = 2

var (
	ErrNegativeAmount = errors.New("negative_amount")
	ErrTooPrecise     = errors.New("amount_has_more_than_two_decimals")
	ErrTooLarge       = errors.New("amount_too_large")
)

// MaxAmount is the largest value a decimal(14,2) column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

var hundred = decimal.NewFromInt(100)

// Zero is the additive identity.
var Zero = decimal.Zero

// FromCents converts an integer cent value to a decimal amount.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -Scale)
}

// ToCents converts a decimal amount to cents. The amount must already be
// representable in cents.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(Scale).Round(0).IntPart()
}

// Parse validates an externally supplied amount: non-negative, at most two
// decimals.
func Parse(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	return Normalize(d)
}

// Normalize rejects negative, over-precise or out-of-range amounts and fixes
// the scale.
func Normalize(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	if d.GreaterThan(MaxAmount) {
		return decimal.Zero, ErrTooLarge
	}
	if !d.Equal(d.Round(Scale)) {
		return decimal.Zero, ErrTooPrecise
	}
	return d.Round(Scale), nil
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Percentage returns part/whole*100 rounded to two decimals. A non-positive
// whole yields zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole).Round(Scale)
}
