package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Million is used when rendering band boundaries as "£50m" style labels.
var Million = decimal.NewFromInt(1_000_000)

// FromFloat converts a user supplied figure into a decimal. NaN and ±Inf become zero.
func FromFloat(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// NonNegative converts v and floors it at zero.
func NonNegative(v float64) decimal.Decimal {
	return Floor(FromFloat(v))
}

// Fraction converts v and clamps it to [0,1].
func Fraction(v float64) decimal.Decimal {
	d := NonNegative(v)
	if d.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return d
}

// Percent converts v and clamps it to [0,100].
func Percent(v float64) decimal.Decimal {
	d := NonNegative(v)
	hundred := decimal.NewFromInt(100)
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}

// Floor returns d, or zero when d is negative.
func Floor(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Ratio divides num by den, returning zero when den is not positive.
func Ratio(num, den decimal.Decimal) decimal.Decimal {
	if !den.IsPositive() {
		return decimal.Zero
	}
	return num.Div(den)
}

// Finite replaces NaN and ±Inf with zero.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
