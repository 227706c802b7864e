// Package money provides fixed-precision helpers for ledger amounts.
// Amounts are stored as int64 cents; decimal.Decimal is used at the
// boundary so that parsing and rounding never go through binary floats.
package money

import "github.com/shopspring/decimal"

// Epsilon is the tolerance below which two monetary values are treated
// as equal, compensating for representation noise in caller-supplied
// floating-point input.
var Epsilon = decimal.NewFromFloat(0.001)

// Round2 rounds to 2 decimal places using half-up rounding on the
// scaled integer representation, so 0.1 + 0.2 yields exactly 0.30.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToCents converts a monetary value to its scaled integer form,
// rounding to 2 decimal places first.
func ToCents(d decimal.Decimal) int64 {
	return Round2(d).Shift(2).IntPart()
}

// FromCents converts a scaled integer amount back to a decimal value.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// FromFloat converts a caller-supplied float to cents.
func FromFloat(f float64) int64 {
	return ToCents(decimal.NewFromFloat(f))
}

// EqualWithin reports whether two monetary values differ by less than
// Epsilon.
func EqualWithin(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(Epsilon)
}

// IsZero reports whether a cent amount is zero within Epsilon.
func IsZero(c int64) bool {
	return EqualWithin(FromCents(c), decimal.Zero)
}
