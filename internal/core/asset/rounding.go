package asset

import (
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// STAmount limits for issued currencies.
// Reference: rippled STAmount cMinOffset / cMaxOffset
const (
	minIOUExponent = -96
	maxIOUExponent = 80

	// zeroIOUExponent is the exponent rippled assigns a zero issued amount.
	zeroIOUExponent = -100
)

// maxIntegral bounds integral amounts well inside int64.
var maxIntegral = number.New(9, 18)

// InRange reports whether v fits the native representation of a: an issued
// exponent of at most 80, or an integral amount below 9e18.
func InRange(a Asset, v number.Number) bool {
	if v.IsZero() {
		return true
	}
	if a.Integral() {
		return v.Abs().Lte(maxIntegral)
	}
	return v.Exponent() <= maxIOUExponent
}

// Amount converts v into the canonical representation of an amount of a,
// rounding with mode. Integral assets become whole numbers. Issued amounts
// keep Number's 16 digit mantissa and underflow to zero below 1e-81.
// Values outside InRange are returned unchanged; transactions reject them
// before any arithmetic.
func Amount(a Asset, v number.Number, mode number.RoundingMode) number.Number {
	if v.IsZero() || !InRange(a, v) {
		return v
	}
	if a.Integral() {
		return number.FromInt(v.Int64(mode))
	}
	if v.Exponent() < minIOUExponent {
		return number.Zero()
	}
	return v
}

// RoundToAsset rounds v to the precision of a at the given scale.
//
// Integral assets always round to a whole unit. Issued amounts whose
// exponent is already at or above scale are returned as is; anything finer
// is rounded to a multiple of 10^scale.
// Reference: rippled roundToAsset (STAmount.h)
func RoundToAsset(a Asset, v number.Number, scale int, mode number.RoundingMode) number.Number {
	amt := Amount(a, v, mode)
	if a.Integral() || amt.IsZero() {
		return amt
	}
	return number.RoundToScale(amt, scale, mode)
}

// IsRounded reports whether v is already representable at scale, i.e. it
// rounds to the same value in both directions.
func IsRounded(a Asset, v number.Number, scale int) bool {
	return RoundToAsset(a, v, scale, number.Downward).Equal(RoundToAsset(a, v, scale, number.Upward))
}

// LoanScale is the exponent a loan's tracked balances are rounded to. It is
// derived from the loan's total value: issued amounts use that value's
// exponent, integral assets always use 0.
// Reference: rippled LoanSet computeLoanProperties (loanScale)
func LoanScale(a Asset, totalValue number.Number) int {
	if a.Integral() {
		return 0
	}
	amt := Amount(a, totalValue, number.ToNearest)
	if amt.IsZero() {
		return zeroIOUExponent
	}
	return amt.Exponent()
}
