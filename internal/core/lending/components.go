package lending

import (
	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// PaymentKind tags how a set of components affects the schedule.
type PaymentKind uint8

const (
	// PaymentRegular is one scheduled payment.
	PaymentRegular PaymentKind = iota
	// PaymentFinal zeroes every tracked balance.
	PaymentFinal
	// PaymentExtra reduces balances without consuming a scheduled payment.
	PaymentExtra
)

func (k PaymentKind) String() string {
	switch k {
	case PaymentRegular:
		return "regular"
	case PaymentFinal:
		return "final"
	case PaymentExtra:
		return "extra"
	default:
		return "unknown"
	}
}

// PaymentComponents is how a single payment reduces the loan.
//
// The raw fields follow the unrounded schedule. The tracked deltas are the
// amounts removed from the loan's tracked balances and are multiples of
// 10^scale.
type PaymentComponents struct {
	RawInterest  number.Number
	RawPrincipal number.Number
	RawFee       number.Number

	TrackedValueDelta     number.Number
	TrackedPrincipalDelta number.Number
	TrackedFeeDelta       number.Number

	Kind PaymentKind
}

// TrackedInterestPart is the interest portion of the tracked value delta.
func (c PaymentComponents) TrackedInterestPart() number.Number {
	return c.TrackedValueDelta.Sub(c.TrackedPrincipalDelta.Add(c.TrackedFeeDelta))
}

// PaymentComponentsPlus adds amounts charged on top of the tracked balances:
// service, late and close fees and penalty interest.
type PaymentComponentsPlus struct {
	PaymentComponents

	UntrackedFee      number.Number
	UntrackedInterest number.Number
}

// TotalDue is what the borrower must send to make this payment.
func (c PaymentComponentsPlus) TotalDue() number.Number {
	return c.TrackedValueDelta.Add(c.UntrackedInterest).Add(c.UntrackedFee)
}

func withUntracked(c PaymentComponents, fee, interest number.Number) PaymentComponentsPlus {
	return PaymentComponentsPlus{PaymentComponents: c, UntrackedFee: fee, UntrackedInterest: interest}
}

// rounding direction for carrying accumulated rounding error
func errorRounding(a asset.Asset) number.RoundingMode {
	if a.Integral() {
		return number.Downward
	}
	return number.TowardsZero
}

// roundedPrincipalComponent picks the principal part of roundedPayment so
// that the tracked principal converges on the raw schedule.
func roundedPrincipalComponent(
	a asset.Asset, scale int,
	rawPrincipal, principalOutstanding, rawPrincipalOutstanding, roundedPayment number.Number,
) number.Number {
	diff := asset.RoundToAsset(a, principalOutstanding.Sub(rawPrincipalOutstanding), scale, errorRounding(a))
	p := asset.RoundToAsset(a, rawPrincipal.Add(diff), scale, number.Downward)

	if p.Gt(roundedPayment) || p.Gt(principalOutstanding) {
		return number.Min(roundedPayment, principalOutstanding)
	}
	if p.Sign() < 0 {
		return number.Zero()
	}
	return p
}

// roundedInterestComponent is what is left of roundedPayment after the
// principal, adjusted by the accumulated interest rounding error.
func roundedInterestComponent(
	a asset.Asset, scale int,
	interestOutstanding, roundedPrincipal, rawInterestOutstanding, roundedPayment number.Number,
) number.Number {
	diff := asset.RoundToAsset(a, interestOutstanding.Sub(rawInterestOutstanding), scale, errorRounding(a))
	return number.Max(number.Zero(), roundedPayment.Sub(roundedPrincipal).Add(diff))
}

// roundedInterestAndFeeComponents splits what remains of roundedPayment
// after principal into interest and management fee. A shortfall comes out
// of interest first, then the fee.
func roundedInterestAndFeeComponents(
	a asset.Asset, scale int,
	interestOutstanding, feeOutstanding, roundedPrincipal,
	rawInterestOutstanding, rawFeeOutstanding, roundedPayment, periodicRate number.Number,
	feeRate TenthBips,
) (number.Number, number.Number) {
	if periodicRate.IsZero() {
		return number.Zero(), number.Zero()
	}

	interest := roundedInterestComponent(a, scale, interestOutstanding, roundedPrincipal, rawInterestOutstanding, roundedPayment)

	feeDiff := asset.RoundToAsset(a, feeOutstanding.Sub(rawFeeOutstanding), scale, errorRounding(a))
	fee := ComputeFee(a, interest, feeRate, scale).Add(feeDiff)
	fee = number.Min(number.Max(fee, number.Zero()), feeOutstanding)

	interest = number.Min(interestOutstanding, number.Max(number.Zero(), interest.Sub(fee)))

	excess := roundedPayment.Sub(roundedPrincipal.Add(interest).Add(fee))
	if excess.Sign() < 0 {
		take := number.Min(interest, excess.Neg())
		interest = interest.Sub(take)
		excess = excess.Add(take)
	}
	if excess.Sign() < 0 {
		take := number.Min(fee, excess.Neg())
		fee = fee.Sub(take)
	}
	return number.Max(number.Zero(), interest), number.Max(number.Zero(), fee)
}

// ComputePaymentComponents splits the next scheduled payment of a loan with
// the given tracked balances. The last payment, or any payment that would
// cover the whole outstanding value, settles everything.
func ComputePaymentComponents(
	a asset.Asset, scale int,
	totalValueOutstanding, principalOutstanding, managementFeeOutstanding,
	periodicPayment, periodicRate number.Number,
	paymentRemaining uint32, feeRate TenthBips,
) PaymentComponents {
	roundedPayment := RoundPeriodicPayment(a, periodicPayment, scale)
	raw := RawLoanState(periodicPayment, periodicRate, paymentRemaining, feeRate)

	if paymentRemaining == 1 || totalValueOutstanding.Lte(roundedPayment) {
		interest := number.Max(number.Zero(),
			totalValueOutstanding.Sub(principalOutstanding).Sub(managementFeeOutstanding))
		return PaymentComponents{
			RawInterest:           raw.InterestOutstanding,
			RawPrincipal:          raw.PrincipalOutstanding,
			RawFee:                raw.ManagementFeeDue,
			TrackedValueDelta:     interest.Add(principalOutstanding).Add(managementFeeOutstanding),
			TrackedPrincipalDelta: principalOutstanding,
			TrackedFeeDelta:       managementFeeOutstanding,
			Kind:                  PaymentFinal,
		}
	}

	rawInterest := raw.PrincipalOutstanding.Mul(periodicRate)
	rawPrincipal := periodicPayment.Sub(rawInterest)
	rawFee := TenthBipsOfValue(rawInterest, feeRate)

	principal := roundedPrincipalComponent(a, scale,
		rawPrincipal, principalOutstanding, raw.PrincipalOutstanding, roundedPayment)

	interest, fee := roundedInterestAndFeeComponents(a, scale,
		totalValueOutstanding.Sub(principalOutstanding), managementFeeOutstanding, principal,
		raw.InterestOutstanding, raw.ManagementFeeDue, roundedPayment, periodicRate, feeRate)

	return PaymentComponents{
		RawInterest:           rawInterest.Sub(rawFee),
		RawPrincipal:          rawPrincipal,
		RawFee:                rawFee,
		TrackedValueDelta:     principal.Add(interest).Add(fee),
		TrackedPrincipalDelta: principal,
		TrackedFeeDelta:       fee,
		Kind:                  PaymentRegular,
	}
}
