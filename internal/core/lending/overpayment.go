package lending

import (
	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// computeOverpaymentComponents splits an overpayment into the overpayment
// fee, penalty interest and the principal it retires.
func computeOverpaymentComponents(
	a asset.Asset, scale int, overpayment number.Number,
	interestRate, feeRate, managementFeeRate TenthBips,
) PaymentComponentsPlus {
	fee := asset.RoundToAsset(a, TenthBipsOfValue(overpayment, feeRate), scale, number.ToNearest)
	payment := overpayment.Sub(fee)

	rawInterest, _ := interestAndFeeParts(TenthBipsOfValue(payment, interestRate), managementFeeRate)
	roundedInterest, roundedFee := roundedInterestAndFeeParts(a,
		asset.RoundToAsset(a, rawInterest, scale, number.ToNearest), managementFeeRate, scale)

	c := PaymentComponents{
		RawInterest:           rawInterest,
		RawPrincipal:          payment.Sub(rawInterest),
		RawFee:                number.Zero(),
		TrackedValueDelta:     payment,
		TrackedPrincipalDelta: payment.Sub(roundedInterest).Sub(roundedFee),
		TrackedFeeDelta:       roundedFee,
		Kind:                  PaymentExtra,
	}
	return withUntracked(c, fee, roundedInterest)
}

// overpaidBalances are the balances an overpayment rewrites.
type overpaidBalances struct {
	totalValue      number.Number
	principal       number.Number
	managementFee   number.Number
	periodicPayment number.Number
}

// tryOverpayment re-amortizes the loan over its remaining payments after
// retiring the principal in c, carrying the accumulated rounding error of
// each balance over to the new schedule. ok is false when the new loan
// would be unusable.
func (e *Engine) tryOverpayment(
	a asset.Asset, l *entries.Loan, t loanTerms, c PaymentComponentsPlus,
) (overpaidBalances, PaymentParts, bool) {
	raw := RawLoanState(l.PeriodicPayment, t.periodicRate, l.PaymentRemaining, t.feeRate)
	rounded := LoanRoundedState(l)

	valueErr := l.TotalValueOutstanding.Sub(raw.ValueOutstanding)
	principalErr := l.PrincipalOutstanding.Sub(raw.PrincipalOutstanding)
	feeErr := l.ManagementFeeOutstanding.Sub(raw.ManagementFeeDue)

	newRawPrincipal := number.Max(raw.PrincipalOutstanding.Sub(c.TrackedPrincipalDelta), number.Zero())

	props := ComputeLoanProperties(a, newRawPrincipal,
		TenthBips(l.InterestRate), t.interval, l.PaymentRemaining, t.feeRate)
	newRaw := RawLoanState(props.PeriodicPayment, t.periodicRate, l.PaymentRemaining, t.feeRate)

	next := overpaidBalances{
		totalValue:      asset.RoundToAsset(a, newRaw.ValueOutstanding.Add(valueErr), t.scale, number.ToNearest),
		principal:       asset.RoundToAsset(a, newRaw.PrincipalOutstanding.Add(principalErr), t.scale, number.Downward),
		managementFee:   asset.RoundToAsset(a, newRaw.ManagementFeeDue.Add(feeErr), t.scale, number.ToNearest),
		periodicPayment: props.PeriodicPayment,
	}

	if props.FirstPaymentPrincipal.Sign() <= 0 && next.principal.Sign() > 0 {
		e.Logger.Warn("loan overpayment would cause loan to be stuck",
			"first_payment_principal", props.FirstPaymentPrincipal.String(),
			"principal_outstanding", next.principal.String())
		return overpaidBalances{}, PaymentParts{}, false
	}
	if props.PeriodicPayment.Sign() <= 0 || props.TotalValueOutstanding.Sign() <= 0 ||
		props.ManagementFeeOwed.Sign() < 0 {
		e.Logger.Warn("overpayment not allowed",
			"total_value", props.TotalValueOutstanding.String(),
			"periodic_payment", props.PeriodicPayment.String(),
			"management_fee", props.ManagementFeeOwed.String())
		return overpaidBalances{}, PaymentParts{}, false
	}

	newRounded := RoundedLoanState(next.totalValue, next.principal, next.managementFee)
	valueChange := newRounded.InterestOutstanding.Sub(rounded.InterestOutstanding)

	return next, PaymentParts{
		PrincipalPaid: rounded.PrincipalOutstanding.Sub(newRounded.PrincipalOutstanding),
		InterestPaid:  rounded.InterestDue.Sub(newRounded.InterestDue),
		ValueChange:   valueChange.Add(c.UntrackedInterest),
		FeePaid:       rounded.ManagementFeeDue.Sub(newRounded.ManagementFeeDue).Add(c.UntrackedFee),
	}, true
}

// doOverpayment commits tryOverpayment to the loan if it reduces the
// principal. The schedule dates and remaining count do not change.
func (e *Engine) doOverpayment(a asset.Asset, l *entries.Loan, t loanTerms, c PaymentComponentsPlus) (PaymentParts, bool) {
	next, parts, ok := e.tryOverpayment(a, l, t, c)
	if !ok {
		return PaymentParts{}, false
	}
	if l.PrincipalOutstanding.Lte(next.principal) {
		e.Logger.Warn("overpayment not allowed: principal outstanding did not decrease",
			"before", l.PrincipalOutstanding.String(), "after", next.principal.String())
		return PaymentParts{}, false
	}

	l.TotalValueOutstanding = next.totalValue
	l.PrincipalOutstanding = next.principal
	l.ManagementFeeOutstanding = next.managementFee
	l.PeriodicPayment = next.periodicPayment
	return parts, true
}
