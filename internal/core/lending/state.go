package lending

import (
	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// LoanState decomposes what is still owed on a loan.
//
//	InterestOutstanding = ValueOutstanding - PrincipalOutstanding
//	InterestDue         = InterestOutstanding - ManagementFeeDue
type LoanState struct {
	ValueOutstanding     number.Number
	PrincipalOutstanding number.Number
	InterestOutstanding  number.Number
	InterestDue          number.Number // owed to the vault
	ManagementFeeDue     number.Number // owed to the broker
}

// RawLoanState is the unrounded state implied by n remaining payments of
// periodicPayment.
func RawLoanState(periodicPayment, periodicRate number.Number, n uint32, feeRate TenthBips) LoanState {
	if n == 0 {
		z := number.Zero()
		return LoanState{z, z, z, z, z}
	}
	value := periodicPayment.MulInt(int64(n))
	principal := PrincipalFromPeriodicPayment(periodicPayment, periodicRate, n)
	interest := value.Sub(principal)
	fee := TenthBipsOfValue(interest, feeRate)
	return LoanState{
		ValueOutstanding:     value,
		PrincipalOutstanding: principal,
		InterestOutstanding:  interest,
		InterestDue:          interest.Sub(fee),
		ManagementFeeDue:     fee,
	}
}

// RoundedLoanState derives the state from the tracked balances. Nothing is
// rounded here; the inputs are already at the loan's scale.
func RoundedLoanState(totalValue, principal, managementFee number.Number) LoanState {
	interest := totalValue.Sub(principal)
	return LoanState{
		ValueOutstanding:     totalValue,
		PrincipalOutstanding: principal,
		InterestOutstanding:  interest,
		InterestDue:          interest.Sub(managementFee),
		ManagementFeeDue:     managementFee,
	}
}

// LoanRoundedState is RoundedLoanState over a loan's tracked balances.
func LoanRoundedState(l *entries.Loan) LoanState {
	return RoundedLoanState(l.TotalValueOutstanding, l.PrincipalOutstanding, l.ManagementFeeOutstanding)
}

// ComputeFee is the management fee on value, rounded down to scale.
func ComputeFee(a asset.Asset, value number.Number, feeRate TenthBips, scale int) number.Number {
	return asset.RoundToAsset(a, TenthBipsOfValue(value, feeRate), scale, number.Downward)
}

// ValueMinusFee is value less its management fee.
func ValueMinusFee(a asset.Asset, value number.Number, feeRate TenthBips, scale int) number.Number {
	return value.Sub(ComputeFee(a, value, feeRate, scale))
}

// RoundPeriodicPayment rounds a payment up to scale, so that the rounded
// schedule never pays less than the raw one.
func RoundPeriodicPayment(a asset.Asset, payment number.Number, scale int) number.Number {
	return asset.RoundToAsset(a, payment, scale, number.Upward)
}

// interestAndFeeParts splits raw interest into the vault's share and the
// broker's management fee.
func interestAndFeeParts(interest number.Number, feeRate TenthBips) (number.Number, number.Number) {
	fee := TenthBipsOfValue(interest, feeRate)
	return interest.Sub(fee), fee
}

// roundedInterestAndFeeParts is interestAndFeeParts with the fee rounded
// down to scale.
func roundedInterestAndFeeParts(a asset.Asset, interest number.Number, feeRate TenthBips, scale int) (number.Number, number.Number) {
	fee := ComputeFee(a, interest, feeRate, scale)
	return interest.Sub(fee), fee
}
