package lending

import (
	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// LoanProperties are the derived terms of a new or re-amortized loan.
type LoanProperties struct {
	PeriodicPayment       number.Number
	TotalValueOutstanding number.Number
	ManagementFeeOwed     number.Number
	LoanScale             int

	// FirstPaymentPrincipal is the raw principal part of the first payment.
	// A loan whose first payment does not reduce principal can never be
	// repaid.
	FirstPaymentPrincipal number.Number
}

// ComputeLoanProperties derives the schedule of a loan of principal repaid
// in n payments. The loan scale is taken from the total value, the largest
// amount the loan tracks.
func ComputeLoanProperties(
	a asset.Asset, principal number.Number,
	rate TenthBips, interval, n uint32, feeRate TenthBips,
) LoanProperties {
	periodicRate := PeriodicRate(rate, interval)
	payment := PeriodicPayment(principal, periodicRate, n)

	totalValue := asset.Amount(a, payment.MulInt(int64(n)), number.ToNearest)
	scale := asset.LoanScale(a, totalValue)

	principal = asset.RoundToAsset(a, principal, scale, number.ToNearest)
	fee := ComputeFee(a, totalValue.Sub(principal), feeRate, scale)

	first := ComputePaymentComponents(a, scale,
		totalValue, principal, fee, payment, periodicRate, n, feeRate)

	return LoanProperties{
		PeriodicPayment:       payment,
		TotalValueOutstanding: totalValue,
		ManagementFeeOwed:     fee,
		LoanScale:             scale,
		FirstPaymentPrincipal: first.RawPrincipal,
	}
}

// ScheduledPayment is one row of an amortization schedule.
type ScheduledPayment struct {
	Number    uint32
	DueDate   uint32
	Principal number.Number
	Interest  number.Number
	Fee       number.Number
	Total     number.Number

	PrincipalOutstanding  number.Number
	TotalValueOutstanding number.Number
}

// Schedule projects the tracked payments of a loan paid exactly on time,
// starting from the given balances. It stops when the loan is repaid or
// after n rows.
func Schedule(
	a asset.Asset, scale int,
	totalValue, principal, managementFee, periodicPayment number.Number,
	rate TenthBips, interval, n uint32, feeRate TenthBips,
	firstDueDate uint32,
) []ScheduledPayment {
	periodicRate := PeriodicRate(rate, interval)
	rows := make([]ScheduledPayment, 0, n)
	due := firstDueDate

	for remaining := n; remaining > 0; remaining-- {
		c := ComputePaymentComponents(a, scale,
			totalValue, principal, managementFee, periodicPayment, periodicRate, remaining, feeRate)

		if c.Kind == PaymentFinal {
			totalValue, principal, managementFee = number.Zero(), number.Zero(), number.Zero()
		} else {
			totalValue = totalValue.Sub(c.TrackedValueDelta)
			principal = principal.Sub(c.TrackedPrincipalDelta)
			managementFee = managementFee.Sub(c.TrackedFeeDelta)
		}

		rows = append(rows, ScheduledPayment{
			Number:                n - remaining + 1,
			DueDate:               due,
			Principal:             c.TrackedPrincipalDelta,
			Interest:              c.TrackedInterestPart(),
			Fee:                   c.TrackedFeeDelta,
			Total:                 c.TrackedValueDelta,
			PrincipalOutstanding:  principal,
			TotalValueOutstanding: totalValue,
		})

		if c.Kind == PaymentFinal {
			break
		}
		due += interval
	}
	return rows
}
