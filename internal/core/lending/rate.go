// Package lending implements loan amortization and payment settlement:
// periodic payments, the split of each payment into principal, interest
// and management fee, and the late, full and overpayment paths.
//
// All arithmetic uses number.Number. Values tracked on a loan are kept at
// the loan's scale; "raw" values are the unrounded amortization schedule
// the tracked values are reconciled against.
// Reference: rippled LendingHelpers.cpp
package lending

import (
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// TenthBips is a rate in tenth basis points: 1 is 0.001% and 100000 is 100%.
type TenthBips uint32

const (
	tenthBipsPerUnity = 100_000
	secondsPerYear    = 365 * 24 * 60 * 60

	// MaxRate is 100%, the upper bound of every loan rate.
	MaxRate TenthBips = tenthBipsPerUnity
)

// TenthBipsOfValue returns rate applied to v.
func TenthBipsOfValue(v number.Number, rate TenthBips) number.Number {
	return v.MulInt(int64(rate)).DivInt(tenthBipsPerUnity)
}

// PeriodicRate converts an annual rate into the rate for one payment
// interval of the given number of seconds.
func PeriodicRate(rate TenthBips, interval uint32) number.Number {
	return TenthBipsOfValue(number.FromUint32(interval), rate).DivInt(secondsPerYear)
}

// paymentFactor is r(1+r)^n / ((1+r)^n - 1).
func paymentFactor(periodicRate number.Number, n uint32) number.Number {
	raised := number.Power(number.FromInt(1).Add(periodicRate), n)
	return periodicRate.Mul(raised).Div(raised.Sub(number.FromInt(1)))
}

// PeriodicPayment is the annuity payment that amortizes principal over n
// payments. Interest free loans pay equal parts of the principal.
func PeriodicPayment(principal, periodicRate number.Number, n uint32) number.Number {
	if principal.IsZero() || n == 0 {
		return number.Zero()
	}
	if periodicRate.IsZero() {
		return principal.DivInt(int64(n))
	}
	return principal.Mul(paymentFactor(periodicRate, n))
}

// PrincipalFromPeriodicPayment inverts PeriodicPayment: the principal that
// n payments of payment would amortize.
func PrincipalFromPeriodicPayment(payment, periodicRate number.Number, n uint32) number.Number {
	if periodicRate.IsZero() {
		return payment.MulInt(int64(n))
	}
	return payment.Div(paymentFactor(periodicRate, n))
}

func secondsBetween(from, to uint32) int64 {
	if to <= from {
		return 0
	}
	return int64(to - from)
}

// LatePaymentInterest is the extra interest charged at lateRate for the
// seconds between the missed due date and now.
func LatePaymentInterest(principal number.Number, lateRate TenthBips, now, nextDueDate uint32) number.Number {
	overdue := secondsBetween(nextDueDate, now)
	return principal.Mul(PeriodicRate(lateRate, uint32(overdue)))
}

// AccruedInterest is the interest earned since the later of the start date
// and the previous payment, pro rated over the payment interval.
func AccruedInterest(principal, periodicRate number.Number, now, startDate, prevPaymentDate, interval uint32) number.Number {
	last := max(prevPaymentDate, startDate)
	elapsed := secondsBetween(last, now)
	return principal.Mul(periodicRate).MulInt(elapsed).DivInt(int64(interval))
}

// CalculateFullPaymentInterest is the interest owed for paying the loan off
// early: interest accrued so far plus the close interest penalty on the
// remaining principal.
func CalculateFullPaymentInterest(
	rawPrincipal, periodicRate number.Number,
	now, interval, prevPaymentDate, startDate uint32,
	closeRate TenthBips,
) number.Number {
	accrued := AccruedInterest(rawPrincipal, periodicRate, now, startDate, prevPaymentDate, interval)
	penalty := TenthBipsOfValue(rawPrincipal, closeRate)
	return accrued.Add(penalty)
}
