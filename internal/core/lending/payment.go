package lending

import (
	"io"
	"log/slog"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
)

// DefaultMaxPaymentsPerTransaction caps how many scheduled payments a single
// payment settles.
const DefaultMaxPaymentsPerTransaction = 100

// PaymentParts is how much of a payment went where.
//
// ValueChange is the change in the loan's total value beyond the tracked
// schedule: penalty interest and the effect of re-amortization. It is zero
// for on-time scheduled payments.
type PaymentParts struct {
	PrincipalPaid number.Number
	InterestPaid  number.Number
	ValueChange   number.Number
	FeePaid       number.Number
}

func (p *PaymentParts) add(o PaymentParts) {
	p.PrincipalPaid = p.PrincipalPaid.Add(o.PrincipalPaid)
	p.InterestPaid = p.InterestPaid.Add(o.InterestPaid)
	p.ValueChange = p.ValueChange.Add(o.ValueChange)
	p.FeePaid = p.FeePaid.Add(o.FeePaid)
}

// Path names the branch a payment was settled through.
type Path string

const (
	PathRegular Path = "regular"
	PathLate    Path = "late"
	PathFull    Path = "full"
)

// Settlement is the outcome of a successful payment.
type Settlement struct {
	PaymentParts

	Path Path
	// Payments is the number of scheduled payments consumed.
	Payments int
	// Overpaid is set when an overpayment re-amortized the loan.
	Overpaid bool
}

// Engine settles loan payments. It mutates the loan in place and touches
// nothing else; moving funds and updating the broker and vault is the
// caller's job.
type Engine struct {
	MaxPaymentsPerTransaction int
	Logger                    *slog.Logger
}

// NewEngine returns an engine. A nil logger discards and a non-positive
// maxPayments selects DefaultMaxPaymentsPerTransaction.
func NewEngine(maxPayments int, logger *slog.Logger) *Engine {
	if maxPayments <= 0 {
		maxPayments = DefaultMaxPaymentsPerTransaction
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{MaxPaymentsPerTransaction: maxPayments, Logger: logger}
}

// loanTerms is what every payment path reads from the loan and broker.
type loanTerms struct {
	scale        int
	interval     uint32
	periodicRate number.Number
	feeRate      TenthBips
}

func termsOf(l *entries.Loan, b *entries.LoanBroker) loanTerms {
	return loanTerms{
		scale:        int(l.LoanScale),
		interval:     l.PaymentInterval,
		periodicRate: PeriodicRate(TenthBips(l.InterestRate), l.PaymentInterval),
		feeRate:      TenthBips(b.ManagementFeeRate),
	}
}

func (e *Engine) checkPayable(l *entries.Loan) tx.Result {
	if l.PaymentRemaining == 0 || l.PrincipalOutstanding.IsZero() {
		e.Logger.Warn("loan is already paid off")
		return tx.TecKILLED
	}
	if l.NextPaymentDueDate == nil {
		e.Logger.Error("loan next payment due date is not set", "severity", "fatal")
		return tx.TecINTERNAL
	}
	return tx.TesSUCCESS
}

func (e *Engine) nextComponents(a asset.Asset, l *entries.Loan, t loanTerms) PaymentComponents {
	return ComputePaymentComponents(a, t.scale,
		l.TotalValueOutstanding, l.PrincipalOutstanding, l.ManagementFeeOutstanding,
		l.PeriodicPayment, t.periodicRate, l.PaymentRemaining, t.feeRate)
}

// MakePayment applies amount to the loan at time now. A late loan settles
// exactly one late payment. Otherwise as many whole scheduled payments as
// amount covers are settled, and when overpaymentAllowed and the loan
// permits it, the remainder re-amortizes the loan.
//
// On any result other than tesSUCCESS the loan is unchanged.
func (e *Engine) MakePayment(
	a asset.Asset, now uint32,
	l *entries.Loan, b *entries.LoanBroker,
	amount number.Number, overpaymentAllowed bool,
) (Settlement, tx.Result) {
	if res := e.checkPayable(l); res != tx.TesSUCCESS {
		return Settlement{}, res
	}
	t := termsOf(l, b)

	periodic := withUntracked(e.nextComponents(a, l, t), l.LoanServiceFee, number.Zero())

	late, handled, res := e.computeLatePayment(a, now, l, t, periodic, amount)
	if res != tx.TesSUCCESS {
		return Settlement{}, res
	}
	if handled {
		parts := doPayment(late, l, t.interval)
		return Settlement{PaymentParts: parts, Path: PathLate, Payments: 1}, tx.TesSUCCESS
	}

	totalPaid := periodic.TotalDue()
	if amount.Lt(totalPaid) {
		e.Logger.Warn("periodic loan payment amount is insufficient",
			"due", totalPaid.String(), "paid", amount.String())
		return Settlement{}, tx.TecINSUFFICIENT_PAYMENT
	}

	s := Settlement{Path: PathRegular}
	s.PaymentParts = doPayment(periodic, l, t.interval)
	s.Payments = 1

	for totalPaid.Lt(amount) && l.PaymentRemaining > 0 && s.Payments < e.MaxPaymentsPerTransaction {
		next := withUntracked(e.nextComponents(a, l, t), l.LoanServiceFee, number.Zero())
		if amount.Lt(totalPaid.Add(next.TotalDue())) {
			break
		}
		totalPaid = totalPaid.Add(next.TotalDue())
		s.add(doPayment(next, l, t.interval))
		s.Payments++
	}

	if overpaymentAllowed && l.IsFlag(entry.LsfLoanOverpayment) &&
		l.PaymentRemaining > 0 && l.NextPaymentDueDate != nil &&
		totalPaid.Lt(amount) && s.Payments < e.MaxPaymentsPerTransaction {
		over := number.Min(amount.Sub(totalPaid), l.TotalValueOutstanding)
		oc := computeOverpaymentComponents(a, t.scale, over,
			TenthBips(l.OverpaymentInterestRate), TenthBips(l.OverpaymentFee), t.feeRate)

		// Skip overpayments eaten entirely by fees and interest.
		if oc.RawPrincipal.Sign() > 0 && oc.TrackedPrincipalDelta.Sign() > 0 {
			parts, ok := e.doOverpayment(a, l, t, oc)
			if ok {
				s.add(parts)
				s.Overpaid = true
			}
		}
	}

	return s, tx.TesSUCCESS
}

// MakeFullPayment pays the loan off early. The borrower owes the tracked
// principal, the interest accrued since the last payment and the close
// interest penalty, plus the close payment fee.
func (e *Engine) MakeFullPayment(
	a asset.Asset, now uint32,
	l *entries.Loan, b *entries.LoanBroker,
	amount number.Number,
) (Settlement, tx.Result) {
	if res := e.checkPayable(l); res != tx.TesSUCCESS {
		return Settlement{}, res
	}
	t := termsOf(l, b)
	closeFee := asset.RoundToAsset(a, l.ClosePaymentFee, t.scale, number.ToNearest)

	rounded := LoanRoundedState(l)
	full, res := e.computeFullPayment(a, now, l, t, rounded.InterestDue, closeFee, amount)
	if res != tx.TesSUCCESS {
		return Settlement{}, res
	}
	parts := doPayment(full, l, t.interval)
	return Settlement{PaymentParts: parts, Path: PathFull, Payments: 1}, tx.TesSUCCESS
}

// PaymentDue is what the next payment would cost at time now, on the late
// path if the loan is overdue.
func (e *Engine) PaymentDue(a asset.Asset, now uint32, l *entries.Loan, b *entries.LoanBroker) (number.Number, tx.Result) {
	if res := e.checkPayable(l); res != tx.TesSUCCESS {
		return number.Zero(), res
	}
	t := termsOf(l, b)
	periodic := withUntracked(e.nextComponents(a, l, t), l.LoanServiceFee, number.Zero())
	if hasExpired(now, *l.NextPaymentDueDate) {
		return lateComponents(a, now, l, t, periodic).TotalDue(), tx.TesSUCCESS
	}
	return periodic.TotalDue(), tx.TesSUCCESS
}

// FullPaymentDue is what paying the loan off at time now would cost.
func (e *Engine) FullPaymentDue(a asset.Asset, now uint32, l *entries.Loan, b *entries.LoanBroker) (number.Number, tx.Result) {
	if res := e.checkPayable(l); res != tx.TesSUCCESS {
		return number.Zero(), res
	}
	if l.PaymentRemaining <= 1 {
		return number.Zero(), tx.TecKILLED
	}
	t := termsOf(l, b)
	closeFee := asset.RoundToAsset(a, l.ClosePaymentFee, t.scale, number.ToNearest)
	return fullComponents(a, now, l, t, LoanRoundedState(l).InterestDue, closeFee).TotalDue(), tx.TesSUCCESS
}

func hasExpired(now, deadline uint32) bool {
	return now >= deadline
}

// doPayment removes c from the loan's tracked balances and advances the
// schedule.
func doPayment(c PaymentComponentsPlus, l *entries.Loan, interval uint32) PaymentParts {
	switch c.Kind {
	case PaymentFinal:
		l.PaymentRemaining = 0
		l.PreviousPaymentDate = *l.NextPaymentDueDate
		l.NextPaymentDueDate = nil
		l.PrincipalOutstanding = number.Zero()
		l.TotalValueOutstanding = number.Zero()
		l.ManagementFeeOutstanding = number.Zero()
	default:
		if c.Kind != PaymentExtra {
			l.PaymentRemaining--
			l.PreviousPaymentDate = *l.NextPaymentDueDate
			next := *l.NextPaymentDueDate + interval
			l.NextPaymentDueDate = &next
		}
		l.PrincipalOutstanding = l.PrincipalOutstanding.Sub(c.TrackedPrincipalDelta)
		l.TotalValueOutstanding = l.TotalValueOutstanding.Sub(c.TrackedValueDelta)
		l.ManagementFeeOutstanding = l.ManagementFeeOutstanding.Sub(c.TrackedFeeDelta)
	}

	return PaymentParts{
		PrincipalPaid: c.TrackedPrincipalDelta,
		InterestPaid:  c.TrackedInterestPart().Add(c.UntrackedInterest),
		ValueChange:   c.UntrackedInterest,
		FeePaid:       c.TrackedFeeDelta.Add(c.UntrackedFee),
	}
}

func lateComponents(a asset.Asset, now uint32, l *entries.Loan, t loanTerms, periodic PaymentComponentsPlus) PaymentComponentsPlus {
	lateInterest := LatePaymentInterest(l.PrincipalOutstanding,
		TenthBips(l.LateInterestRate), now, *l.NextPaymentDueDate)

	rawLate, _ := interestAndFeeParts(lateInterest, t.feeRate)
	roundedLate, roundedLateFee := roundedInterestAndFeeParts(a,
		asset.RoundToAsset(a, lateInterest, t.scale, number.ToNearest), t.feeRate, t.scale)

	inner := periodic.PaymentComponents
	inner.RawInterest = inner.RawInterest.Add(rawLate)
	return withUntracked(inner,
		periodic.UntrackedFee.Add(l.LatePaymentFee).Add(roundedLateFee),
		periodic.UntrackedInterest.Add(roundedLate))
}

// computeLatePayment reports handled=false when the loan is not yet due.
func (e *Engine) computeLatePayment(
	a asset.Asset, now uint32, l *entries.Loan, t loanTerms,
	periodic PaymentComponentsPlus, amount number.Number,
) (PaymentComponentsPlus, bool, tx.Result) {
	if !hasExpired(now, *l.NextPaymentDueDate) {
		return PaymentComponentsPlus{}, false, tx.TesSUCCESS
	}

	late := lateComponents(a, now, l, t, periodic)
	if amount.Lt(late.TotalDue()) {
		e.Logger.Warn("late loan payment amount is insufficient",
			"due", late.TotalDue().String(), "paid", amount.String())
		return PaymentComponentsPlus{}, false, tx.TecINSUFFICIENT_PAYMENT
	}
	return late, true, tx.TesSUCCESS
}

func fullComponents(
	a asset.Asset, now uint32, l *entries.Loan, t loanTerms,
	interestDue, closeFee number.Number,
) PaymentComponentsPlus {
	rawPrincipal := PrincipalFromPeriodicPayment(l.PeriodicPayment, t.periodicRate, l.PaymentRemaining)
	fullInterest := CalculateFullPaymentInterest(rawPrincipal, t.periodicRate,
		now, t.interval, l.PreviousPaymentDate, l.StartDate, TenthBips(l.CloseInterestRate))

	rawInterest, rawFee := interestAndFeeParts(fullInterest, t.feeRate)
	roundedInterest, roundedFee := roundedInterestAndFeeParts(a,
		asset.RoundToAsset(a, fullInterest, t.scale, number.ToNearest), t.feeRate, t.scale)

	c := PaymentComponents{
		RawInterest:           rawInterest,
		RawPrincipal:          rawPrincipal,
		RawFee:                rawFee,
		TrackedValueDelta:     l.PrincipalOutstanding.Add(interestDue).Add(l.ManagementFeeOutstanding),
		TrackedPrincipalDelta: l.PrincipalOutstanding,
		TrackedFeeDelta:       l.ManagementFeeOutstanding,
		Kind:                  PaymentFinal,
	}
	return withUntracked(c,
		closeFee.Add(roundedFee).Sub(l.ManagementFeeOutstanding),
		roundedInterest.Sub(interestDue))
}

func (e *Engine) computeFullPayment(
	a asset.Asset, now uint32, l *entries.Loan, t loanTerms,
	interestDue, closeFee, amount number.Number,
) (PaymentComponentsPlus, tx.Result) {
	if l.PaymentRemaining <= 1 {
		e.Logger.Warn("full payment with one payment remaining, make a regular payment instead")
		return PaymentComponentsPlus{}, tx.TecKILLED
	}

	full := fullComponents(a, now, l, t, interestDue, closeFee)
	if amount.Lt(full.TotalDue()) {
		e.Logger.Warn("full loan payment amount is insufficient",
			"due", full.TotalDue().String(), "paid", amount.String())
		return PaymentComponentsPlus{}, tx.TecINSUFFICIENT_PAYMENT
	}
	return full, tx.TesSUCCESS
}
