package loan

import (
	"errors"
	"math"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/lending"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
)

// LoanSet originates a loan from a broker's vault to a borrower. It is
// submitted by one party with the other as Counterparty; either the
// account or the counterparty must own the broker.
// Reference: rippled LoanSet.cpp
type LoanSet struct {
	tx.BaseTx

	LoanBrokerID [32]byte
	// Counterparty defaults to the broker owner, making Account the borrower.
	Counterparty *[20]byte

	PrincipalRequested number.Number

	LoanOriginationFee *number.Number
	LoanServiceFee     *number.Number
	LatePaymentFee     *number.Number
	ClosePaymentFee    *number.Number

	InterestRate            *uint32
	LateInterestRate        *uint32
	CloseInterestRate       *uint32
	OverpaymentInterestRate *uint32
	OverpaymentFee          *uint32

	PaymentTotal    *uint32
	PaymentInterval *uint32
	GracePeriod     *uint32
}

// NewLoanSet creates a LoanSet for principal against brokerID.
func NewLoanSet(account [20]byte, brokerID [32]byte, principal number.Number) *LoanSet {
	return &LoanSet{
		BaseTx:             *tx.NewBaseTx(account),
		LoanBrokerID:       brokerID,
		PrincipalRequested: principal,
	}
}

func (s *LoanSet) TxType() tx.Type {
	return tx.TypeLoanSet
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func (s *LoanSet) interval(cfg tx.Config) uint32 {
	return valueOr(s.PaymentInterval, cfg.DefaultPaymentInterval)
}

func (s *LoanSet) total(cfg tx.Config) uint32 {
	return valueOr(s.PaymentTotal, cfg.DefaultPaymentTotal)
}

// valueFields are the amounts that must fit the vault asset and the loan
// scale.
func (s *LoanSet) valueFields() []*number.Number {
	return []*number.Number{
		&s.PrincipalRequested,
		s.LoanOriginationFee,
		s.LoanServiceFee,
		s.LatePaymentFee,
		s.ClosePaymentFee,
	}
}

// Preflight validates the terms on their own.
// Reference: rippled LoanSet.cpp preflight()
func (s *LoanSet) Preflight(cfg tx.Config) tx.Result {
	if r := s.PreflightCommon(TfLoanOverpayment); r != tx.TesSUCCESS {
		return r
	}
	if s.LoanBrokerID == [32]byte{} {
		return tx.TemINVALID
	}

	for _, fee := range []*number.Number{s.LoanServiceFee, s.LatePaymentFee, s.ClosePaymentFee} {
		if fee != nil && !nonNegative(*fee) {
			return tx.TemINVALID
		}
	}

	if s.PrincipalRequested.Sign() <= 0 {
		return tx.TemINVALID
	}
	if fee := s.LoanOriginationFee; fee != nil && (fee.Sign() < 0 || fee.Gt(s.PrincipalRequested)) {
		return tx.TemINVALID
	}

	rates := []struct {
		rate  *uint32
		limit lending.TenthBips
	}{
		{s.InterestRate, MaxInterestRate},
		{s.OverpaymentFee, MaxOverpaymentFee},
		{s.LateInterestRate, MaxLateInterestRate},
		{s.CloseInterestRate, MaxCloseInterestRate},
		{s.OverpaymentInterestRate, MaxOverpaymentInterestRate},
	}
	for _, r := range rates {
		if r.rate != nil && !validRate(*r.rate, r.limit) {
			return tx.TemINVALID
		}
	}

	if s.PaymentTotal != nil && *s.PaymentTotal == 0 {
		return tx.TemINVALID
	}
	if s.PaymentInterval != nil && *s.PaymentInterval < cfg.MinPaymentInterval {
		return tx.TemINVALID
	}
	if s.GracePeriod != nil && *s.GracePeriod > s.interval(cfg) {
		return tx.TemINVALID
	}
	return tx.TesSUCCESS
}

// parties resolves the broker owner and the borrower.
func (s *LoanSet) parties(broker *entries.LoanBroker) (borrower [20]byte, ok bool) {
	counterparty := broker.Owner
	if s.Counterparty != nil {
		counterparty = *s.Counterparty
	}
	if s.Common.Account != broker.Owner && counterparty != broker.Owner {
		return [20]byte{}, false
	}
	if counterparty == broker.Owner {
		return s.Common.Account, true
	}
	return counterparty, true
}

// Preclaim checks the schedule fits the clock and the parties can transact
// in the vault asset.
// Reference: rippled LoanSet.cpp preclaim()
func (s *LoanSet) Preclaim(ctx *tx.ApplyContext) tx.Result {
	timeAvailable := math.MaxUint32 - ctx.Now()
	interval, total := s.interval(ctx.Config), s.total(ctx.Config)
	if interval > timeAvailable || total > timeAvailable || timeAvailable/interval < total {
		ctx.Logger.Warn("loan schedule would overflow the clock",
			"interval", interval, "total", total)
		return tx.TecKILLED
	}

	r, err := readBrokerAndVault(ctx.View, s.LoanBrokerID)
	if err != nil {
		if errors.Is(err, tx.ErrEntryNotFound) {
			if exists, _ := ctx.View.Exists(keylet.LoanBrokerByID(s.LoanBrokerID)); !exists {
				ctx.Logger.Warn("loan broker does not exist")
				return tx.TecNO_ENTRY
			}
		}
		ctx.Logger.Error("failed to read loan broker or vault", "error", err, "severity", "fatal")
		return tx.TefBAD_LEDGER
	}

	borrower, ok := s.parties(r.broker)
	if !ok {
		ctx.Logger.Warn("neither account nor counterparty owns the loan broker")
		return tx.TecNO_PERMISSION
	}
	if _, err := tx.ReadAccount(ctx.View, borrower); err != nil {
		ctx.Logger.Warn("borrower does not exist")
		return tx.TerNO_ACCOUNT
	}

	a := r.asset()
	for _, v := range s.valueFields() {
		if v != nil && !tx.NewAmount(a, *v).Representable() {
			ctx.Logger.Warn("amount can not be represented in the vault asset",
				"value", v.String(), "asset", a.String())
			return tx.TecPRECISION_LOSS
		}
	}

	if res := checkFrozen(ctx.View, r.vault.Account, a); res != tx.TesSUCCESS {
		ctx.Logger.Warn("vault pseudo-account is frozen")
		return res
	}
	if res := checkFrozen(ctx.View, borrower, a); res != tx.TesSUCCESS {
		ctx.Logger.Warn("borrower account is frozen")
		return res
	}
	if res := checkDeepFrozen(ctx.View, r.broker.Owner, a); res != tx.TesSUCCESS {
		ctx.Logger.Warn("broker owner account is frozen")
		return res
	}
	return tx.TesSUCCESS
}

// DoApply computes the schedule, funds the borrower from the vault and
// creates the loan.
// Reference: rippled LoanSet.cpp doApply()
func (s *LoanSet) DoApply(ctx *tx.ApplyContext) tx.Result {
	r, err := readBrokerAndVault(ctx.View, s.LoanBrokerID)
	if err != nil {
		ctx.Logger.Error("failed to read loan broker", "error", err, "severity", "fatal")
		return tx.TefBAD_LEDGER
	}
	borrower, _ := s.parties(r.broker)
	a := r.asset()
	principal := s.PrincipalRequested

	if r.vault.AssetsAvailable.Lt(principal) {
		ctx.Logger.Warn("insufficient assets available in the vault to fund the loan",
			"available", r.vault.AssetsAvailable.String(), "principal", principal.String())
		return tx.TecINSUFFICIENT_FUNDS
	}

	rate := lending.TenthBips(valueOr(s.InterestRate, 0))
	interval, total := s.interval(ctx.Config), s.total(ctx.Config)
	feeRate := lending.TenthBips(r.broker.ManagementFeeRate)

	props := lending.ComputeLoanProperties(a, principal, rate, interval, total, feeRate)

	for _, v := range s.valueFields() {
		if v != nil && !asset.IsRounded(a, *v, props.LoanScale) {
			ctx.Logger.Warn("amount has too much precision for the loan",
				"value", v.String(), "total_value", props.TotalValueOutstanding.String(),
				"scale", props.LoanScale)
			return tx.TecPRECISION_LOSS
		}
	}

	if res := checkLoanProperties(ctx, a, principal, rate, total, props); res != tx.TesSUCCESS {
		return res
	}

	state := lending.RoundedLoanState(props.TotalValueOutstanding, principal, props.ManagementFeeOwed)
	originationFee := valueOr(s.LoanOriginationFee, number.Zero())

	debtDelta := principal.Add(state.InterestDue)
	newDebt := r.broker.DebtTotal.Add(debtDelta)
	if !r.broker.DebtMaximum.IsZero() && r.broker.DebtMaximum.Lt(newDebt) {
		ctx.Logger.Warn("loan would exceed the maximum debt of the loan broker")
		return tx.TecLIMIT_EXCEEDED
	}
	coverMinimum := lending.TenthBipsOfValue(newDebt, lending.TenthBips(r.broker.CoverRateMinimum))
	if r.broker.CoverAvailable.Lt(coverMinimum) {
		ctx.Logger.Warn("insufficient first-loss capital to cover the loan")
		return tx.TecINSUFFICIENT_FUNDS
	}

	borrowerRoot, err := tx.ReadAccount(ctx.View, borrower)
	if err != nil {
		return tx.TefBAD_LEDGER
	}
	borrowerRoot.OwnerCount++
	if err := ctx.View.Update(keylet.Account(borrower), borrowerRoot); err != nil {
		return tx.TefINTERNAL
	}

	err = tx.AccountSendMulti(ctx.View, r.vault.Account, a, []tx.Transfer{
		{To: borrower, Amount: principal.Sub(originationFee)},
		{To: r.broker.Owner, Amount: originationFee},
	})
	if err != nil {
		if errors.Is(err, tx.ErrInsufficientFunds) {
			return tx.TecINSUFFICIENT_FUNDS
		}
		ctx.Logger.Error("failed to fund loan", "error", err)
		return tx.TefINTERNAL
	}

	start := ctx.Now()
	due := start + interval
	loanKey := keylet.Loan(r.brokerKey.Key, r.broker.LoanSequence)
	l := &entries.Loan{
		LoanSequence:             r.broker.LoanSequence,
		LoanBrokerID:             r.brokerKey.Key,
		Borrower:                 borrower,
		StartDate:                start,
		PaymentInterval:          interval,
		GracePeriod:              valueOr(s.GracePeriod, ctx.Config.DefaultGracePeriod),
		NextPaymentDueDate:       &due,
		PaymentRemaining:         total,
		LoanScale:                int32(props.LoanScale),
		PrincipalOutstanding:     principal,
		TotalValueOutstanding:    props.TotalValueOutstanding,
		ManagementFeeOutstanding: props.ManagementFeeOwed,
		PeriodicPayment:          props.PeriodicPayment,
		LoanOriginationFee:       originationFee,
		LoanServiceFee:           valueOr(s.LoanServiceFee, number.Zero()),
		LatePaymentFee:           valueOr(s.LatePaymentFee, number.Zero()),
		ClosePaymentFee:          valueOr(s.ClosePaymentFee, number.Zero()),
		InterestRate:             uint32(rate),
		LateInterestRate:         valueOr(s.LateInterestRate, 0),
		CloseInterestRate:        valueOr(s.CloseInterestRate, 0),
		OverpaymentInterestRate:  valueOr(s.OverpaymentInterestRate, 0),
		OverpaymentFee:           valueOr(s.OverpaymentFee, 0),
	}
	if s.HasFlag(TfLoanOverpayment) {
		l.SetFlag(entry.LsfLoanOverpayment)
	}
	if err := ctx.View.Insert(loanKey, l); err != nil {
		ctx.Logger.Error("failed to insert loan", "error", err)
		return tx.TefINTERNAL
	}

	// Principal is now a receivable; interest due is new value.
	r.vault.AssetsAvailable = r.vault.AssetsAvailable.Sub(principal)
	r.vault.AssetsTotal = r.vault.AssetsTotal.Add(state.InterestDue)

	r.broker.DebtTotal = newDebt
	r.broker.OwnerCount++
	r.broker.LoanSequence++

	if err := r.write(ctx.View); err != nil {
		ctx.Logger.Error("failed to update loan broker or vault", "error", err)
		return tx.TefINTERNAL
	}

	e := loanEvent(tx.TypeLoanSet, loanKey.Key, "set")
	e.PrincipalPaid = principal.Neg()
	e.FeePaid = originationFee
	ctx.Record(e)
	return tx.TesSUCCESS
}

// checkLoanProperties rejects schedules that rounding makes unpayable.
func checkLoanProperties(
	ctx *tx.ApplyContext, a asset.Asset, principal number.Number,
	rate lending.TenthBips, total uint32, props lending.LoanProperties,
) tx.Result {
	if !asset.InRange(a, props.TotalValueOutstanding) {
		ctx.Logger.Warn("loan total value is out of range", "total", props.TotalValueOutstanding.String())
		return tx.TecPRECISION_LOSS
	}

	interest := props.TotalValueOutstanding.Sub(principal)
	if rate > 0 && interest.Sign() <= 0 {
		ctx.Logger.Warn("loan has no interest due", "principal", principal.String(), "rate", rate)
		return tx.TecPRECISION_LOSS
	}
	if rate == 0 && interest.Sign() > 0 {
		ctx.Logger.Warn("zero interest loan has interest due", "principal", principal.String())
		return tx.TecINTERNAL
	}
	if props.FirstPaymentPrincipal.Sign() <= 0 {
		ctx.Logger.Warn("loan is unable to pay principal")
		return tx.TecPRECISION_LOSS
	}

	rounded := lending.RoundPeriodicPayment(a, props.PeriodicPayment, props.LoanScale)
	if rounded.IsZero() {
		ctx.Logger.Warn("loan periodic payment rounds to zero", "payment", props.PeriodicPayment.String())
		return tx.TecPRECISION_LOSS
	}
	computed := number.Upward.Div(props.TotalValueOutstanding, rounded).Int64(number.Upward)
	if computed < int64(total) {
		ctx.Logger.Warn("rounded periodic payment completes the loan early",
			"payment", rounded.String(), "computed_payments", computed, "payments", total)
		return tx.TecPRECISION_LOSS
	}

	if props.ManagementFeeOwed.Sign() < 0 || props.TotalValueOutstanding.Sign() <= 0 ||
		props.PeriodicPayment.Sign() <= 0 {
		ctx.Logger.Error("computed loan properties are invalid", "severity", "fatal")
		return tx.TecINTERNAL
	}
	return tx.TesSUCCESS
}
