package loan

import (
	"errors"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/lending"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
)

// LoanPay makes a payment on a loan. By default it settles as many
// scheduled payments as Amount covers. With TfLoanFullPayment it pays the
// loan off early; with TfLoanOverpayment any remainder re-amortizes the
// loan.
// Reference: rippled LoanPay.cpp
type LoanPay struct {
	tx.BaseTx

	LoanID [32]byte
	Amount tx.Amount
}

// NewLoanPay creates a LoanPay of amount against loanID.
func NewLoanPay(account [20]byte, loanID [32]byte, amount tx.Amount) *LoanPay {
	return &LoanPay{
		BaseTx: *tx.NewBaseTx(account),
		LoanID: loanID,
		Amount: amount,
	}
}

func (p *LoanPay) TxType() tx.Type {
	return tx.TypeLoanPay
}

// TargetLoan is the loan being paid.
func (p *LoanPay) TargetLoan() [32]byte { return p.LoanID }

// Preflight validates the payment on its own.
// Reference: rippled LoanPay.cpp preflight()
func (p *LoanPay) Preflight(cfg tx.Config) tx.Result {
	if r := p.PreflightCommon(TfLoanOverpayment | TfLoanFullPayment); r != tx.TesSUCCESS {
		return r
	}
	if p.LoanID == [32]byte{} {
		return tx.TemINVALID
	}
	if p.Amount.Value.Sign() <= 0 || !asset.InRange(p.Amount.Asset, p.Amount.Value) {
		return tx.TemBAD_AMOUNT
	}
	if p.HasFlag(TfLoanOverpayment) && p.HasFlag(TfLoanFullPayment) {
		return tx.TemINVALID_FLAG
	}
	return tx.TesSUCCESS
}

// CalculateBaseFee charges one base fee for every PaymentsPerFeeIncrement
// payments the amount is estimated to settle. Anything that makes the
// estimate meaningless falls back to the normal cost; preclaim rejects
// those transactions anyway.
// Reference: rippled LoanPay.cpp calculateBaseFee()
func (p *LoanPay) CalculateBaseFee(view tx.ApplyView, cfg tx.Config) int64 {
	normal := cfg.BaseFee
	if p.HasFlag(TfLoanFullPayment) {
		return normal
	}

	r, err := readLoanRecords(view, p.LoanID)
	if err != nil {
		return normal
	}
	l := r.loan
	perIncrement := uint32(max(cfg.PaymentsPerFeeIncrement, 1))
	if l.PaymentRemaining <= perIncrement {
		return normal
	}
	if l.NextPaymentDueDate == nil || view.ParentCloseTime() >= *l.NextPaymentDueDate {
		return normal
	}
	a := r.asset()
	if !p.Amount.Asset.Equal(a) {
		return normal
	}

	regular := asset.RoundToAsset(a, l.PeriodicPayment, int(l.LoanScale), number.Upward).
		Add(l.LoanServiceFee)
	if regular.Sign() <= 0 {
		return normal
	}

	mode := number.Downward
	if p.HasFlag(TfLoanOverpayment) {
		mode = number.Upward
	}
	estimate := mode.Div(p.Amount.Value, regular).Int64(mode)
	increments := max(number.Upward.Div(number.FromInt(estimate), number.FromInt(int64(perIncrement))).
		Int64(number.Upward), 1)
	return increments * normal
}

// Preclaim checks the borrower can make the payment.
// Reference: rippled LoanPay.cpp preclaim()
func (p *LoanPay) Preclaim(ctx *tx.ApplyContext) tx.Result {
	l, err := tx.ReadLoan(ctx.View, keylet.LoanByID(p.LoanID))
	if err != nil {
		if errors.Is(err, tx.ErrEntryNotFound) {
			ctx.Logger.Warn("loan does not exist")
			return tx.TecNO_ENTRY
		}
		ctx.Logger.Error("failed to read loan", "error", err)
		return tx.TefINTERNAL
	}
	if l.Borrower != p.Common.Account {
		ctx.Logger.Warn("loan does not belong to the account")
		return tx.TecNO_PERMISSION
	}
	if p.HasFlag(TfLoanOverpayment) && !l.IsFlag(entry.LsfLoanOverpayment) {
		ctx.Logger.Warn("requested overpayment on a loan that doesn't allow it")
		return tx.TemINVALID_FLAG
	}
	if l.IsPaidOff() {
		ctx.Logger.Warn("loan is already paid off")
		return tx.TecKILLED
	}

	r, err := readBrokerAndVault(ctx.View, l.LoanBrokerID)
	if err != nil {
		ctx.Logger.Error("loan broker or vault does not exist", "error", err, "severity", "fatal")
		return tx.TefBAD_LEDGER
	}
	a := r.asset()
	if !p.Amount.Asset.Equal(a) {
		ctx.Logger.Warn("loan amount does not match the vault asset",
			"amount", p.Amount.Asset.String(), "vault", a.String())
		return tx.TecWRONG_ASSET
	}

	if res := checkFrozen(ctx.View, p.Common.Account, a); res != tx.TesSUCCESS {
		ctx.Logger.Warn("borrower account is frozen")
		return res
	}
	if res := checkDeepFrozen(ctx.View, r.vault.Account, a); res != tx.TesSUCCESS {
		ctx.Logger.Warn("vault pseudo-account is frozen")
		return res
	}

	held, limited, err := tx.AccountHolds(ctx.View, p.Common.Account, a)
	if err != nil {
		return tx.TefINTERNAL
	}
	if limited && held.Lt(p.Amount.Value) {
		ctx.Logger.Warn("borrower does not have enough funds",
			"balance", held.String(), "amount", p.Amount.Value.String())
		return tx.TecINSUFFICIENT_FUNDS
	}
	return tx.TesSUCCESS
}

// DoApply settles the payment and distributes it: principal and interest
// to the vault, fees to the broker.
// Reference: rippled LoanPay.cpp doApply()
func (p *LoanPay) DoApply(ctx *tx.ApplyContext) tx.Result {
	r, err := readLoanRecords(ctx.View, p.LoanID)
	if err != nil {
		ctx.Logger.Error("failed to read loan records", "error", err, "severity", "fatal")
		return tx.TefBAD_LEDGER
	}
	l, b, v := r.loan, r.broker, r.vault
	a := r.asset()
	loanScale := int(l.LoanScale)
	now := ctx.Now()

	// Fees go to the owner only while the broker holds its minimum cover.
	coverMinimum := asset.RoundToAsset(a,
		lending.TenthBipsOfValue(b.DebtTotal, lending.TenthBips(b.CoverRateMinimum)),
		loanScale, number.ToNearest)
	sendBrokerFeeToOwner := b.CoverAvailable.Gte(coverMinimum)
	if sendBrokerFeeToOwner {
		frozen, err := tx.IsDeepFrozen(ctx.View, b.Owner, a)
		if err != nil {
			return tx.TefINTERNAL
		}
		sendBrokerFeeToOwner = !frozen
	}
	payee := b.Owner
	if !sendBrokerFeeToOwner {
		payee = b.Account
		if res := checkDeepFrozen(ctx.View, payee, a); res != tx.TesSUCCESS {
			ctx.Logger.Warn("loan broker pseudo-account is frozen")
			return res
		}
	}

	if l.IsFlag(entry.LsfLoanImpaired) {
		unimpairLoan(now, l, v)
	}

	engine := lending.NewEngine(ctx.Config.MaxPaymentsPerTransaction, ctx.Logger)
	var (
		s   lending.Settlement
		res tx.Result
	)
	if p.HasFlag(TfLoanFullPayment) {
		s, res = engine.MakeFullPayment(a, now, l, b, p.Amount.Value)
	} else {
		s, res = engine.MakePayment(a, now, l, b, p.Amount.Value, p.HasFlag(TfLoanOverpayment))
	}
	if res != tx.TesSUCCESS {
		return res
	}

	if s.PrincipalPaid.Sign() < 0 || s.InterestPaid.Sign() < 0 || s.FeePaid.Sign() < 0 {
		ctx.Logger.Error("loan payment computed a negative part",
			"principal", s.PrincipalPaid.String(), "interest", s.InterestPaid.String(),
			"fee", s.FeePaid.String(), "severity", "fatal")
		return tx.TecLIMIT_EXCEEDED
	}

	// The vault's pool is denominated at its own scale, which may be
	// coarser than the loan's.
	vaultScale := v.AssetsAvailable.Exponent()
	if v.AssetsAvailable.IsZero() {
		vaultScale = loanScale
	}
	toVault := asset.RoundToAsset(a, s.PrincipalPaid.Add(s.InterestPaid), vaultScale, number.Downward)
	fee := s.FeePaid

	b.DebtTotal = clampedSub(b.DebtTotal, s.PrincipalPaid.Add(s.InterestPaid).Sub(s.ValueChange))
	v.AssetsAvailable = v.AssetsAvailable.Add(toVault)
	v.AssetsTotal = v.AssetsTotal.Add(s.ValueChange)
	if !sendBrokerFeeToOwner {
		b.CoverAvailable = b.CoverAvailable.Add(fee)
	}

	if err := r.write(ctx.View); err != nil {
		ctx.Logger.Error("failed to update loan records", "error", err)
		return tx.TefINTERNAL
	}

	err = tx.AccountSendMulti(ctx.View, p.Common.Account, a, []tx.Transfer{
		{To: v.Account, Amount: toVault},
		{To: payee, Amount: fee},
	})
	if err != nil {
		if errors.Is(err, tx.ErrInsufficientFunds) {
			return tx.TecINSUFFICIENT_FUNDS
		}
		ctx.Logger.Error("failed to send loan payment", "error", err)
		return tx.TefINTERNAL
	}

	e := loanEvent(tx.TypeLoanPay, p.LoanID, "pay")
	e.Path = string(s.Path)
	e.Payments = s.Payments
	e.PrincipalPaid = s.PrincipalPaid
	e.InterestPaid = s.InterestPaid
	e.FeePaid = s.FeePaid
	e.ValueChange = s.ValueChange
	ctx.Record(e)
	return tx.TesSUCCESS
}
