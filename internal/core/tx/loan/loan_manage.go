package loan

import (
	"math/bits"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/lending"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
)

// LoanManage lets the broker owner impair, unimpair or default a loan.
// Exactly one of the flags may be set; with none the transaction is a
// no-op that only validates ownership.
// Reference: rippled LoanManage.cpp
type LoanManage struct {
	tx.BaseTx

	LoanID [32]byte
}

// NewLoanManage creates a LoanManage for loanID with the given action flag.
func NewLoanManage(account [20]byte, loanID [32]byte, flag uint32) *LoanManage {
	m := &LoanManage{BaseTx: *tx.NewBaseTx(account), LoanID: loanID}
	m.Common.Flags = flag
	return m
}

func (m *LoanManage) TxType() tx.Type {
	return tx.TypeLoanManage
}

func (m *LoanManage) TargetLoan() [32]byte { return m.LoanID }

const manageFlags = TfLoanDefault | TfLoanImpair | TfLoanUnimpair

func (m *LoanManage) Preflight(cfg tx.Config) tx.Result {
	if r := m.PreflightCommon(manageFlags); r != tx.TesSUCCESS {
		return r
	}
	if m.LoanID == [32]byte{} {
		return tx.TemINVALID
	}
	if bits.OnesCount32(m.Common.Flags&manageFlags) > 1 {
		return tx.TemINVALID_FLAG
	}
	return tx.TesSUCCESS
}

func (m *LoanManage) action() string {
	switch {
	case m.HasFlag(TfLoanDefault):
		return "default"
	case m.HasFlag(TfLoanImpair):
		return "impair"
	case m.HasFlag(TfLoanUnimpair):
		return "unimpair"
	}
	return "manage"
}

// Preclaim checks the loan's state allows the requested action.
// Reference: rippled LoanManage.cpp preclaim()
func (m *LoanManage) Preclaim(ctx *tx.ApplyContext) tx.Result {
	r, err := readLoanRecords(ctx.View, m.LoanID)
	if err != nil {
		if exists, _ := ctx.View.Exists(keylet.LoanByID(m.LoanID)); !exists {
			ctx.Logger.Warn("loan does not exist")
			return tx.TecNO_ENTRY
		}
		ctx.Logger.Error("loan broker or vault does not exist", "error", err, "severity", "fatal")
		return tx.TefBAD_LEDGER
	}
	l := r.loan
	if r.broker.Owner != m.Common.Account {
		ctx.Logger.Warn("loan broker does not belong to the account")
		return tx.TecNO_PERMISSION
	}
	if l.IsFlag(entry.LsfLoanDefault) {
		ctx.Logger.Warn("loan is in default and can not be modified")
		return tx.TecNO_PERMISSION
	}
	if l.IsPaidOff() {
		ctx.Logger.Warn("loan is fully paid and can not be modified")
		return tx.TecNO_PERMISSION
	}
	impaired := l.IsFlag(entry.LsfLoanImpaired)
	if m.HasFlag(TfLoanImpair) && impaired {
		ctx.Logger.Warn("loan is already impaired")
		return tx.TecNO_PERMISSION
	}
	if m.HasFlag(TfLoanUnimpair) && !impaired {
		ctx.Logger.Warn("loan is not impaired")
		return tx.TecNO_PERMISSION
	}
	if m.HasFlag(TfLoanDefault) {
		if l.NextPaymentDueDate == nil {
			return tx.TecINTERNAL
		}
		deadline := uint64(*l.NextPaymentDueDate) + uint64(l.GracePeriod)
		if uint64(ctx.Now()) < deadline {
			ctx.Logger.Warn("loan is not yet past its grace period",
				"now", ctx.Now(), "deadline", deadline)
			return tx.TecTOO_SOON
		}
	}
	return tx.TesSUCCESS
}

func (m *LoanManage) DoApply(ctx *tx.ApplyContext) tx.Result {
	r, err := readLoanRecords(ctx.View, m.LoanID)
	if err != nil {
		ctx.Logger.Error("failed to read loan records", "error", err, "severity", "fatal")
		return tx.TefBAD_LEDGER
	}
	now := ctx.Now()

	switch {
	case m.HasFlag(TfLoanDefault):
		if res := defaultLoan(ctx, r); res != tx.TesSUCCESS {
			return res
		}
	case m.HasFlag(TfLoanImpair):
		impairLoan(now, r.loan, r.vault)
	case m.HasFlag(TfLoanUnimpair):
		unimpairLoan(now, r.loan, r.vault)
	default:
		return tx.TesSUCCESS
	}

	if err := r.write(ctx.View); err != nil {
		ctx.Logger.Error("failed to update loan records", "error", err)
		return tx.TefINTERNAL
	}
	ctx.Record(loanEvent(tx.TypeLoanManage, m.LoanID, m.action()))
	return tx.TesSUCCESS
}

// impairLoan marks the loan's value as an unrealized loss to the vault and
// makes the next payment due immediately.
// Reference: rippled LoanManage.cpp impairLoan()
func impairLoan(now uint32, l *entries.Loan, v *entries.Vault) {
	v.LossUnrealized = v.LossUnrealized.Add(vaultLoss(l))
	l.SetFlag(entry.LsfLoanImpaired)
	if l.NextPaymentDueDate != nil && *l.NextPaymentDueDate > now {
		due := now
		l.NextPaymentDueDate = &due
	}
}

// unimpairLoan reverses impairLoan. The due date returns to the regular
// schedule unless that has already passed, in which case the borrower gets
// a full interval from now.
// Reference: rippled LoanManage.cpp unimpairLoan()
func unimpairLoan(now uint32, l *entries.Loan, v *entries.Vault) {
	v.LossUnrealized = clampedSub(v.LossUnrealized, vaultLoss(l))
	l.ClearFlag(entry.LsfLoanImpaired)

	if l.NextPaymentDueDate == nil {
		return
	}
	normal := max(l.PreviousPaymentDate, l.StartDate) + l.PaymentInterval
	due := normal
	if normal <= now {
		due = now + l.PaymentInterval
	}
	l.NextPaymentDueDate = &due
}

// defaultLoan writes the loan off. The broker's first-loss capital absorbs
// what it can and the vault takes the rest.
// Reference: rippled LoanManage.cpp defaultLoan()
func defaultLoan(ctx *tx.ApplyContext, r *lendingRecords) tx.Result {
	l, b, v := r.loan, r.broker, r.vault
	a := r.asset()

	totalDefault := vaultLoss(l)

	liquidation := lending.TenthBipsOfValue(
		lending.TenthBipsOfValue(b.DebtTotal, lending.TenthBips(b.CoverRateMinimum)),
		lending.TenthBips(b.CoverRateLiquidation))
	covered := number.Min(b.CoverAvailable,
		number.Min(asset.RoundToAsset(a, liquidation, int(l.LoanScale), number.ToNearest), totalDefault))

	v.AssetsTotal = v.AssetsTotal.Sub(totalDefault.Sub(covered))
	v.AssetsAvailable = v.AssetsAvailable.Add(covered)
	if l.IsFlag(entry.LsfLoanImpaired) {
		v.LossUnrealized = clampedSub(v.LossUnrealized, totalDefault)
	}
	if v.AssetsAvailable.Gt(v.AssetsTotal) {
		ctx.Logger.Error("vault available assets exceed total after default",
			"available", v.AssetsAvailable.String(), "total", v.AssetsTotal.String(),
			"severity", "fatal")
		return tx.TefBAD_LEDGER
	}

	b.DebtTotal = clampedSub(b.DebtTotal, totalDefault)
	b.CoverAvailable = b.CoverAvailable.Sub(covered)

	if err := tx.AccountSend(ctx.View, b.Account, v.Account, a, covered); err != nil {
		ctx.Logger.Error("failed to move first-loss capital to the vault", "error", err)
		return tx.TefINTERNAL
	}

	l.PrincipalOutstanding = number.Zero()
	l.TotalValueOutstanding = number.Zero()
	l.ManagementFeeOutstanding = number.Zero()
	l.PaymentRemaining = 0
	l.NextPaymentDueDate = nil
	l.SetFlag(entry.LsfLoanDefault)
	l.ClearFlag(entry.LsfLoanImpaired)
	return tx.TesSUCCESS
}
