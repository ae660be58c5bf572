// Package loan implements the lending transactions: LoanSet originates a
// loan, LoanPay settles payments against it and LoanManage impairs,
// unimpairs or defaults it.
package loan

import (
	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/lending"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
)

// Transaction flags
// Reference: rippled TxFlags.h
const (
	// LoanSet
	TfLoanOverpayment uint32 = 0x00010000

	// LoanPay (TfLoanOverpayment is shared)
	TfLoanFullPayment uint32 = 0x00020000

	// LoanManage
	TfLoanDefault  uint32 = 0x00010000
	TfLoanImpair   uint32 = 0x00020000
	TfLoanUnimpair uint32 = 0x00040000
)

// Rate limits in tenth basis points.
// Reference: rippled Protocol.h
const (
	MaxInterestRate            = lending.MaxRate
	MaxLateInterestRate        = lending.MaxRate
	MaxCloseInterestRate       = lending.MaxRate
	MaxOverpaymentInterestRate = lending.MaxRate
	MaxOverpaymentFee          = lending.MaxRate
)

// lendingRecords are the entries every loan transaction works on.
type lendingRecords struct {
	loanKey   keylet.Keylet
	loan      *entries.Loan
	brokerKey keylet.Keylet
	broker    *entries.LoanBroker
	vaultKey  keylet.Keylet
	vault     *entries.Vault
}

func (r *lendingRecords) asset() asset.Asset { return r.vault.Asset }

// readBrokerAndVault loads the broker and its vault.
func readBrokerAndVault(v tx.ApplyView, brokerID [32]byte) (*lendingRecords, error) {
	r := &lendingRecords{brokerKey: keylet.LoanBrokerByID(brokerID)}
	var err error
	if r.broker, err = tx.ReadLoanBroker(v, r.brokerKey); err != nil {
		return nil, err
	}
	r.vaultKey = keylet.VaultByID(r.broker.VaultID)
	if r.vault, err = tx.ReadVault(v, r.vaultKey); err != nil {
		return nil, err
	}
	return r, nil
}

// readLoanRecords loads a loan, its broker and the broker's vault.
func readLoanRecords(v tx.ApplyView, loanID [32]byte) (*lendingRecords, error) {
	loanKey := keylet.LoanByID(loanID)
	l, err := tx.ReadLoan(v, loanKey)
	if err != nil {
		return nil, err
	}
	r, err := readBrokerAndVault(v, l.LoanBrokerID)
	if err != nil {
		return nil, err
	}
	r.loanKey, r.loan = loanKey, l
	return r, nil
}

func (r *lendingRecords) write(v tx.ApplyView) error {
	if r.loan != nil {
		if err := v.Update(r.loanKey, r.loan); err != nil {
			return err
		}
	}
	if err := v.Update(r.brokerKey, r.broker); err != nil {
		return err
	}
	return v.Update(r.vaultKey, r.vault)
}

// checkFrozen returns tecFROZEN when account cannot send a.
func checkFrozen(v tx.ApplyView, account [20]byte, a asset.Asset) tx.Result {
	frozen, err := tx.IsFrozen(v, account, a)
	if err != nil {
		return tx.TefINTERNAL
	}
	if frozen {
		return tx.TecFROZEN
	}
	return tx.TesSUCCESS
}

// checkDeepFrozen returns tecFROZEN when account cannot receive a.
func checkDeepFrozen(v tx.ApplyView, account [20]byte, a asset.Asset) tx.Result {
	frozen, err := tx.IsDeepFrozen(v, account, a)
	if err != nil {
		return tx.TefINTERNAL
	}
	if frozen {
		return tx.TecFROZEN
	}
	return tx.TesSUCCESS
}

func validRate(rate uint32, limit lending.TenthBips) bool {
	return rate <= uint32(limit)
}

func nonNegative(n number.Number) bool {
	return n.Sign() >= 0
}

// clampedSub returns a - b, floored at zero.
func clampedSub(a, b number.Number) number.Number {
	if b.Gte(a) {
		return number.Zero()
	}
	return a.Sub(b)
}

// vaultLoss is the part of a loan's value owed to the vault: principal
// plus interest net of the management fee.
func vaultLoss(l *entries.Loan) number.Number {
	return l.TotalValueOutstanding.Sub(l.ManagementFeeOutstanding)
}

func loanEvent(t tx.Type, loanID [32]byte, action string) tx.Event {
	z := number.Zero()
	return tx.Event{TxType: t, LoanID: loanID, Action: action,
		PrincipalPaid: z, InterestPaid: z, FeePaid: z, ValueChange: z}
}
