package tx

// Transaction is a lending transaction that can be checked and applied.
//
// The phases follow rippled's Transactor: Preflight validates the
// transaction on its own, Preclaim checks it against the ledger without
// changing anything, and DoApply makes the changes.
type Transaction interface {
	// TxType returns the transaction type
	TxType() Type

	// GetCommon returns the common transaction fields
	GetCommon() *Common

	Preflight(cfg Config) Result
	Preclaim(ctx *ApplyContext) Result
	DoApply(ctx *ApplyContext) Result
}

// FeeCalculator is implemented by transactions whose base fee depends on
// the ledger, such as LoanPay.
type FeeCalculator interface {
	CalculateBaseFee(view ApplyView, cfg Config) int64
}

// Common holds the fields shared by every transaction.
type Common struct {
	Account  [20]byte
	Flags    uint32
	Sequence uint32
	Fee      int64 // drops
}

// BaseTx provides the Common fields to embedding transactions.
type BaseTx struct {
	Common Common
}

// NewBaseTx creates a BaseTx for account
func NewBaseTx(account [20]byte) *BaseTx {
	return &BaseTx{Common: Common{Account: account}}
}

func (b *BaseTx) GetCommon() *Common { return &b.Common }

// HasFlag reports whether any bit of f is set on the transaction.
func (b *BaseTx) HasFlag(f uint32) bool { return b.Common.Flags&f != 0 }

// PreflightCommon performs the checks every transaction shares.
func (b *BaseTx) PreflightCommon(validFlags uint32) Result {
	if b.Common.Account == [20]byte{} {
		return TemINVALID_ACCOUNT_ID
	}
	if b.Common.Flags&^(validFlags|TfUniversal) != 0 {
		return TemINVALID_FLAG
	}
	if b.Common.Fee < 0 {
		return TemBAD_FEE
	}
	return TesSUCCESS
}
