package entries

import (
	"errors"

	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// MaxCoverRate is the upper bound of the cover rates, in tenth basis points.
const MaxCoverRate uint32 = 100_000

// MaxManagementFeeRate is the upper bound of the management fee rate (10%).
const MaxManagementFeeRate uint16 = 10_000

// LoanBroker operates loans against a single vault.
// Reference: rippled ledger_entries.macro ltLOAN_BROKER
type LoanBroker struct {
	BaseEntry

	Sequence     uint32   `codec:"sequence"`
	Owner        [20]byte `codec:"owner"`
	Account      [20]byte `codec:"account"` // pseudo-account holding first-loss cover
	VaultID      [32]byte `codec:"vault_id"`
	OwnerCount   uint32   `codec:"owner_count"`   // open loans
	LoanSequence uint32   `codec:"loan_sequence"` // next loan's sequence

	DebtTotal      number.Number `codec:"debt_total"`
	DebtMaximum    number.Number `codec:"debt_maximum"` // zero means no ceiling
	CoverAvailable number.Number `codec:"cover_available"`

	CoverRateMinimum     uint32 `codec:"cover_rate_minimum"`
	CoverRateLiquidation uint32 `codec:"cover_rate_liquidation"`
	ManagementFeeRate    uint16 `codec:"management_fee_rate"`
}

func (b *LoanBroker) Type() entry.Type {
	return entry.TypeLoanBroker
}

func (b *LoanBroker) Validate() error {
	if b.Owner == [20]byte{} {
		return errors.New("owner is required")
	}
	if b.Account == [20]byte{} {
		return errors.New("account is required")
	}
	if b.VaultID == [32]byte{} {
		return errors.New("vault ID is required")
	}
	if b.DebtTotal.Sign() < 0 {
		return errors.New("debt total cannot be negative")
	}
	if b.DebtMaximum.Sign() < 0 {
		return errors.New("debt maximum cannot be negative")
	}
	if b.CoverAvailable.Sign() < 0 {
		return errors.New("cover available cannot be negative")
	}
	if b.CoverRateMinimum > MaxCoverRate || b.CoverRateLiquidation > MaxCoverRate {
		return errors.New("cover rate out of range")
	}
	if b.ManagementFeeRate > MaxManagementFeeRate {
		return errors.New("management fee rate out of range")
	}
	return nil
}

func (b *LoanBroker) Hash() ([32]byte, error) {
	hash := b.BaseEntry.Hash()
	xorInto(&hash, 0, b.Owner[:])
	xorInto(&hash, 12, b.VaultID[:20])
	return hash, nil
}
