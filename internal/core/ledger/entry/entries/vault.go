package entries

import (
	"errors"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// WithdrawalPolicy represents the withdrawal policy for a vault
type WithdrawalPolicy uint8

const (
	// WithdrawalPolicyFirstComeFirstServe is the only policy rippled defines
	WithdrawalPolicyFirstComeFirstServe WithdrawalPolicy = 1
)

// Vault represents an asset vault ledger entry: the pool that funds loans.
// Reference: rippled/include/xrpl/protocol/detail/ledger_entries.macro ltVAULT
type Vault struct {
	BaseEntry

	Sequence         uint32           `codec:"sequence"`
	Owner            [20]byte         `codec:"owner"`
	Account          [20]byte         `codec:"account"` // pseudo-account holding the assets
	Asset            asset.Asset      `codec:"asset"`
	AssetsTotal      number.Number    `codec:"assets_total"`     // available plus receivables
	AssetsAvailable  number.Number    `codec:"assets_available"` // liquid
	AssetsMaximum    number.Number    `codec:"assets_maximum"`   // zero means unlimited
	LossUnrealized   number.Number    `codec:"loss_unrealized"`
	WithdrawalPolicy WithdrawalPolicy `codec:"withdrawal_policy"`
}

func (v *Vault) Type() entry.Type {
	return entry.TypeVault
}

func (v *Vault) Validate() error {
	if v.Owner == [20]byte{} {
		return errors.New("owner is required")
	}
	if v.Account == [20]byte{} {
		return errors.New("account is required")
	}
	if err := v.Asset.Validate(); err != nil {
		return err
	}
	if v.AssetsAvailable.Sign() < 0 {
		return errors.New("available assets cannot be negative")
	}
	if v.AssetsAvailable.Gt(v.AssetsTotal) {
		return errors.New("available assets cannot exceed total assets")
	}
	if !v.AssetsMaximum.IsZero() && v.AssetsTotal.Gt(v.AssetsMaximum) {
		return errors.New("total assets cannot exceed maximum")
	}
	if v.LossUnrealized.Sign() < 0 {
		return errors.New("unrealized loss cannot be negative")
	}
	return nil
}

func (v *Vault) Hash() ([32]byte, error) {
	hash := v.BaseEntry.Hash()
	xorInto(&hash, 0, v.Owner[:])
	xorInto(&hash, 0, v.Account[:])
	return hash, nil
}
