// Package setup writes the records the lending transactions operate on:
// funded accounts, vaults and loan brokers. Creating and managing those
// is outside the lending transactions, so these writers skip the checks a
// full transaction would make.
package setup

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/crypto"
)

// maxPseudoAttempts bounds the search for an unused pseudo-account.
// Reference: rippled View.cpp pseudoAccountAddress
const maxPseudoAttempts = 256

// EnsureAccount creates the account root for id if it does not exist.
func EnsureAccount(v tx.ApplyView, id [20]byte) (*entries.AccountRoot, error) {
	acct, err := tx.ReadAccount(v, id)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, tx.ErrEntryNotFound) {
		return nil, err
	}
	acct = entries.NewAccountRoot(id)
	if err := v.Insert(keylet.Account(id), acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// FundAccount credits amount of a to id, creating the account if needed.
// The asset's issuer is not debited.
func FundAccount(v tx.ApplyView, id [20]byte, a asset.Asset, amount number.Number) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("cannot fund a negative amount %s", amount)
	}
	acct, err := EnsureAccount(v, id)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	acct.Credit(a, amount)
	return v.Update(keylet.Account(id), acct)
}

// SetFreeze sets how id's holding of a is frozen.
func SetFreeze(v tx.ApplyView, id [20]byte, a asset.Asset, level uint8) error {
	acct, err := EnsureAccount(v, id)
	if err != nil {
		return err
	}
	acct.SetFreeze(a, level)
	return v.Update(keylet.Account(id), acct)
}

// SetGlobalFreeze freezes or unfreezes every asset issued by issuer.
func SetGlobalFreeze(v tx.ApplyView, issuer [20]byte, on bool) error {
	acct, err := EnsureAccount(v, issuer)
	if err != nil {
		return err
	}
	if on {
		acct.SetFlag(entry.AccountRootGlobalFreeze)
	} else {
		acct.ClearFlag(entry.AccountRootGlobalFreeze)
	}
	return v.Update(keylet.Account(issuer), acct)
}

// createPseudoAccount derives and inserts the pseudo-account owned by the
// record at ownerKey.
func createPseudoAccount(v tx.ApplyView, ownerKey, parentHash [32]byte) ([20]byte, error) {
	for attempt := uint16(0); attempt < maxPseudoAttempts; attempt++ {
		id := crypto.PseudoAccountID(ownerKey, parentHash, attempt)
		exists, err := v.Exists(keylet.Account(id))
		if err != nil {
			return [20]byte{}, err
		}
		if exists {
			continue
		}
		acct := entries.NewAccountRoot(id)
		owner := ownerKey
		acct.PseudoOwner = &owner
		if err := v.Insert(keylet.Account(id), acct); err != nil {
			return [20]byte{}, err
		}
		return id, nil
	}
	return [20]byte{}, errors.New("no free pseudo-account address")
}

// bumpSequence returns owner's current sequence and advances it, as a
// create transaction consumes it.
func bumpSequence(v tx.ApplyView, owner [20]byte) (uint32, error) {
	acct, err := tx.ReadAccount(v, owner)
	if err != nil {
		return 0, fmt.Errorf("owner account: %w", err)
	}
	seq := acct.Sequence
	acct.Sequence++
	acct.OwnerCount++
	if err := v.Update(keylet.Account(owner), acct); err != nil {
		return 0, err
	}
	return seq, nil
}

// CreateVault creates an empty vault of a owned by owner and returns its
// ID.
// Reference: rippled VaultCreate.cpp
func CreateVault(v tx.ApplyView, owner [20]byte, a asset.Asset, parentHash [32]byte) ([32]byte, error) {
	if err := a.Validate(); err != nil {
		return [32]byte{}, err
	}
	seq, err := bumpSequence(v, owner)
	if err != nil {
		return [32]byte{}, err
	}
	k := keylet.Vault(owner, seq)
	pseudo, err := createPseudoAccount(v, k.Key, parentHash)
	if err != nil {
		return [32]byte{}, err
	}
	vault := &entries.Vault{
		Sequence:         seq,
		Owner:            owner,
		Account:          pseudo,
		Asset:            a,
		WithdrawalPolicy: entries.WithdrawalPolicyFirstComeFirstServe,
	}
	if err := v.Insert(k, vault); err != nil {
		return [32]byte{}, err
	}
	return k.Key, nil
}

// DepositVault moves amount from depositor into the vault's pool.
// Reference: rippled VaultDeposit.cpp
func DepositVault(v tx.ApplyView, vaultID [32]byte, depositor [20]byte, amount number.Number) error {
	k := keylet.VaultByID(vaultID)
	vault, err := tx.ReadVault(v, k)
	if err != nil {
		return err
	}
	if err := tx.AccountSend(v, depositor, vault.Account, vault.Asset, amount); err != nil {
		return err
	}
	vault.AssetsTotal = vault.AssetsTotal.Add(amount)
	vault.AssetsAvailable = vault.AssetsAvailable.Add(amount)
	return v.Update(k, vault)
}

// BrokerParams are the terms a loan broker is created with.
type BrokerParams struct {
	// ManagementFeeRate is in tenth basis points, at most 10%.
	ManagementFeeRate    uint16
	CoverRateMinimum     uint32
	CoverRateLiquidation uint32
	// DebtMaximum of zero means no ceiling.
	DebtMaximum number.Number
}

// CreateBroker creates a loan broker over vaultID. Only the vault owner
// may create one.
// Reference: rippled LoanBrokerSet.cpp
func CreateBroker(v tx.ApplyView, owner [20]byte, vaultID [32]byte, p BrokerParams, parentHash [32]byte) ([32]byte, error) {
	vault, err := tx.ReadVault(v, keylet.VaultByID(vaultID))
	if err != nil {
		return [32]byte{}, err
	}
	if vault.Owner != owner {
		return [32]byte{}, fmt.Errorf("vault is not owned by the broker owner")
	}
	seq, err := bumpSequence(v, owner)
	if err != nil {
		return [32]byte{}, err
	}
	k := keylet.LoanBroker(owner, seq)
	pseudo, err := createPseudoAccount(v, k.Key, parentHash)
	if err != nil {
		return [32]byte{}, err
	}
	broker := &entries.LoanBroker{
		Sequence:             seq,
		Owner:                owner,
		Account:              pseudo,
		VaultID:              vaultID,
		LoanSequence:         1,
		DebtMaximum:          p.DebtMaximum,
		CoverRateMinimum:     p.CoverRateMinimum,
		CoverRateLiquidation: p.CoverRateLiquidation,
		ManagementFeeRate:    p.ManagementFeeRate,
	}
	if err := broker.Validate(); err != nil {
		return [32]byte{}, err
	}
	if err := v.Insert(k, broker); err != nil {
		return [32]byte{}, err
	}
	return k.Key, nil
}

// DepositCover moves first-loss capital from depositor to the broker.
// Reference: rippled LoanBrokerCoverDeposit.cpp
func DepositCover(v tx.ApplyView, brokerID [32]byte, depositor [20]byte, amount number.Number) error {
	k := keylet.LoanBrokerByID(brokerID)
	broker, err := tx.ReadLoanBroker(v, k)
	if err != nil {
		return err
	}
	vault, err := tx.ReadVault(v, keylet.VaultByID(broker.VaultID))
	if err != nil {
		return err
	}
	if err := tx.AccountSend(v, depositor, broker.Account, vault.Asset, amount); err != nil {
		return err
	}
	broker.CoverAvailable = broker.CoverAvailable.Add(amount)
	return v.Update(k, broker)
}
