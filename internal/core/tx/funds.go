package tx

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// ErrInsufficientFunds is returned when a sender cannot cover a transfer.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Transfer is one leg of AccountSendMulti.
type Transfer struct {
	To     [20]byte
	Amount number.Number
}

func isIssuer(account [20]byte, a asset.Asset) bool {
	return !a.IsXRP() && a.IssuerID() == account
}

// AccountHolds returns what account can spend of a. An issuer holds an
// unlimited amount of its own asset, reported as zero with ok == false.
func AccountHolds(v ApplyView, account [20]byte, a asset.Asset) (number.Number, bool, error) {
	if isIssuer(account, a) {
		return number.Zero(), false, nil
	}
	acct, err := ReadAccount(v, account)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return number.Zero(), true, nil
		}
		return number.Zero(), true, err
	}
	return acct.Balance(a), true, nil
}

// IsFrozen reports whether account's holding of a is frozen, either on the
// holding itself or by a global freeze set by the issuer.
func IsFrozen(v ApplyView, account [20]byte, a asset.Asset) (bool, error) {
	return frozen(v, account, a, false)
}

// IsDeepFrozen reports whether account can neither send nor receive a.
func IsDeepFrozen(v ApplyView, account [20]byte, a asset.Asset) (bool, error) {
	return frozen(v, account, a, true)
}

func frozen(v ApplyView, account [20]byte, a asset.Asset, deep bool) (bool, error) {
	if a.IsXRP() || isIssuer(account, a) {
		return false, nil
	}
	if !deep {
		issuer, err := ReadAccount(v, a.IssuerID())
		if err != nil && !errors.Is(err, ErrEntryNotFound) {
			return false, err
		}
		if issuer != nil && issuer.IsFlag(entry.AccountRootGlobalFreeze) {
			return true, nil
		}
	}
	acct, err := ReadAccount(v, account)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return false, nil
		}
		return false, err
	}
	if deep {
		return acct.IsDeepFrozen(a), nil
	}
	return acct.IsFrozen(a), nil
}

// AccountSend moves amount of a from one account to another.
func AccountSend(v ApplyView, from, to [20]byte, a asset.Asset, amount number.Number) error {
	return AccountSendMulti(v, from, a, []Transfer{{To: to, Amount: amount}})
}

// AccountSendMulti debits from once for the sum of all transfers and
// credits each recipient. Zero legs are skipped.
// Reference: rippled accountSendMulti (View.cpp)
func AccountSendMulti(v ApplyView, from [20]byte, a asset.Asset, transfers []Transfer) error {
	total := number.Zero()
	for _, t := range transfers {
		if t.Amount.Sign() < 0 {
			return fmt.Errorf("negative transfer of %s %s", t.Amount, a)
		}
		total = total.Add(t.Amount)
	}
	if total.IsZero() {
		return nil
	}

	if !isIssuer(from, a) {
		src, err := ReadAccount(v, from)
		if err != nil {
			return fmt.Errorf("failed to read sender: %w", err)
		}
		if src.Balance(a).Lt(total) {
			return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientFunds, a, src.Balance(a), total)
		}
		src.Credit(a, total.Neg())
		if err := v.Update(keylet.Account(from), src); err != nil {
			return fmt.Errorf("failed to update sender: %w", err)
		}
	}

	for _, t := range transfers {
		if t.Amount.IsZero() || isIssuer(t.To, a) {
			continue
		}
		dst, err := ReadAccount(v, t.To)
		if err != nil {
			return fmt.Errorf("failed to read recipient: %w", err)
		}
		dst.Credit(a, t.Amount)
		if err := v.Update(keylet.Account(t.To), dst); err != nil {
			return fmt.Errorf("failed to update recipient: %w", err)
		}
	}
	return nil
}
