package entries

import (
	"encoding/binary"
	"errors"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// AccountRoot represents an account in the ledger. Holdings of every asset
// are kept on the account itself, keyed by asset.Key().
type AccountRoot struct {
	BaseEntry
	Account    [20]byte `codec:"account"`
	Sequence   uint32   `codec:"sequence"`
	OwnerCount uint32   `codec:"owner_count"`

	Balances map[string]number.Number `codec:"balances,omitempty"`
	Freezes  map[string]uint8         `codec:"freezes,omitempty"`

	// Pseudo-accounts belong to a vault or loan broker and cannot sign.
	PseudoOwner *[32]byte `codec:"pseudo_owner,omitempty"`
}

// NewAccountRoot returns an empty account.
func NewAccountRoot(id [20]byte) *AccountRoot {
	return &AccountRoot{
		Account:  id,
		Sequence: 1,
		Balances: map[string]number.Number{},
		Freezes:  map[string]uint8{},
	}
}

func (a *AccountRoot) Type() entry.Type {
	return entry.TypeAccountRoot
}

func (a *AccountRoot) Validate() error {
	if a.Account == [20]byte{} {
		return errors.New("account ID is required")
	}
	for k, v := range a.Balances {
		if v.Sign() < 0 {
			return errors.New("balance cannot be negative: " + k)
		}
	}
	return nil
}

func (a *AccountRoot) Hash() ([32]byte, error) {
	hash := a.BaseEntry.Hash()

	var buf [8]byte
	binary.BigEndian.PutUint32(buf[:4], a.Sequence)
	binary.BigEndian.PutUint32(buf[4:], a.OwnerCount)
	xorInto(&hash, 0, buf[:])
	xorInto(&hash, 8, a.Account[:])
	return hash, nil
}

// Balance returns the account's holding of a.
func (a *AccountRoot) Balance(as asset.Asset) number.Number {
	if a.Balances == nil {
		return number.Zero()
	}
	return a.Balances[as.Key()]
}

// Credit adds v to the holding of a. v may be negative.
func (a *AccountRoot) Credit(as asset.Asset, v number.Number) {
	if a.Balances == nil {
		a.Balances = map[string]number.Number{}
	}
	nb := a.Balances[as.Key()].Add(v)
	if nb.IsZero() {
		delete(a.Balances, as.Key())
		return
	}
	a.Balances[as.Key()] = nb
}

// FreezeLevel reports how the account's holding of a is frozen. A global
// freeze counts as a regular freeze on every asset.
func (a *AccountRoot) FreezeLevel(as asset.Asset) uint8 {
	level := entry.FreezeNone
	if a.Freezes != nil {
		level = a.Freezes[as.Key()]
	}
	if level == entry.FreezeNone && a.IsFlag(entry.AccountRootGlobalFreeze) && !as.IsXRP() {
		level = entry.FreezeNormal
	}
	return level
}

// SetFreeze sets the freeze level for a.
func (a *AccountRoot) SetFreeze(as asset.Asset, level uint8) {
	if a.Freezes == nil {
		a.Freezes = map[string]uint8{}
	}
	if level == entry.FreezeNone {
		delete(a.Freezes, as.Key())
		return
	}
	a.Freezes[as.Key()] = level
}

func (a *AccountRoot) IsFrozen(as asset.Asset) bool {
	return !as.IsXRP() && a.FreezeLevel(as) != entry.FreezeNone
}

func (a *AccountRoot) IsDeepFrozen(as asset.Asset) bool {
	return !as.IsXRP() && a.FreezeLevel(as) == entry.FreezeDeep
}

func (a *AccountRoot) IsPseudoAccount() bool { return a.PseudoOwner != nil }
