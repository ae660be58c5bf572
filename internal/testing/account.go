package testing

import (
	"crypto/sha512"

	"github.com/LeJamon/goxrpl-lending/internal/crypto"
	addresscodec "github.com/Peersyst/xrpl-go/address-codec"
)

// Account is a named test account.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// Address is the classic address (e.g., "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh").
	Address string

	// ID is the 20-byte account ID derived from the name.
	ID [20]byte
}

// NewAccount creates an account whose ID is derived from the name, so the
// same name always produces the same account.
func NewAccount(name string) *Account {
	hash := sha512.Sum512([]byte(name))
	id := crypto.CalcAccountID(hash[:16])

	address, err := addresscodec.EncodeAccountIDToClassicAddress(id[:])
	if err != nil {
		panic("failed to encode address for account " + name + ": " + err.Error())
	}
	return &Account{Name: name, Address: address, ID: id}
}

// DecodeAddress converts a classic address to an account ID.
func DecodeAddress(address string) ([20]byte, error) {
	_, accountID, err := addresscodec.DecodeClassicAddressToAccountID(address)
	if err != nil {
		return [20]byte{}, err
	}
	var id [20]byte
	copy(id[:], accountID)
	return id, nil
}

func (a *Account) String() string {
	return a.Name
}
