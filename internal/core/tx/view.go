package tx

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
)

var (
	// ErrEntryNotFound is returned by Read when nothing is stored at a keylet.
	ErrEntryNotFound = errors.New("ledger entry not found")

	// ErrEntryExists is returned by Insert when the keylet is taken.
	ErrEntryExists = errors.New("ledger entry already exists")

	// ErrWrongEntryType is returned when a keylet holds a different entry type.
	ErrWrongEntryType = errors.New("ledger entry has unexpected type")
)

//go:generate mockgen -destination=txmock/apply_view.go -package=txmock . ApplyView

// ApplyView is the ledger state a transaction reads and modifies.
// Writes are only persisted if the enclosing transaction succeeds.
type ApplyView interface {
	Read(k keylet.Keylet) (entry.Entry, error)
	Exists(k keylet.Keylet) (bool, error)
	Insert(k keylet.Keylet, e entry.Entry) error
	Update(k keylet.Keylet, e entry.Entry) error
	Erase(k keylet.Keylet) error

	// ParentCloseTime is the close time of the previous ledger, in seconds
	// since the XRPL epoch. It is the clock every transaction sees.
	ParentCloseTime() uint32
}

func readAs[T entry.Entry](v ApplyView, k keylet.Keylet) (T, error) {
	var zero T
	e, err := v.Read(k)
	if err != nil {
		return zero, err
	}
	t, ok := e.(T)
	if !ok {
		return zero, fmt.Errorf("%w: want %s, got %s", ErrWrongEntryType, k.Type, e.Type())
	}
	return t, nil
}

// ReadLoan reads the loan at k.
func ReadLoan(v ApplyView, k keylet.Keylet) (*entries.Loan, error) {
	return readAs[*entries.Loan](v, k)
}

// ReadLoanBroker reads the broker at k.
func ReadLoanBroker(v ApplyView, k keylet.Keylet) (*entries.LoanBroker, error) {
	return readAs[*entries.LoanBroker](v, k)
}

// ReadVault reads the vault at k.
func ReadVault(v ApplyView, k keylet.Keylet) (*entries.Vault, error) {
	return readAs[*entries.Vault](v, k)
}

// ReadAccount reads the account root of id.
func ReadAccount(v ApplyView, id [20]byte) (*entries.AccountRoot, error) {
	return readAs[*entries.AccountRoot](v, keylet.Account(id))
}
