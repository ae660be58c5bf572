package keylet

import (
	"encoding/binary"

	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	crypto "github.com/LeJamon/goxrpl-lending/internal/crypto/common"
)

// Space identifiers for keylet generation
// These correspond to the LedgerNameSpace enum in rippled
const (
	spaceAccount    uint16 = 'a' // Account root
	spaceVault      uint16 = 'V' // Vault
	spaceLoanBroker uint16 = 'l' // Loan broker
	spaceLoan       uint16 = 'L' // Loan
)

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return crypto.Sha512Half(inputs...)
}

func seqBytes(seq uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, seq)
	return b
}

// Account returns the keylet for an account root entry.
func Account(accountID [20]byte) Keylet {
	return Keylet{
		Type: entry.TypeAccountRoot,
		Key:  indexHash(spaceAccount, accountID[:]),
	}
}

// Vault returns the keylet for a vault created by owner at sequence.
func Vault(owner [20]byte, sequence uint32) Keylet {
	return Keylet{
		Type: entry.TypeVault,
		Key:  indexHash(spaceVault, owner[:], seqBytes(sequence)),
	}
}

// VaultByID wraps an existing vault key.
func VaultByID(id [32]byte) Keylet {
	return Keylet{Type: entry.TypeVault, Key: id}
}

// LoanBroker returns the keylet for a broker created by owner at sequence.
func LoanBroker(owner [20]byte, sequence uint32) Keylet {
	return Keylet{
		Type: entry.TypeLoanBroker,
		Key:  indexHash(spaceLoanBroker, owner[:], seqBytes(sequence)),
	}
}

// LoanBrokerByID wraps an existing broker key.
func LoanBrokerByID(id [32]byte) Keylet {
	return Keylet{Type: entry.TypeLoanBroker, Key: id}
}

// Loan returns the keylet for the broker's loan with the given sequence.
func Loan(brokerID [32]byte, loanSequence uint32) Keylet {
	return Keylet{
		Type: entry.TypeLoan,
		Key:  indexHash(spaceLoan, brokerID[:], seqBytes(loanSequence)),
	}
}

// LoanByID wraps an existing loan key.
func LoanByID(id [32]byte) Keylet {
	return Keylet{Type: entry.TypeLoan, Key: id}
}
