package entry

import (
	"fmt"
)

// Type represents a ledger entry type
type Type uint16

// Ledger entry types used by the lending protocol
// Reference: rippled/include/xrpl/protocol/detail/ledger_entries.macro
const (
	TypeAccountRoot Type = 0x0061 // Account objects and pseudo-accounts
	TypeVault       Type = 0x0084 // Asset vaults
	TypeLoanBroker  Type = 0x0088 // Loan brokers
	TypeLoan        Type = 0x0089 // Individual loans
)

// String returns the string representation of the Type
func (t Type) String() string {
	switch t {
	case TypeAccountRoot:
		return "AccountRoot"
	case TypeVault:
		return "Vault"
	case TypeLoanBroker:
		return "LoanBroker"
	case TypeLoan:
		return "Loan"
	default:
		return fmt.Sprintf("Unknown(%#x)", uint16(t))
	}
}

// Entry defines the interface for all ledger entries
type Entry interface {
	Type() Type
	Validate() error
	Hash() ([32]byte, error)
}
