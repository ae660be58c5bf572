package tx

import "fmt"

// Type identifies a transaction type
type Type uint16

// Lending transaction types
const (
	TypeLoanSet    Type = 80 // ttLOAN_SET
	TypeLoanManage Type = 82 // ttLOAN_MANAGE
	TypeLoanPay    Type = 84 // ttLOAN_PAY
)

func (t Type) String() string {
	switch t {
	case TypeLoanSet:
		return "LoanSet"
	case TypeLoanManage:
		return "LoanManage"
	case TypeLoanPay:
		return "LoanPay"
	default:
		return fmt.Sprintf("Unknown(%d)", uint16(t))
	}
}

// Universal transaction flags
const (
	TfFullyCanonicalSig uint32 = 0x80000000
	TfUniversal         uint32 = TfFullyCanonicalSig
	TfUniversalMask     uint32 = ^TfUniversal
)
