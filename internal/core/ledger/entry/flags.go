package entry

import (
	"errors"
)

// Ledger entry flags (lsf prefix in rippled)
// Reference: rippled LedgerFormats.h
const (
	// AccountRoot flags
	AccountRootGlobalFreeze uint32 = 0x00400000

	// Loan flags
	LsfLoanDefault     uint32 = 0x00010000
	LsfLoanImpaired    uint32 = 0x00020000
	LsfLoanOverpayment uint32 = 0x00040000
)

// Freeze levels for a single asset held by an account.
const (
	FreezeNone uint8 = iota
	FreezeNormal
	FreezeDeep
)

// ErrInvalidEntry is returned when an entry fails validation on write.
var ErrInvalidEntry = errors.New("invalid entry")
