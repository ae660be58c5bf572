// Package entries holds the ledger records the lending protocol reads and
// writes: accounts, vaults, loan brokers and loans.
package entries

import (
	"encoding/binary"
)

// BaseEntry contains fields common to all entries
type BaseEntry struct {
	PreviousTxnID     [32]byte `codec:"prev_txn_id"`
	PreviousTxnLgrSeq uint32   `codec:"prev_txn_seq"`
	Flags             uint32   `codec:"flags"`
}

// Hash implements a basic hashing mechanism for the base entry
func (b *BaseEntry) Hash() [32]byte {
	var result [32]byte
	binary.BigEndian.PutUint32(result[:4], b.PreviousTxnLgrSeq)
	binary.BigEndian.PutUint32(result[4:8], b.Flags)
	copy(result[8:], b.PreviousTxnID[:])
	return result
}

func (b *BaseEntry) IsFlag(f uint32) bool { return b.Flags&f != 0 }
func (b *BaseEntry) SetFlag(f uint32)     { b.Flags |= f }
func (b *BaseEntry) ClearFlag(f uint32)   { b.Flags &^= f }

func xorInto(dst *[32]byte, offset int, src []byte) {
	for i := range src {
		if offset+i >= len(dst) {
			return
		}
		dst[offset+i] ^= src[i]
	}
}
