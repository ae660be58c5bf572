package crypto

import (
	"crypto/sha256"
	"encoding/binary"

	crypto "github.com/LeJamon/goxrpl-lending/internal/crypto/common"
	"github.com/decred/dcrd/crypto/ripemd160"
)

// AccountIDSize is the size of an XRPL account ID in bytes.
const AccountIDSize = 20

// CalcAccountID computes the account ID from a public key (or any seed
// material) as RIPEMD160(SHA256(data)).
// See the rippled AccountID.cpp for the authoritative reference.
func CalcAccountID(data []byte) [AccountIDSize]byte {
	sha256Hash := sha256.Sum256(data)

	ripemd160Hasher := ripemd160.New()
	ripemd160Hasher.Write(sha256Hash[:])
	ripemd160Hash := ripemd160Hasher.Sum(nil)

	var result [AccountIDSize]byte
	copy(result[:], ripemd160Hash)
	return result
}

// PseudoAccountID derives the account owned by a ledger object such as a
// vault or loan broker. attempt lets callers step past a collision with an
// existing account.
// Reference: rippled pseudoAccountAddress (View.cpp)
func PseudoAccountID(ownerKey [32]byte, parentHash [32]byte, attempt uint16) [AccountIDSize]byte {
	var i [2]byte
	binary.BigEndian.PutUint16(i[:], attempt)
	h := crypto.Sha512Half(i[:], parentHash[:], ownerKey[:])
	return CalcAccountID(h[:])
}

// AccountIDFromBytes creates an account ID from a byte slice.
// Returns a zero account ID if the slice is not exactly 20 bytes.
func AccountIDFromBytes(b []byte) [AccountIDSize]byte {
	var result [AccountIDSize]byte
	if len(b) == AccountIDSize {
		copy(result[:], b)
	}
	return result
}

// IsZeroAccountID returns true if the account ID is all zeros.
func IsZeroAccountID(id [AccountIDSize]byte) bool {
	return id == [AccountIDSize]byte{}
}
