// Package asset describes the three kinds of value a loan can be
// denominated in and how numbers are brought to each kind's precision.
package asset

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Kind identifies how an asset is represented on the ledger.
type Kind uint8

const (
	KindXRP Kind = iota // native, integer drops
	KindIOU             // issued currency, decimal floating point
	KindMPT             // multi-purpose token, integer units
)

func (k Kind) String() string {
	switch k {
	case KindXRP:
		return "XRP"
	case KindIOU:
		return "IOU"
	case KindMPT:
		return "MPT"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Asset is an XRP, issued currency or MPT descriptor.
// Reference: rippled Asset (Issue | MPTIssue)
type Asset struct {
	Currency      string   `codec:"currency,omitempty"`
	Issuer        [20]byte `codec:"issuer,omitempty"`
	MPTIssuanceID [24]byte `codec:"mpt,omitempty"`
}

var (
	ErrBadCurrency = errors.New("invalid currency code")
	ErrBadIssuer   = errors.New("issued asset requires an issuer")
	ErrBadMPTID    = errors.New("invalid MPT issuance ID")
)

// XRP returns the native asset.
func XRP() Asset { return Asset{Currency: "XRP"} }

// IOU returns an issued currency.
func IOU(currency string, issuer [20]byte) Asset {
	return Asset{Currency: currency, Issuer: issuer}
}

// MPT returns a multi-purpose token asset.
func MPT(issuanceID [24]byte) Asset {
	return Asset{MPTIssuanceID: issuanceID}
}

func (a Asset) Kind() Kind {
	if a.MPTIssuanceID != [24]byte{} {
		return KindMPT
	}
	if a.Currency == "" || a.Currency == "XRP" {
		return KindXRP
	}
	return KindIOU
}

func (a Asset) IsXRP() bool { return a.Kind() == KindXRP }
func (a Asset) IsIOU() bool { return a.Kind() == KindIOU }
func (a Asset) IsMPT() bool { return a.Kind() == KindMPT }

// Integral reports whether amounts of this asset are whole numbers.
func (a Asset) Integral() bool {
	return a.Kind() != KindIOU
}

func (a Asset) Equal(b Asset) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindXRP:
		return true
	case KindMPT:
		return a.MPTIssuanceID == b.MPTIssuanceID
	default:
		return a.Currency == b.Currency && a.Issuer == b.Issuer
	}
}

// Validate checks the descriptor is well formed.
func (a Asset) Validate() error {
	switch a.Kind() {
	case KindIOU:
		if len(a.Currency) != 3 && len(a.Currency) != 40 {
			return ErrBadCurrency
		}
		if len(a.Currency) == 40 {
			if _, err := hex.DecodeString(a.Currency); err != nil {
				return ErrBadCurrency
			}
		}
		if strings.EqualFold(a.Currency, "XRP") {
			return ErrBadCurrency
		}
		if a.Issuer == [20]byte{} {
			return ErrBadIssuer
		}
	case KindMPT:
		if a.Currency != "" {
			return ErrBadMPTID
		}
	}
	return nil
}

// IssuerID returns the account that issues a. XRP has no issuer.
func (a Asset) IssuerID() [20]byte {
	var id [20]byte
	switch a.Kind() {
	case KindIOU:
		id = a.Issuer
	case KindMPT:
		// sequence (4 bytes) followed by the issuer's account ID
		copy(id[:], a.MPTIssuanceID[4:])
	}
	return id
}

// Key is a stable identifier used to index balances by asset.
func (a Asset) Key() string {
	switch a.Kind() {
	case KindXRP:
		return "XRP"
	case KindMPT:
		return "MPT/" + strings.ToUpper(hex.EncodeToString(a.MPTIssuanceID[:]))
	default:
		return a.Currency + "/" + strings.ToUpper(hex.EncodeToString(a.Issuer[:]))
	}
}

func (a Asset) String() string {
	return a.Key()
}

// ParseMPTIssuanceID decodes a 48 character hex issuance ID.
func ParseMPTIssuanceID(s string) ([24]byte, error) {
	var id [24]byte
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(id) {
		return id, ErrBadMPTID
	}
	copy(id[:], b)
	return id, nil
}
