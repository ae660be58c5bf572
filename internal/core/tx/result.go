package tx

import "fmt"

// Result represents a transaction result code
type Result int

// Transaction result codes matching rippled
// These are organized by category: tes, tec, tef, tem, ter
const (
	// tesSUCCESS
	TesSUCCESS Result = 0

	// tec codes: the transaction failed but a fee is claimed (100-199)
	TecCLAIM                Result = 100
	TecUNFUNDED_PAYMENT     Result = 104
	TecFROZEN               Result = 137
	TecNO_TARGET            Result = 138
	TecNO_PERMISSION        Result = 139
	TecNO_ENTRY             Result = 140
	TecINTERNAL             Result = 144
	TecINVARIANT_FAILED     Result = 147
	TecEXPIRED              Result = 148
	TecDUPLICATE            Result = 149
	TecKILLED               Result = 150
	TecHAS_OBLIGATIONS      Result = 151
	TecTOO_SOON             Result = 152
	TecINSUFFICIENT_FUNDS   Result = 159
	TecOBJECT_NOT_FOUND     Result = 160
	TecINSUFFICIENT_PAYMENT Result = 161
	TecWRONG_ASSET          Result = 194
	TecLIMIT_EXCEEDED       Result = 195
	TecPSEUDO_ACCOUNT       Result = 196
	TecPRECISION_LOSS       Result = 197

	// tef codes: failed, not applied, no fee (-199 to -100)
	TefFAILURE          Result = -199
	TefBAD_LEDGER       Result = -195
	TefEXCEPTION        Result = -193
	TefINTERNAL         Result = -192
	TefINVARIANT_FAILED Result = -182

	// tem codes: malformed (-299 to -200)
	TemMALFORMED          Result = -299
	TemBAD_AMOUNT         Result = -298
	TemBAD_CURRENCY       Result = -297
	TemBAD_FEE            Result = -295
	TemBAD_ISSUER         Result = -294
	TemBAD_SIGNER         Result = -272
	TemDST_IS_SRC         Result = -279
	TemINVALID            Result = -277
	TemINVALID_FLAG       Result = -276
	TemDISABLED           Result = -273
	TemINVALID_ACCOUNT_ID Result = -268

	// ter codes: retry (-99 to -1)
	TerRETRY      Result = -99
	TerNO_ACCOUNT Result = -96
)

var resultNames = map[Result]string{
	TesSUCCESS:              "tesSUCCESS",
	TecCLAIM:                "tecCLAIM",
	TecUNFUNDED_PAYMENT:     "tecUNFUNDED_PAYMENT",
	TecFROZEN:               "tecFROZEN",
	TecNO_TARGET:            "tecNO_TARGET",
	TecNO_PERMISSION:        "tecNO_PERMISSION",
	TecNO_ENTRY:             "tecNO_ENTRY",
	TecINTERNAL:             "tecINTERNAL",
	TecINVARIANT_FAILED:     "tecINVARIANT_FAILED",
	TecEXPIRED:              "tecEXPIRED",
	TecDUPLICATE:            "tecDUPLICATE",
	TecKILLED:               "tecKILLED",
	TecHAS_OBLIGATIONS:      "tecHAS_OBLIGATIONS",
	TecTOO_SOON:             "tecTOO_SOON",
	TecINSUFFICIENT_FUNDS:   "tecINSUFFICIENT_FUNDS",
	TecOBJECT_NOT_FOUND:     "tecOBJECT_NOT_FOUND",
	TecINSUFFICIENT_PAYMENT: "tecINSUFFICIENT_PAYMENT",
	TecWRONG_ASSET:          "tecWRONG_ASSET",
	TecLIMIT_EXCEEDED:       "tecLIMIT_EXCEEDED",
	TecPSEUDO_ACCOUNT:       "tecPSEUDO_ACCOUNT",
	TecPRECISION_LOSS:       "tecPRECISION_LOSS",
	TefFAILURE:              "tefFAILURE",
	TefBAD_LEDGER:           "tefBAD_LEDGER",
	TefEXCEPTION:            "tefEXCEPTION",
	TefINTERNAL:             "tefINTERNAL",
	TefINVARIANT_FAILED:     "tefINVARIANT_FAILED",
	TemMALFORMED:            "temMALFORMED",
	TemBAD_AMOUNT:           "temBAD_AMOUNT",
	TemBAD_CURRENCY:         "temBAD_CURRENCY",
	TemBAD_FEE:              "temBAD_FEE",
	TemBAD_ISSUER:           "temBAD_ISSUER",
	TemBAD_SIGNER:           "temBAD_SIGNER",
	TemDST_IS_SRC:           "temDST_IS_SRC",
	TemINVALID:              "temINVALID",
	TemINVALID_FLAG:         "temINVALID_FLAG",
	TemDISABLED:             "temDISABLED",
	TemINVALID_ACCOUNT_ID:   "temINVALID_ACCOUNT_ID",
	TerRETRY:                "terRETRY",
	TerNO_ACCOUNT:           "terNO_ACCOUNT",
}

// String returns the string representation of the result code
func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Unknown(%d)", int(r))
}

// ParseResult maps a result name back to its code.
func ParseResult(s string) (Result, bool) {
	for r, name := range resultNames {
		if name == s {
			return r, true
		}
	}
	return 0, false
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec (claimed cost) code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsTer returns true if this is a ter (retry) code
func (r Result) IsTer() bool {
	return r >= -99 && r <= -1
}

// IsApplied returns true if the transaction would be included in a ledger
// This is true for tesSUCCESS and all tec codes
func (r Result) IsApplied() bool {
	return r.IsSuccess() || r.IsTec()
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied."
	case TecFROZEN:
		return "Asset is frozen."
	case TecNO_PERMISSION:
		return "No permission to perform requested operation."
	case TecNO_ENTRY:
		return "No matching entry found."
	case TecINTERNAL:
		return "An internal error has occurred during processing."
	case TecKILLED:
		return "No funds transferred and no offer created."
	case TecINSUFFICIENT_FUNDS:
		return "Not enough funds available to complete requested transaction."
	case TecINSUFFICIENT_PAYMENT:
		return "The payment is not sufficient."
	case TecWRONG_ASSET:
		return "Wrong asset given."
	case TecLIMIT_EXCEEDED:
		return "Limit exceeded."
	case TecPRECISION_LOSS:
		return "The amounts used by the transaction cannot interact."
	case TefBAD_LEDGER:
		return "Ledger in unexpected state."
	case TemBAD_AMOUNT:
		return "Malformed: Bad amount."
	case TemINVALID:
		return "The transaction is ill-formed."
	case TemINVALID_FLAG:
		return "The transaction has an invalid flag."
	default:
		return r.String()
	}
}
