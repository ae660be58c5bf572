package testing

import "github.com/LeJamon/goxrpl-lending/internal/core/tx"

// TxResult represents the result of applying a transaction.
type TxResult struct {
	// Code is the transaction engine result code (e.g., "tesSUCCESS").
	Code string

	// Success indicates whether the transaction was successfully applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	Result tx.Result
	Fee    int64
	Events []tx.Event
}

func resultOf(r tx.ApplyResult) TxResult {
	return TxResult{
		Code:    r.Result.String(),
		Success: r.Result.IsSuccess(),
		Message: r.Message,
		Result:  r.Result,
		Fee:     r.Fee,
		Events:  r.Events,
	}
}

// IsSuccess returns true if the result code indicates success.
func (r TxResult) IsSuccess() bool {
	return r.Result.IsSuccess()
}

// IsClaimed returns true if the fee was claimed but the transaction was
// not applied (tec codes).
func (r TxResult) IsClaimed() bool {
	return r.Result.IsTec()
}

// IsMalformed returns true if the result code indicates the transaction is malformed.
func (r TxResult) IsMalformed() bool {
	return r.Result.IsTem()
}

// Event returns the single event the transaction recorded.
func (r TxResult) Event() tx.Event {
	if len(r.Events) != 1 {
		panic("transaction did not record exactly one event")
	}
	return r.Events[0]
}
