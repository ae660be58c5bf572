package tx

import (
	"io"
	"log/slog"

	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// Config holds the engine settings that transactions depend on.
type Config struct {
	// BaseFee is the reference transaction cost in drops.
	BaseFee int64

	// MaxPaymentsPerTransaction caps how many scheduled payments one
	// LoanPay may settle.
	MaxPaymentsPerTransaction int

	// PaymentsPerFeeIncrement is how many estimated payments are covered by
	// each base fee a LoanPay is charged.
	PaymentsPerFeeIncrement int

	// LoanSet defaults and limits, in seconds or payments.
	DefaultPaymentInterval uint32
	DefaultPaymentTotal    uint32
	DefaultGracePeriod     uint32
	MinPaymentInterval     uint32
}

// DefaultConfig returns the protocol constants.
// Reference: rippled Protocol.h (loanMaximumPaymentsPerTransaction,
// loanPaymentsPerFeeIncrement) and LoanSet.h
func DefaultConfig() Config {
	return Config{
		BaseFee:                   10,
		MaxPaymentsPerTransaction: 100,
		PaymentsPerFeeIncrement:   5,
		DefaultPaymentInterval:    60,
		DefaultPaymentTotal:       1,
		DefaultGracePeriod:        60,
		MinPaymentInterval:        60,
	}
}

// ApplyContext provides everything a transaction needs while it is applied.
type ApplyContext struct {
	// View provides read/write access to ledger state
	View ApplyView

	// Config holds engine configuration
	Config Config

	// TxHash is the hash of the current transaction
	TxHash [32]byte

	// ParentHash seeds pseudo-account derivation
	ParentHash [32]byte

	Logger *slog.Logger

	events []Event
}

// NewApplyContext returns a context over view. A nil logger discards.
func NewApplyContext(view ApplyView, cfg Config, logger *slog.Logger) *ApplyContext {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ApplyContext{View: view, Config: cfg, Logger: logger}
}

// Now is the parent ledger's close time.
func (ctx *ApplyContext) Now() uint32 {
	return ctx.View.ParentCloseTime()
}

// Record attaches an event to the transaction's outcome.
func (ctx *ApplyContext) Record(e Event) {
	ctx.events = append(ctx.events, e)
}

// Events returns what the transaction recorded.
func (ctx *ApplyContext) Events() []Event {
	return ctx.events
}

// Event describes the effect of an applied lending transaction on one loan.
type Event struct {
	TxType   Type
	LoanID   [32]byte
	Action   string // set, pay, impair, unimpair, default
	Path     string // payment path, empty for non-payments
	Payments int    // scheduled payments settled

	PrincipalPaid number.Number
	InterestPaid  number.Number
	FeePaid       number.Number
	ValueChange   number.Number
}
