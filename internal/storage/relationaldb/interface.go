package relationaldb

import (
	"context"
	"time"

	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

// LoanEvent is one row of the loan_events table.
type LoanEvent struct {
	ID       int64
	TxHash   [32]byte
	LoanID   [32]byte
	TxType   string
	Action   string
	Result   string
	Path     string
	Payments int

	PrincipalPaid number.Number
	InterestPaid  number.Number
	FeePaid       number.Number
	ValueChange   number.Number

	// CloseTime is the parent close time in seconds since the ripple epoch.
	CloseTime uint32
	CreatedAt time.Time
}

// EventRepository persists settlement history.
type EventRepository interface {
	Insert(ctx context.Context, ev *LoanEvent) error
	LoanHistory(ctx context.Context, loanID [32]byte, limit int) ([]LoanEvent, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// Dialect captures the SQL differences between backends.
type Dialect struct {
	Name string
	// Driver is the database/sql driver name.
	Driver string
	// Schema statements are run in order by EventStore.Init.
	Schema []string
	// Placeholder returns the bind marker for the n-th (1-based) argument.
	Placeholder func(n int) string
}
