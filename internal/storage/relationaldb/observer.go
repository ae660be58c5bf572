package relationaldb

import (
	"context"
	"log/slog"

	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
)

// loanTargeted is implemented by transactions that act on an existing loan.
type loanTargeted interface {
	TargetLoan() [32]byte
}

// Recorder is a tx.Observer that writes applied lending transactions to
// the loan_events table.
type Recorder struct {
	repo   EventRepository
	logger *slog.Logger
}

var _ tx.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder writing to repo.
func NewRecorder(repo EventRepository, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{repo: repo, logger: logger.With("component", "history")}
}

// Observe implements tx.Observer. Transactions that did not reach the
// ledger are ignored. A write failure is logged and does not affect the
// ledger.
func (r *Recorder) Observe(t tx.Transaction, res tx.ApplyResult) {
	if !res.Applied {
		return
	}
	for _, ev := range rowsFor(t, res) {
		if err := r.repo.Insert(context.Background(), &ev); err != nil {
			r.logger.Error("failed to record loan event",
				"tx", t.TxType().String(),
				"result", res.Result.String(),
				"error", err,
			)
		}
	}
}

func rowsFor(t tx.Transaction, res tx.ApplyResult) []LoanEvent {
	if len(res.Events) == 0 {
		// Fee-only application, e.g. a tec result.
		ev := LoanEvent{
			TxHash:    res.TxHash,
			TxType:    t.TxType().String(),
			Action:    actionFor(t.TxType()),
			Result:    res.Result.String(),
			CloseTime: res.CloseTime,
		}
		if lt, ok := t.(loanTargeted); ok {
			ev.LoanID = lt.TargetLoan()
		}
		return []LoanEvent{ev}
	}

	out := make([]LoanEvent, 0, len(res.Events))
	for _, e := range res.Events {
		out = append(out, LoanEvent{
			TxHash:        res.TxHash,
			LoanID:        e.LoanID,
			TxType:        e.TxType.String(),
			Action:        e.Action,
			Result:        res.Result.String(),
			Path:          e.Path,
			Payments:      e.Payments,
			PrincipalPaid: e.PrincipalPaid,
			InterestPaid:  e.InterestPaid,
			FeePaid:       e.FeePaid,
			ValueChange:   e.ValueChange,
			CloseTime:     res.CloseTime,
		})
	}
	return out
}

func actionFor(t tx.Type) string {
	switch t {
	case tx.TypeLoanSet:
		return "set"
	case tx.TypeLoanPay:
		return "pay"
	case tx.TypeLoanManage:
		return "manage"
	default:
		return ""
	}
}
