package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/loan"
	"github.com/LeJamon/goxrpl-lending/internal/storage/relationaldb"
)

func openTestStore(t *testing.T) *relationaldb.EventStore {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertAndLoanHistory(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	loanA := [32]byte{0xA}
	loanB := [32]byte{0xB}
	for i, ev := range []relationaldb.LoanEvent{
		{LoanID: loanA, TxType: "LoanSet", Action: "set", Result: "tesSUCCESS", CloseTime: 100},
		{LoanID: loanB, TxType: "LoanSet", Action: "set", Result: "tesSUCCESS", CloseTime: 100},
		{
			LoanID: loanA, TxHash: [32]byte{1, 2, 3}, TxType: "LoanPay", Action: "pay",
			Result: "tesSUCCESS", Path: "regular", Payments: 2,
			PrincipalPaid: number.MustParse("166.5"),
			InterestPaid:  number.MustParse("0.0125"),
			FeePaid:       number.MustParse("2"),
			CloseTime:     700,
		},
	} {
		ev := ev
		require.NoError(t, s.Insert(ctx, &ev), "event %d", i)
		assert.Positive(t, ev.ID)
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	history, err := s.LoanHistory(ctx, loanA, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "set", history[0].Action)

	pay := history[1]
	assert.Equal(t, [32]byte{1, 2, 3}, pay.TxHash)
	assert.Equal(t, loanA, pay.LoanID)
	assert.Equal(t, "regular", pay.Path)
	assert.Equal(t, 2, pay.Payments)
	assert.True(t, pay.PrincipalPaid.Equal(number.MustParse("166.5")))
	assert.True(t, pay.InterestPaid.Equal(number.MustParse("0.0125")))
	assert.True(t, pay.FeePaid.Equal(number.FromInt(2)))
	assert.True(t, pay.ValueChange.IsZero())
	assert.EqualValues(t, 700, pay.CloseTime)
	assert.False(t, pay.CreatedAt.IsZero())

	limited, err := s.LoanHistory(ctx, loanA, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = s.LoanHistory(ctx, loanA, -1)
	assert.ErrorIs(t, err, relationaldb.ErrInvalidLimit)

	none, err := s.LoanHistory(ctx, [32]byte{0xC}, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Insert(ctx, &relationaldb.LoanEvent{}), relationaldb.ErrDatabaseClosed)
	_, err := s.Count(ctx)
	assert.ErrorIs(t, err, relationaldb.ErrDatabaseClosed)
}

func TestReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, &relationaldb.LoanEvent{TxType: "LoanSet", Action: "set", Result: "tesSUCCESS"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	r := relationaldb.NewRecorder(s, nil)

	loanID := [32]byte{0x42}
	pay := loan.NewLoanPay([20]byte{1}, loanID, tx.Amount{})

	// Not applied: nothing recorded.
	r.Observe(pay, tx.ApplyResult{Result: tx.TemBAD_AMOUNT})

	// Applied failure: one fee-only row targeting the loan.
	r.Observe(pay, tx.ApplyResult{Result: tx.TecINSUFFICIENT_PAYMENT, Applied: true, CloseTime: 50})

	// Success: one row per event.
	r.Observe(pay, tx.ApplyResult{
		Result:    tx.TesSUCCESS,
		Applied:   true,
		CloseTime: 60,
		Events: []tx.Event{{
			TxType: tx.TypeLoanPay, LoanID: loanID, Action: "pay", Path: "late",
			Payments: 1, PrincipalPaid: number.FromInt(10), ValueChange: number.FromInt(1),
		}},
	})

	history, err := s.LoanHistory(ctx, loanID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, "tecINSUFFICIENT_PAYMENT", history[0].Result)
	assert.Equal(t, "pay", history[0].Action)
	assert.EqualValues(t, 50, history[0].CloseTime)

	assert.Equal(t, "tesSUCCESS", history[1].Result)
	assert.Equal(t, "late", history[1].Path)
	assert.True(t, history[1].ValueChange.Equal(number.FromInt(1)))
}
