package tx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/setup"
	"github.com/LeJamon/goxrpl-lending/internal/storage/database/memory"
	"github.com/LeJamon/goxrpl-lending/internal/storage/ledgerstore"
)

// fakeTx funds its account in DoApply and returns the configured results.
type fakeTx struct {
	tx.BaseTx
	preflight tx.Result
	preclaim  tx.Result
	apply     tx.Result
	fee       int64
}

func newFakeTx(account [20]byte) *fakeTx {
	return &fakeTx{BaseTx: *tx.NewBaseTx(account)}
}

func (f *fakeTx) TxType() tx.Type { return tx.TypeLoanManage }

func (f *fakeTx) Preflight(cfg tx.Config) tx.Result { return f.preflight }

func (f *fakeTx) Preclaim(ctx *tx.ApplyContext) tx.Result { return f.preclaim }

func (f *fakeTx) DoApply(ctx *tx.ApplyContext) tx.Result {
	if err := setup.FundAccount(ctx.View, f.Common.Account, asset.XRP(), number.FromInt(100)); err != nil {
		return tx.TefINTERNAL
	}
	ctx.Record(tx.Event{TxType: f.TxType(), Action: "fund"})
	return f.apply
}

type feeTx struct{ *fakeTx }

func (f feeTx) CalculateBaseFee(view tx.ApplyView, cfg tx.Config) int64 { return f.fee }

type recorder struct{ results []tx.ApplyResult }

func (r *recorder) Observe(t tx.Transaction, res tx.ApplyResult) {
	r.results = append(r.results, res)
}

func newEngine(t *testing.T) (*tx.Engine, *ledgerstore.Store, *recorder) {
	t.Helper()
	store, err := ledgerstore.New(context.Background(), memory.NewDB(), ledgerstore.Options{})
	require.NoError(t, err)
	rec := &recorder{}
	return tx.NewEngine(store, tx.DefaultConfig(), nil, rec), store, rec
}

func balance(t *testing.T, store *ledgerstore.Store, id [20]byte) number.Number {
	t.Helper()
	sb, err := store.Sandbox(0)
	require.NoError(t, err)
	defer sb.Discard()
	held, _, err := tx.AccountHolds(sb, id, asset.XRP())
	require.NoError(t, err)
	return held
}

func TestEngineApply(t *testing.T) {
	account := [20]byte{1}

	tests := []struct {
		name      string
		preflight tx.Result
		preclaim  tx.Result
		apply     tx.Result
		applied   bool
		fee       int64
		funded    bool
	}{
		{"success", tx.TesSUCCESS, tx.TesSUCCESS, tx.TesSUCCESS, true, 10, true},
		{"malformed", tx.TemINVALID, tx.TesSUCCESS, tx.TesSUCCESS, false, 0, false},
		{"preclaim claims fee", tx.TesSUCCESS, tx.TecNO_PERMISSION, tx.TesSUCCESS, true, 10, false},
		{"preclaim not applied", tx.TesSUCCESS, tx.TefBAD_LEDGER, tx.TesSUCCESS, false, 10, false},
		{"apply claims fee", tx.TesSUCCESS, tx.TesSUCCESS, tx.TecINSUFFICIENT_FUNDS, true, 10, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine, store, rec := newEngine(t)
			f := newFakeTx(account)
			f.preflight, f.preclaim, f.apply = tc.preflight, tc.preclaim, tc.apply

			res, err := engine.Apply(f, 1000)
			require.NoError(t, err)

			expected := tc.apply
			if !tc.preflight.IsSuccess() {
				expected = tc.preflight
			} else if !tc.preclaim.IsSuccess() {
				expected = tc.preclaim
			}
			assert.Equal(t, expected, res.Result)
			assert.Equal(t, tc.applied, res.Applied)
			assert.Equal(t, tc.fee, res.Fee)
			assert.Equal(t, expected.Message(), res.Message)

			if tc.funded {
				assert.True(t, number.FromInt(100).Equal(balance(t, store, account)))
				require.Len(t, res.Events, 1)
				assert.Equal(t, "fund", res.Events[0].Action)
			} else {
				assert.True(t, balance(t, store, account).IsZero())
				assert.Empty(t, res.Events)
			}

			require.Len(t, rec.results, 1)
			assert.Equal(t, res.Result, rec.results[0].Result)
		})
	}
}

func TestEngineFeeCalculator(t *testing.T) {
	engine, _, _ := newEngine(t)
	f := newFakeTx([20]byte{1})
	f.fee = 40

	res, err := engine.Apply(feeTx{f}, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(40), res.Fee)
}

func TestEngineTxHash(t *testing.T) {
	engine, _, _ := newEngine(t)
	a := newFakeTx([20]byte{1})
	b := newFakeTx([20]byte{1})
	b.Common.Sequence = 2

	ra, err := engine.Apply(a, 1000)
	require.NoError(t, err)
	rb, err := engine.Apply(b, 1000)
	require.NoError(t, err)
	assert.NotEqual(t, ra.TxHash, rb.TxHash)
	assert.NotEqual(t, [32]byte{}, ra.TxHash)
}

func TestEngineCommitsSequentially(t *testing.T) {
	engine, store, _ := newEngine(t)
	account := [20]byte{3}

	for i := 0; i < 3; i++ {
		res, err := engine.Apply(newFakeTx(account), uint32(1000+i))
		require.NoError(t, err)
		require.Equal(t, tx.TesSUCCESS, res.Result)
	}
	assert.True(t, number.FromInt(300).Equal(balance(t, store, account)))
}
