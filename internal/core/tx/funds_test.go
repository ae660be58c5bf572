package tx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/setup"
	"github.com/LeJamon/goxrpl-lending/internal/storage/database/memory"
	"github.com/LeJamon/goxrpl-lending/internal/storage/ledgerstore"
)

var (
	alice   = [20]byte{0xA}
	bob     = [20]byte{0xB}
	carol   = [20]byte{0xC}
	gateway = [20]byte{0x6}
	usd     = asset.IOU("USD", gateway)
)

func newSandbox(t *testing.T) tx.Sandbox {
	t.Helper()
	store, err := ledgerstore.New(context.Background(), memory.NewDB(), ledgerstore.Options{})
	require.NoError(t, err)
	sb, err := store.Sandbox(0)
	require.NoError(t, err)
	t.Cleanup(sb.Discard)
	return sb
}

func holds(t *testing.T, v tx.ApplyView, id [20]byte, a asset.Asset) number.Number {
	t.Helper()
	n, _, err := tx.AccountHolds(v, id, a)
	require.NoError(t, err)
	return n
}

func TestAccountHolds(t *testing.T) {
	v := newSandbox(t)
	require.NoError(t, setup.FundAccount(v, alice, usd, number.FromInt(50)))

	n, limited, err := tx.AccountHolds(v, alice, usd)
	require.NoError(t, err)
	assert.True(t, limited)
	assert.True(t, number.FromInt(50).Equal(n))

	// Missing accounts hold nothing.
	n, limited, err = tx.AccountHolds(v, bob, usd)
	require.NoError(t, err)
	assert.True(t, limited)
	assert.True(t, n.IsZero())

	// Issuers are not limited by a balance.
	_, limited, err = tx.AccountHolds(v, gateway, usd)
	require.NoError(t, err)
	assert.False(t, limited)
}

func TestAccountSendMulti(t *testing.T) {
	v := newSandbox(t)
	require.NoError(t, setup.FundAccount(v, alice, usd, number.FromInt(100)))
	require.NoError(t, setup.FundAccount(v, bob, usd, number.Zero()))
	require.NoError(t, setup.FundAccount(v, carol, usd, number.Zero()))

	err := tx.AccountSendMulti(v, alice, usd, []tx.Transfer{
		{To: bob, Amount: number.FromInt(30)},
		{To: carol, Amount: number.FromInt(20)},
		{To: [20]byte{0xFF}, Amount: number.Zero()},
	})
	require.NoError(t, err)
	assert.True(t, number.FromInt(50).Equal(holds(t, v, alice, usd)))
	assert.True(t, number.FromInt(30).Equal(holds(t, v, bob, usd)))
	assert.True(t, number.FromInt(20).Equal(holds(t, v, carol, usd)))
}

func TestAccountSendErrors(t *testing.T) {
	v := newSandbox(t)
	require.NoError(t, setup.FundAccount(v, alice, usd, number.FromInt(10)))
	require.NoError(t, setup.FundAccount(v, bob, usd, number.Zero()))

	err := tx.AccountSend(v, alice, bob, usd, number.FromInt(11))
	assert.ErrorIs(t, err, tx.ErrInsufficientFunds)

	err = tx.AccountSendMulti(v, alice, usd, []tx.Transfer{{To: bob, Amount: number.FromInt(-1)}})
	assert.Error(t, err)

	// The issuer can always send its own asset.
	require.NoError(t, tx.AccountSend(v, gateway, bob, usd, number.FromInt(1000)))
	assert.True(t, number.FromInt(1000).Equal(holds(t, v, bob, usd)))

	// Sending to the issuer burns the amount.
	require.NoError(t, tx.AccountSend(v, bob, gateway, usd, number.FromInt(400)))
	assert.True(t, number.FromInt(600).Equal(holds(t, v, bob, usd)))
}

func TestFreezes(t *testing.T) {
	v := newSandbox(t)
	require.NoError(t, setup.FundAccount(v, alice, usd, number.FromInt(10)))

	check := func(id [20]byte, a asset.Asset, frozen, deep bool) {
		t.Helper()
		got, err := tx.IsFrozen(v, id, a)
		require.NoError(t, err)
		assert.Equal(t, frozen, got)
		got, err = tx.IsDeepFrozen(v, id, a)
		require.NoError(t, err)
		assert.Equal(t, deep, got)
	}

	check(alice, usd, false, false)

	require.NoError(t, setup.SetFreeze(v, alice, usd, entry.FreezeNormal))
	check(alice, usd, true, false)

	require.NoError(t, setup.SetFreeze(v, alice, usd, entry.FreezeDeep))
	check(alice, usd, true, true)

	require.NoError(t, setup.SetFreeze(v, alice, usd, entry.FreezeNone))
	require.NoError(t, setup.SetGlobalFreeze(v, gateway, true))
	check(alice, usd, true, false)
	check(bob, usd, true, false)
	// Issuers and XRP are never frozen.
	check(gateway, usd, false, false)
	check(alice, asset.XRP(), false, false)
}
