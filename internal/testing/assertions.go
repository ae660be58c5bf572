package testing

import (
	"testing"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/stretchr/testify/require"
)

// RequireTxSuccess asserts that a transaction result indicates success.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected transaction success, got %s: %s", result.Code, result.Message)
}

// RequireTxFail asserts that a transaction failed with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expected tx.Result) {
	t.Helper()
	require.False(t, result.Success,
		"Expected transaction failure with code %s, but transaction succeeded", expected)
	require.Equal(t, expected, result.Result,
		"Expected failure code %s, got %s: %s", expected, result.Code, result.Message)
}

// RequireNumber asserts that got equals the decimal string want.
func RequireNumber(t *testing.T, want string, got number.Number, msgAndArgs ...any) {
	t.Helper()
	require.True(t, number.MustParse(want).Equal(got),
		append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

// RequireBalance asserts that acc holds exactly want of a.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, a asset.Asset, want string) {
	t.Helper()
	got := env.Balance(acc.ID, a)
	require.True(t, number.MustParse(want).Equal(got),
		"Account %s balance mismatch: expected %s, got %s", acc.Name, want, got)
}

// AssertBalanceChange asserts that fn changes acc's holding of a by delta.
func AssertBalanceChange(t *testing.T, env *TestEnv, acc *Account, a asset.Asset, delta string, fn func()) {
	t.Helper()
	before := env.Balance(acc.ID, a)
	fn()
	after := env.Balance(acc.ID, a)
	got := after.Sub(before)
	require.True(t, number.MustParse(delta).Equal(got),
		"Account %s balance change mismatch: expected %s, got %s", acc.Name, delta, got)
}
