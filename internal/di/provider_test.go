package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goxrpl-lending/internal/config"
	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/loan"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/setup"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	dir := t.TempDir()
	cfg.Storage.Backend = backend
	cfg.Storage.Path = filepath.Join(dir, "state")
	cfg.History.DSN = filepath.Join(dir, "history.db")
	cfg.Metrics.Enabled = true
	require.NoError(t, config.ValidateConfig(cfg))
	return cfg
}

func TestOpenNode(t *testing.T) {
	for _, backend := range []string{
		config.BackendMemory,
		config.BackendPebble,
		config.BackendLevelDB,
		config.BackendBbolt,
	} {
		t.Run(backend, func(t *testing.T) {
			n, err := Open(testConfig(t, backend), nil)
			require.NoError(t, err)
			defer n.Close()

			require.NotNil(t, n.Engine)
			require.NotNil(t, n.Ledger)
			require.NotNil(t, n.History)
			require.NotNil(t, n.Metrics)

			borrower := [20]byte{0xB0}
			sb, err := n.Ledger.Sandbox(1000)
			require.NoError(t, err)
			require.NoError(t, setup.FundAccount(sb, borrower, asset.XRP(), number.FromInt(1000)))
			require.NoError(t, sb.Commit())

			// Paying a loan that does not exist still claims the fee.
			pay := loan.NewLoanPay(borrower, [32]byte{0x01}, tx.NewAmount(asset.XRP(), number.FromInt(10)))
			res, err := n.Engine.Apply(pay, 1000)
			require.NoError(t, err)
			assert.True(t, res.Applied)

			count, err := n.History.Count(context.Background())
			require.NoError(t, err)
			assert.EqualValues(t, 1, count)

			families, err := n.Metrics.Gather()
			require.NoError(t, err)
			assert.NotEmpty(t, families)
		})
	}
}

func TestOpenNodeWithoutHistory(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.History.Driver = config.HistoryNone
	cfg.Metrics.Enabled = false

	n, err := Open(cfg, nil)
	require.NoError(t, err)
	defer n.Close()
	assert.Nil(t, n.History)
	assert.Nil(t, n.Metrics)
}

func TestOpenNodeBadBackend(t *testing.T) {
	cfg := testConfig(t, config.BackendMemory)
	cfg.Storage.Backend = "rocksdb"
	_, err := Open(cfg, nil)
	assert.ErrorContains(t, err, "unknown storage backend")
}
