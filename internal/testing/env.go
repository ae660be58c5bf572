package testing

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/setup"
	"github.com/LeJamon/goxrpl-lending/internal/storage/database/memory"
	"github.com/LeJamon/goxrpl-lending/internal/storage/ledgerstore"
)

// TestEnv is a ledger for transaction tests. It keeps state in memory,
// applies transactions through the real engine and reads entries back.
type TestEnv struct {
	t      *testing.T
	store  *ledgerstore.Store
	engine *tx.Engine
	clock  *ManualClock
}

// NewTestEnv creates an empty ledger with the default configuration.
func NewTestEnv(t *testing.T, observers ...tx.Observer) *TestEnv {
	t.Helper()
	return NewTestEnvWithConfig(t, tx.DefaultConfig(), observers...)
}

// NewTestEnvWithConfig creates an empty ledger running with cfg.
// Set LENDING_TEST_LOG to see the engine's logs.
func NewTestEnvWithConfig(t *testing.T, cfg tx.Config, observers ...tx.Observer) *TestEnv {
	t.Helper()
	store, err := ledgerstore.New(context.Background(), memory.NewDB(), ledgerstore.Options{})
	if err != nil {
		t.Fatalf("Failed to create ledger store: %v", err)
	}

	var logger *slog.Logger
	if os.Getenv("LENDING_TEST_LOG") != "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return &TestEnv{
		t:      t,
		store:  store,
		engine: tx.NewEngine(store, cfg, logger, observers...),
		clock:  NewManualClock(),
	}
}

// Modify runs fn in a sandbox at the current time and commits it.
func (e *TestEnv) Modify(fn func(v tx.ApplyView) error) {
	e.t.Helper()
	sb, err := e.store.Sandbox(e.Now())
	if err != nil {
		e.t.Fatalf("Failed to open sandbox: %v", err)
	}
	defer sb.Discard()
	if err := fn(sb); err != nil {
		e.t.Fatalf("Failed to modify ledger: %v", err)
	}
	if err := sb.Commit(); err != nil {
		e.t.Fatalf("Failed to commit: %v", err)
	}
}

// view returns a read-only snapshot for lookups.
func (e *TestEnv) view() tx.Sandbox {
	sb, err := e.store.Sandbox(e.Now())
	if err != nil {
		e.t.Fatalf("Failed to open sandbox: %v", err)
	}
	return sb
}

// Fund credits each account with amount of a.
func (e *TestEnv) Fund(a asset.Asset, amount string, accounts ...*Account) {
	e.t.Helper()
	v := number.MustParse(amount)
	e.Modify(func(view tx.ApplyView) error {
		for _, acc := range accounts {
			if err := setup.FundAccount(view, acc.ID, a, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateVault creates a vault of a owned by owner, funded by depositor.
func (e *TestEnv) CreateVault(owner *Account, a asset.Asset, depositor *Account, deposit string) [32]byte {
	e.t.Helper()
	var id [32]byte
	e.Modify(func(v tx.ApplyView) error {
		var err error
		if id, err = setup.CreateVault(v, owner.ID, a, e.store.ParentHash()); err != nil {
			return err
		}
		return setup.DepositVault(v, id, depositor.ID, number.MustParse(deposit))
	})
	return id
}

// CreateBroker creates a loan broker over vaultID with cover deposited by
// owner.
func (e *TestEnv) CreateBroker(owner *Account, vaultID [32]byte, p setup.BrokerParams, cover string) [32]byte {
	e.t.Helper()
	var id [32]byte
	e.Modify(func(v tx.ApplyView) error {
		var err error
		if id, err = setup.CreateBroker(v, owner.ID, vaultID, p, e.store.ParentHash()); err != nil {
			return err
		}
		return setup.DepositCover(v, id, owner.ID, number.MustParse(cover))
	})
	return id
}

// Freeze sets the freeze level of acc's holding of a.
func (e *TestEnv) Freeze(acc *Account, a asset.Asset, level uint8) {
	e.t.Helper()
	e.Modify(func(v tx.ApplyView) error {
		return setup.SetFreeze(v, acc.ID, a, level)
	})
}

// GlobalFreeze freezes every asset issuer has issued.
func (e *TestEnv) GlobalFreeze(issuer *Account, on bool) {
	e.t.Helper()
	e.Modify(func(v tx.ApplyView) error {
		return setup.SetGlobalFreeze(v, issuer.ID, on)
	})
}

// Submit applies the transaction at the current time.
func (e *TestEnv) Submit(t tx.Transaction) TxResult {
	e.t.Helper()
	res, err := e.engine.Apply(t, e.Now())
	if err != nil {
		e.t.Fatalf("Failed to apply %s: %v", t.TxType(), err)
	}
	return resultOf(res)
}

// Loan reads a loan. It fails the test if the loan does not exist.
func (e *TestEnv) Loan(id [32]byte) *entries.Loan {
	e.t.Helper()
	l, err := tx.ReadLoan(e.view(), keylet.LoanByID(id))
	if err != nil {
		e.t.Fatalf("Failed to read loan: %v", err)
	}
	return l
}

// LoanID returns the key of the broker's loan with sequence seq.
func (e *TestEnv) LoanID(brokerID [32]byte, seq uint32) [32]byte {
	return keylet.Loan(brokerID, seq).Key
}

func (e *TestEnv) Broker(id [32]byte) *entries.LoanBroker {
	e.t.Helper()
	b, err := tx.ReadLoanBroker(e.view(), keylet.LoanBrokerByID(id))
	if err != nil {
		e.t.Fatalf("Failed to read loan broker: %v", err)
	}
	return b
}

func (e *TestEnv) Vault(id [32]byte) *entries.Vault {
	e.t.Helper()
	v, err := tx.ReadVault(e.view(), keylet.VaultByID(id))
	if err != nil {
		e.t.Fatalf("Failed to read vault: %v", err)
	}
	return v
}

// Balance returns what id holds of a. Unknown accounts hold nothing.
func (e *TestEnv) Balance(id [20]byte, a asset.Asset) number.Number {
	e.t.Helper()
	held, _, err := tx.AccountHolds(e.view(), id, a)
	if err != nil {
		e.t.Fatalf("Failed to read balance: %v", err)
	}
	return held
}

// AccountRoot reads the account root of acc.
func (e *TestEnv) AccountRoot(acc *Account) *entries.AccountRoot {
	e.t.Helper()
	root, err := tx.ReadAccount(e.view(), acc.ID)
	if err != nil {
		e.t.Fatalf("Failed to read account %s: %v", acc.Name, err)
	}
	return root
}

// Now is the close time transactions see.
func (e *TestEnv) Now() uint32 {
	return e.clock.CloseTime()
}

// AdvanceTime moves the clock forward.
func (e *TestEnv) AdvanceTime(d time.Duration) {
	e.clock.Advance(d)
}

// SetTime moves the clock to a close time.
func (e *TestEnv) SetTime(closeTime uint32) {
	e.clock.SetCloseTime(closeTime)
}

func (e *TestEnv) Store() *ledgerstore.Store {
	return e.store
}

func (e *TestEnv) Config() tx.Config {
	return e.engine.Config()
}
