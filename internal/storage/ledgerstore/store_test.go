package ledgerstore

import (
	"context"
	"testing"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/storage/database/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = [20]byte{0xA1}
	usd   = asset.IOU("USD", [20]byte{0x15})
)

func newStore(t *testing.T, c Compression) *Store {
	t.Helper()
	s, err := New(context.Background(), memory.NewDB(), Options{CacheSize: 8, Compression: c})
	require.NoError(t, err)
	return s
}

func sampleLoan() *entries.Loan {
	due := uint32(1600)
	l := &entries.Loan{
		LoanSequence:             1,
		LoanBrokerID:             [32]byte{0xB0},
		Borrower:                 alice,
		StartDate:                1000,
		PaymentInterval:          600,
		GracePeriod:              60,
		NextPaymentDueDate:       &due,
		PaymentRemaining:         12,
		LoanScale:                -10,
		PrincipalOutstanding:     number.MustParse("1000"),
		TotalValueOutstanding:    number.MustParse("1000.0148"),
		ManagementFeeOutstanding: number.MustParse("0.0014"),
		PeriodicPayment:          number.MustParse("83.33457001162225"),
		InterestRate:             12000,
	}
	l.SetFlag(entry.LsfLoanOverpayment)
	return l
}

func TestRecordCodec(t *testing.T) {
	acct := entries.NewAccountRoot(alice)
	acct.Credit(usd, number.MustParse("12.5"))
	acct.Credit(asset.XRP(), number.FromInt(1_000_000))
	acct.SetFreeze(usd, entry.FreezeDeep)

	vault := &entries.Vault{
		Owner: alice, Account: [20]byte{0xCC}, Asset: usd,
		AssetsTotal: number.MustParse("100"), AssetsAvailable: number.MustParse("40"),
		WithdrawalPolicy: entries.WithdrawalPolicyFirstComeFirstServe,
	}

	tests := []struct {
		name  string
		entry entry.Entry
	}{
		{"loan", sampleLoan()},
		{"account", acct},
		{"vault", vault},
		{"broker", &entries.LoanBroker{Owner: alice, Account: [20]byte{0xBB}, VaultID: [32]byte{1},
			DebtTotal: number.MustParse("1000.0134"), CoverRateMinimum: 1000, ManagementFeeRate: 100}},
	}
	for _, tt := range tests {
		for _, c := range []Compression{CompressionNone, CompressionLZ4} {
			t.Run(tt.name+"/"+string(c), func(t *testing.T) {
				raw, err := encodeRecord(tt.entry, c)
				require.NoError(t, err)
				got, err := decodeRecord(raw)
				require.NoError(t, err)
				assert.Equal(t, tt.entry, got)
			})
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decodeRecord([]byte{0})
	assert.ErrorIs(t, err, errShortRecord)

	_, err = decodeRecord([]byte{0, 0xFF, 0xFF})
	assert.ErrorIs(t, err, errUnknownType)
}

func TestSandboxCommit(t *testing.T) {
	s := newStore(t, CompressionLZ4)
	k := keylet.LoanByID([32]byte{0x42})
	before := s.ParentHash()

	sb, err := s.Sandbox(1234)
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), sb.ParentCloseTime())

	require.NoError(t, sb.Insert(k, sampleLoan()))
	assert.ErrorIs(t, sb.Insert(k, sampleLoan()), tx.ErrEntryExists)

	_, err = s.Read(context.Background(), k)
	assert.ErrorIs(t, err, tx.ErrEntryNotFound, "nothing is visible before commit")

	require.NoError(t, sb.Commit())
	assert.NotEqual(t, before, s.ParentHash())

	got, err := s.Read(context.Background(), k)
	require.NoError(t, err)
	assert.Equal(t, sampleLoan(), got)

	_, err = s.Read(context.Background(), keylet.LoanBrokerByID([32]byte{0x42}))
	assert.ErrorIs(t, err, tx.ErrWrongEntryType)
}

func TestSandboxDiscard(t *testing.T) {
	s := newStore(t, CompressionNone)
	k := keylet.Account(alice)

	sb, err := s.Sandbox(1)
	require.NoError(t, err)
	require.NoError(t, sb.Insert(k, entries.NewAccountRoot(alice)))
	sb.Discard()

	sb, err = s.Sandbox(2)
	require.NoError(t, err)
	exists, err := sb.Exists(k)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.ErrorIs(t, sb.Update(k, entries.NewAccountRoot(alice)), tx.ErrEntryNotFound)
	assert.ErrorIs(t, sb.Erase(k), tx.ErrEntryNotFound)
}

func TestSandboxEraseAndReadBack(t *testing.T) {
	s := newStore(t, CompressionLZ4)
	k := keylet.Account(alice)

	sb, _ := s.Sandbox(1)
	require.NoError(t, sb.Insert(k, entries.NewAccountRoot(alice)))
	require.NoError(t, sb.Commit())

	sb, _ = s.Sandbox(2)
	acct, err := tx.ReadAccount(sb, alice)
	require.NoError(t, err)
	acct.OwnerCount = 3
	require.NoError(t, sb.Update(k, acct))

	again, err := tx.ReadAccount(sb, alice)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), again.OwnerCount)

	require.NoError(t, sb.Erase(k))
	_, err = sb.Read(k)
	assert.ErrorIs(t, err, tx.ErrEntryNotFound)
	require.NoError(t, sb.Commit())

	_, err = s.Read(context.Background(), k)
	assert.ErrorIs(t, err, tx.ErrEntryNotFound)
}

func TestCommitValidatesEntries(t *testing.T) {
	s := newStore(t, CompressionLZ4)
	bad := sampleLoan()
	bad.PaymentRemaining = 0 // due date still set

	sb, _ := s.Sandbox(1)
	require.NoError(t, sb.Insert(keylet.LoanByID([32]byte{1}), bad))
	assert.ErrorIs(t, sb.Commit(), entry.ErrInvalidEntry)

	exists, err := s.Sandbox(1)
	require.NoError(t, err)
	ok, err := exists.Exists(keylet.LoanByID([32]byte{1}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParentHashSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB()
	s, err := New(ctx, db, Options{})
	require.NoError(t, err)

	sb, _ := s.Sandbox(7)
	require.NoError(t, sb.Insert(keylet.Account(alice), entries.NewAccountRoot(alice)))
	require.NoError(t, sb.Commit())

	reopened, err := New(ctx, db, Options{})
	require.NoError(t, err)
	assert.Equal(t, s.ParentHash(), reopened.ParentHash())

	var keys [][32]byte
	require.NoError(t, reopened.ForEach(ctx, func(key [32]byte, e entry.Entry) error {
		keys = append(keys, key)
		assert.Equal(t, entry.TypeAccountRoot, e.Type())
		return nil
	}))
	assert.Equal(t, [][32]byte{keylet.Account(alice).Key}, keys)
}

func TestNewManager(t *testing.T) {
	for _, b := range Backends {
		t.Run(b, func(t *testing.T) {
			m, err := NewManager(b, t.TempDir(), 0)
			require.NoError(t, err)
			defer m.Close()

			db, err := m.OpenDB("ledger")
			require.NoError(t, err)
			s, err := New(context.Background(), db, Options{})
			require.NoError(t, err)

			sb, _ := s.Sandbox(1)
			require.NoError(t, sb.Insert(keylet.Account(alice), entries.NewAccountRoot(alice)))
			require.NoError(t, sb.Commit())
		})
	}

	_, err := NewManager("rocksdb", t.TempDir(), 0)
	assert.Error(t, err)
}
