package loan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/lending"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/loan"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/setup"
	lendtest "github.com/LeJamon/goxrpl-lending/internal/testing"
)

const (
	testInterval uint32 = 600
	testGrace    uint32 = 120
	testPayments uint32 = 12
	testRate     uint32 = 12000 // 12%
)

// lendingFixture is a vault with one broker on top of it and a funded
// borrower.
type lendingFixture struct {
	env      *lendtest.TestEnv
	owner    *lendtest.Account
	borrower *lendtest.Account
	a        asset.Asset
	vaultID  [32]byte
	brokerID [32]byte
}

func defaultBrokerParams() setup.BrokerParams {
	return setup.BrokerParams{
		ManagementFeeRate:    100,
		CoverRateMinimum:     10000,
		CoverRateLiquidation: 50000,
	}
}

// newXRPFixture funds a 50,000 XRP vault with 500 XRP of first-loss cover.
func newXRPFixture(t *testing.T, p setup.BrokerParams, observers ...tx.Observer) *lendingFixture {
	t.Helper()
	env := lendtest.NewTestEnv(t, observers...)
	owner := lendtest.NewAccount("owner")
	borrower := lendtest.NewAccount("borrower")
	a := asset.XRP()

	env.Fund(a, "100000000000", owner)
	env.Fund(a, "10000000000", borrower)
	vaultID := env.CreateVault(owner, a, owner, "50000000000")
	brokerID := env.CreateBroker(owner, vaultID, p, "500000000")

	return &lendingFixture{env: env, owner: owner, borrower: borrower, a: a, vaultID: vaultID, brokerID: brokerID}
}

// newIOUFixture is newXRPFixture for a USD issued by gateway.
func newIOUFixture(t *testing.T, p setup.BrokerParams) (*lendingFixture, *lendtest.Account) {
	t.Helper()
	env := lendtest.NewTestEnv(t)
	gw := lendtest.NewAccount("gateway")
	owner := lendtest.NewAccount("owner")
	borrower := lendtest.NewAccount("borrower")
	a := asset.IOU("USD", gw.ID)

	env.Fund(asset.XRP(), "1000000000", gw)
	env.Fund(a, "100000", owner)
	env.Fund(a, "10000", borrower)
	vaultID := env.CreateVault(owner, a, owner, "50000")
	brokerID := env.CreateBroker(owner, vaultID, p, "500")

	return &lendingFixture{env: env, owner: owner, borrower: borrower, a: a, vaultID: vaultID, brokerID: brokerID}, gw
}

func u32(v uint32) *uint32 { return &v }

func num(s string) *number.Number {
	n := number.MustParse(s)
	return &n
}

// loanSet is a 12 payment loan at 12% with the borrower submitting.
func (f *lendingFixture) loanSet(principal string) *loan.LoanSet {
	s := loan.NewLoanSet(f.borrower.ID, f.brokerID, number.MustParse(principal))
	s.InterestRate = u32(testRate)
	s.PaymentTotal = u32(testPayments)
	s.PaymentInterval = u32(testInterval)
	s.GracePeriod = u32(testGrace)
	return s
}

// createLoan originates a loan and returns its ID.
func (f *lendingFixture) createLoan(t *testing.T, s *loan.LoanSet) [32]byte {
	t.Helper()
	seq := f.env.Broker(f.brokerID).LoanSequence
	lendtest.RequireTxSuccess(t, f.env.Submit(s))
	return f.env.LoanID(f.brokerID, seq)
}

// paymentDue is what the next payment costs right now.
func (f *lendingFixture) paymentDue(t *testing.T, loanID [32]byte) number.Number {
	t.Helper()
	l := f.env.Loan(loanID)
	due, res := lending.NewEngine(0, nil).PaymentDue(f.a, f.env.Now(), l, f.env.Broker(f.brokerID))
	require.Equal(t, tx.TesSUCCESS, res)
	return due
}

func (f *lendingFixture) fullPaymentDue(t *testing.T, loanID [32]byte) number.Number {
	t.Helper()
	l := f.env.Loan(loanID)
	due, res := lending.NewEngine(0, nil).FullPaymentDue(f.a, f.env.Now(), l, f.env.Broker(f.brokerID))
	require.Equal(t, tx.TesSUCCESS, res)
	return due
}

func (f *lendingFixture) pay(loanID [32]byte, amount number.Number, flags uint32) lendtest.TxResult {
	p := loan.NewLoanPay(f.borrower.ID, loanID, tx.NewAmount(f.a, amount))
	p.Common.Flags = flags
	return f.env.Submit(p)
}
