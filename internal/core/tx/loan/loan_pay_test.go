package loan_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
	"github.com/LeJamon/goxrpl-lending/internal/core/lending"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/loan"
	lendtest "github.com/LeJamon/goxrpl-lending/internal/testing"
)

func TestLoanPayPreflight(t *testing.T) {
	cfg := tx.DefaultConfig()
	account := lendtest.NewAccount("borrower").ID

	tests := []struct {
		name     string
		modify   func(p *loan.LoanPay)
		expected tx.Result
	}{
		{"valid", func(p *loan.LoanPay) {}, tx.TesSUCCESS},
		{"full payment", func(p *loan.LoanPay) { p.Common.Flags = loan.TfLoanFullPayment }, tx.TesSUCCESS},
		{"overpayment", func(p *loan.LoanPay) { p.Common.Flags = loan.TfLoanOverpayment }, tx.TesSUCCESS},
		{"both payment flags", func(p *loan.LoanPay) {
			p.Common.Flags = loan.TfLoanOverpayment | loan.TfLoanFullPayment
		}, tx.TemINVALID_FLAG},
		{"unknown flag", func(p *loan.LoanPay) { p.Common.Flags = 0x00000001 }, tx.TemINVALID_FLAG},
		{"missing loan", func(p *loan.LoanPay) { p.LoanID = [32]byte{} }, tx.TemINVALID},
		{"zero amount", func(p *loan.LoanPay) { p.Amount.Value = number.Zero() }, tx.TemBAD_AMOUNT},
		{"negative amount", func(p *loan.LoanPay) { p.Amount.Value = number.FromInt(-5) }, tx.TemBAD_AMOUNT},
		{"drops out of range", func(p *loan.LoanPay) { p.Amount.Value = number.New(1, 19) }, tx.TemBAD_AMOUNT},
		{"issued amount out of range", func(p *loan.LoanPay) {
			p.Amount = tx.NewAmount(asset.IOU("USD", account), number.New(1, 96))
		}, tx.TemBAD_AMOUNT},
		{"largest issued amount", func(p *loan.LoanPay) {
			p.Amount = tx.NewAmount(asset.IOU("USD", account), number.New(9_999_999_999_999_999, 80))
		}, tx.TesSUCCESS},
		{"negative fee", func(p *loan.LoanPay) { p.Common.Fee = -1 }, tx.TemBAD_FEE},
		{"no account", func(p *loan.LoanPay) { p.Common.Account = [20]byte{} }, tx.TemINVALID_ACCOUNT_ID},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := loan.NewLoanPay(account, [32]byte{1}, tx.NewAmount(asset.XRP(), number.FromInt(100)))
			tc.modify(p)
			assert.Equal(t, tc.expected, p.Preflight(cfg))
		})
	}
}

func TestLoanPayRegular(t *testing.T) {
	f := newXRPFixture(t, defaultBrokerParams())
	s := f.loanSet("1000000000")
	s.LoanServiceFee = num("2000000")
	loanID := f.createLoan(t, s)
	env := f.env

	start := env.Loan(loanID).StartDate
	vaultBefore := env.Vault(f.vaultID)
	ownerBefore := env.Balance(f.owner.ID, f.a)
	due := f.paymentDue(t, loanID)

	var res lendtest.TxResult
	lendtest.AssertBalanceChange(t, env, f.borrower, f.a, due.Neg().String(), func() {
		res = f.pay(loanID, due, 0)
	})
	lendtest.RequireTxSuccess(t, res)
	assert.Equal(t, int64(10), res.Fee)

	e := res.Event()
	assert.Equal(t, "pay", e.Action)
	assert.Equal(t, string(lending.PathRegular), e.Path)
	assert.Equal(t, 1, e.Payments)
	assert.True(t, e.ValueChange.IsZero())
	assert.True(t, e.PrincipalPaid.Sign() > 0)
	assert.True(t, e.InterestPaid.Sign() > 0)
	assert.True(t, e.FeePaid.Gte(number.FromInt(2_000_000)))
	assert.True(t, due.Equal(e.PrincipalPaid.Add(e.InterestPaid).Add(e.FeePaid)))

	l := env.Loan(loanID)
	assert.Equal(t, testPayments-1, l.PaymentRemaining)
	assert.Equal(t, start+testInterval, l.PreviousPaymentDate)
	require.NotNil(t, l.NextPaymentDueDate)
	assert.Equal(t, start+2*testInterval, *l.NextPaymentDueDate)
	lendtest.RequireNumber(t, number.FromInt(1_000_000_000).Sub(e.PrincipalPaid).String(), l.PrincipalOutstanding)

	vault := env.Vault(f.vaultID)
	lendtest.RequireNumber(t,
		vaultBefore.AssetsAvailable.Add(e.PrincipalPaid).Add(e.InterestPaid).String(), vault.AssetsAvailable)
	assert.True(t, vaultBefore.AssetsTotal.Equal(vault.AssetsTotal))

	// Cover is above the minimum, so fees go straight to the owner.
	lendtest.RequireBalance(t, env, f.owner, f.a, ownerBefore.Add(e.FeePaid).String())
}

func TestLoanPayMultiplePayments(t *testing.T) {
	f := newXRPFixture(t, defaultBrokerParams())
	loanID := f.createLoan(t, f.loanSet("1000000000"))

	due := f.paymentDue(t, loanID)
	// A few drops of slack absorb rounding differences between payments.
	res := f.pay(loanID, due.MulInt(3).Add(number.FromInt(10)), 0)
	lendtest.RequireTxSuccess(t, res)

	assert.Equal(t, 3, res.Event().Payments)
	assert.Equal(t, testPayments-3, f.env.Loan(loanID).PaymentRemaining)
}

func TestLoanPayInsufficient(t *testing.T) {
	f := newXRPFixture(t, defaultBrokerParams())
	loanID := f.createLoan(t, f.loanSet("1000000000"))

	due := f.paymentDue(t, loanID)
	res := f.pay(loanID, due.Sub(number.FromInt(1)), 0)
	lendtest.RequireTxFail(t, res, tx.TecINSUFFICIENT_PAYMENT)
	assert.Equal(t, testPayments, f.env.Loan(loanID).PaymentRemaining)
}

func TestLoanPayToCompletion(t *testing.T) {
	f := newXRPFixture(t, defaultBrokerParams())
	initial := f.env.Vault(f.vaultID).AssetsAvailable
	loanID := f.createLoan(t, f.loanSet("1000000000"))

	for i := uint32(0); i < testPayments; i++ {
		lendtest.RequireTxSuccess(t, f.pay(loanID, f.paymentDue(t, loanID), 0))
	}

	l := f.env.Loan(loanID)
	assert.True(t, l.IsPaidOff())
	assert.Nil(t, l.NextPaymentDueDate)
	assert.True(t, l.TotalValueOutstanding.IsZero())
	assert.True(t, l.ManagementFeeOutstanding.IsZero())

	// The vault got its principal back with interest.
	assert.True(t, f.env.Vault(f.vaultID).AssetsAvailable.Gt(initial))

	lendtest.RequireTxFail(t, f.pay(loanID, number.FromInt(1_000_000), 0), tx.TecKILLED)
}

func TestLoanPayLate(t *testing.T) {
	f := newXRPFixture(t, defaultBrokerParams())
	s := f.loanSet("1000000000")
	s.LateInterestRate = u32(24000)
	s.LatePaymentFee = num("3000000")
	loanID := f.createLoan(t, s)
	env := f.env

	regular := f.paymentDue(t, loanID)
	env.SetTime(*env.Loan(loanID).NextPaymentDueDate + 100)
	due := f.paymentDue(t, loanID)
	assert.True(t, due.Gt(regular))

	totalBefore := env.Vault(f.vaultID).AssetsTotal
	res := f.pay(loanID, due.MulInt(2), 0)
	lendtest.RequireTxSuccess(t, res)

	// A late loan settles exactly one payment, however much is sent.
	e := res.Event()
	assert.Equal(t, string(lending.PathLate), e.Path)
	assert.Equal(t, 1, e.Payments)
	assert.True(t, e.ValueChange.Sign() > 0)
	assert.True(t, e.FeePaid.Gte(number.FromInt(3_000_000)))
	lendtest.RequireNumber(t, totalBefore.Add(e.ValueChange).String(), env.Vault(f.vaultID).AssetsTotal)
	assert.Equal(t, testPayments-1, env.Loan(loanID).PaymentRemaining)
}

func TestLoanPayLateInsufficient(t *testing.T) {
	f := newXRPFixture(t, defaultBrokerParams())
	s := f.loanSet("1000000000")
	s.LatePaymentFee = num("3000000")
	loanID := f.createLoan(t, s)

	regular := f.paymentDue(t, loanID)
	f.env.SetTime(*f.env.Loan(loanID).NextPaymentDueDate)
	lendtest.RequireTxFail(t, f.pay(loanID, regular, 0), tx.TecINSUFFICIENT_PAYMENT)
}

func TestLoanPayFull(t *testing.T) {
	f := newXRPFixture(t, defaultBrokerParams())
	s := f.loanSet("1000000000")
	s.ClosePaymentFee = num("4000000")
	s.CloseInterestRate = u32(3600)
	loanID := f.createLoan(t, s)
	env := f.env

	env.AdvanceTime(300 * time.Second) // halfway through the first period
	due := f.fullPaymentDue(t, loanID)

	lendtest.RequireTxFail(t, f.pay(loanID, due.Sub(number.FromInt(1)), loan.TfLoanFullPayment),
		tx.TecINSUFFICIENT_PAYMENT)

	res := f.pay(loanID, due, loan.TfLoanFullPayment)
	lendtest.RequireTxSuccess(t, res)
	assert.Equal(t, int64(10), res.Fee)

	e := res.Event()
	assert.Equal(t, string(lending.PathFull), e.Path)
	lendtest.RequireNumber(t, "1000000000", e.PrincipalPaid)
	assert.True(t, e.FeePaid.Gte(number.FromInt(4_000_000)))
	// The close interest penalty is new value for the vault.
	assert.True(t, e.ValueChange.Sign() > 0)

	l := env.Loan(loanID)
	assert.True(t, l.IsPaidOff())
	assert.Equal(t, uint32(0), l.PaymentRemaining)
	assert.Nil(t, l.NextPaymentDueDate)

	lendtest.RequireTxFail(t, f.pay(loanID, due, loan.TfLoanFullPayment), tx.TecKILLED)
}

func TestLoanPayOverpayment(t *testing.T) {
	f := newXRPFixture(t, defaultBrokerParams())
	s := f.loanSet("1000000000")
	s.Common.Flags = loan.TfLoanOverpayment
	s.OverpaymentFee = u32(500)
	s.OverpaymentInterestRate = u32(1000)
	loanID := f.createLoan(t, s)
	env := f.env

	due := f.paymentDue(t, loanID)
	amount := due.MulInt(3).DivInt(2)

	before := env.Balance(f.borrower.ID, f.a)
	res := f.pay(loanID, amount, loan.TfLoanOverpayment)
	lendtest.RequireTxSuccess(t, res)
	paid := before.Sub(env.Balance(f.borrower.ID, f.a))

	e := res.Event()
	assert.Equal(t, 1, e.Payments)
	assert.True(t, paid.Equal(e.PrincipalPaid.Add(e.InterestPaid).Add(e.FeePaid)))
	assert.True(t, paid.Gt(due), "the remainder should have been applied")
	assert.True(t, paid.Lte(amount))
	assert.Equal(t, testPayments-1, env.Loan(loanID).PaymentRemaining)
}

func TestLoanPayOverpaymentNotAllowed(t *testing.T) {
	f := newXRPFixture(t, defaultBrokerParams())
	loanID := f.createLoan(t, f.loanSet("1000000000"))
	due := f.paymentDue(t, loanID)

	lendtest.RequireTxFail(t, f.pay(loanID, due.MulInt(2), loan.TfLoanOverpayment), tx.TemINVALID_FLAG)

	// Without the flag the extra is simply not taken.
	before := f.env.Balance(f.borrower.ID, f.a)
	lendtest.RequireTxSuccess(t, f.pay(loanID, due.Add(number.FromInt(1000)), 0))
	lendtest.RequireNumber(t, before.Sub(due).String(), f.env.Balance(f.borrower.ID, f.a))
}

func TestLoanPayPreclaim(t *testing.T) {
	f := newXRPFixture(t, defaultBrokerParams())
	loanID := f.createLoan(t, f.loanSet("1000000000"))
	due := f.paymentDue(t, loanID)

	t.Run("no such loan", func(t *testing.T) {
		lendtest.RequireTxFail(t, f.pay([32]byte{0xCD}, due, 0), tx.TecNO_ENTRY)
	})

	t.Run("not the borrower", func(t *testing.T) {
		p := loan.NewLoanPay(f.owner.ID, loanID, tx.NewAmount(f.a, due))
		lendtest.RequireTxFail(t, f.env.Submit(p), tx.TecNO_PERMISSION)
	})

	t.Run("wrong asset", func(t *testing.T) {
		usd := asset.IOU("USD", lendtest.NewAccount("gateway").ID)
		p := loan.NewLoanPay(f.borrower.ID, loanID, tx.NewAmount(usd, number.FromInt(100)))
		lendtest.RequireTxFail(t, f.env.Submit(p), tx.TecWRONG_ASSET)
	})

	t.Run("more than the borrower holds", func(t *testing.T) {
		held := f.env.Balance(f.borrower.ID, f.a)
		lendtest.RequireTxFail(t, f.pay(loanID, held.Add(number.FromInt(1)), 0), tx.TecINSUFFICIENT_FUNDS)
	})
}

func TestLoanPayFrozen(t *testing.T) {
	f, _ := newIOUFixture(t, defaultBrokerParams())
	loanID := f.createLoan(t, f.loanSet("1000"))
	due := f.paymentDue(t, loanID)

	f.env.Freeze(f.borrower, f.a, entry.FreezeNormal)
	lendtest.RequireTxFail(t, f.pay(loanID, due, 0), tx.TecFROZEN)

	f.env.Freeze(f.borrower, f.a, entry.FreezeNone)
	lendtest.RequireTxSuccess(t, f.pay(loanID, due, 0))
}

func TestLoanPayIssued(t *testing.T) {
	f, _ := newIOUFixture(t, defaultBrokerParams())
	loanID := f.createLoan(t, f.loanSet("1000"))

	for i := uint32(0); i < testPayments; i++ {
		lendtest.RequireTxSuccess(t, f.pay(loanID, f.paymentDue(t, loanID), 0))
	}
	l := f.env.Loan(loanID)
	assert.True(t, l.IsPaidOff())
	assert.True(t, l.PrincipalOutstanding.IsZero())
}

func TestLoanPayFeesToCoverWhenUndercollateralized(t *testing.T) {
	f := newXRPFixture(t, defaultBrokerParams())
	s := f.loanSet("1000000000")
	s.LoanServiceFee = num("2000000")
	loanID := f.createLoan(t, s)
	env := f.env

	// Drain the cover below its minimum.
	env.Modify(func(v tx.ApplyView) error {
		k := keylet.LoanBrokerByID(f.brokerID)
		b, err := tx.ReadLoanBroker(v, k)
		if err != nil {
			return err
		}
		b.CoverAvailable = number.Zero()
		return v.Update(k, b)
	})

	b := env.Broker(f.brokerID)
	ownerBefore := env.Balance(f.owner.ID, f.a)
	pseudoBefore := env.Balance(b.Account, f.a)

	res := f.pay(loanID, f.paymentDue(t, loanID), 0)
	lendtest.RequireTxSuccess(t, res)
	fee := res.Event().FeePaid

	lendtest.RequireNumber(t, fee.String(), env.Broker(f.brokerID).CoverAvailable)
	lendtest.RequireNumber(t, pseudoBefore.Add(fee).String(), env.Balance(b.Account, f.a))
	lendtest.RequireBalance(t, env, f.owner, f.a, ownerBefore.String())
}

func TestLoanPayUnimpairs(t *testing.T) {
	f := newXRPFixture(t, defaultBrokerParams())
	loanID := f.createLoan(t, f.loanSet("1000000000"))
	env := f.env

	lendtest.RequireTxSuccess(t, env.Submit(loan.NewLoanManage(f.owner.ID, loanID, loan.TfLoanImpair)))
	require.True(t, env.Vault(f.vaultID).LossUnrealized.Sign() > 0)

	res := f.pay(loanID, f.paymentDue(t, loanID), 0)
	lendtest.RequireTxSuccess(t, res)

	assert.False(t, env.Loan(loanID).IsFlag(entry.LsfLoanImpaired))
	assert.True(t, env.Vault(f.vaultID).LossUnrealized.IsZero())
}

func TestLoanPayBaseFee(t *testing.T) {
	f := newXRPFixture(t, defaultBrokerParams())
	loanID := f.createLoan(t, f.loanSet("1000000000"))
	due := f.paymentDue(t, loanID)
	cfg := f.env.Config()

	// The estimate divides by the periodic payment rounded up, which can
	// sit above the tracked amount due.
	l := f.env.Loan(loanID)
	regular := asset.RoundToAsset(f.a, l.PeriodicPayment, int(l.LoanScale), number.Upward).Add(l.LoanServiceFee)
	require.True(t, regular.Gte(due))

	view, err := f.env.Store().Sandbox(f.env.Now())
	require.NoError(t, err)
	defer view.Discard()

	tests := []struct {
		name     string
		amount   number.Number
		flags    uint32
		loanID   [32]byte
		expected int64
	}{
		{"one payment", regular, 0, loanID, 10},
		{"five payments", regular.MulInt(5), 0, loanID, 10},
		{"seven payments", regular.MulInt(7), 0, loanID, 20},
		{"just short of six payments", regular.MulInt(6).Sub(number.FromInt(1)), 0, loanID, 10},
		{"just over five payments", regular.MulInt(5).Add(number.FromInt(1)), 0, loanID, 10},
		{"overpayment rounds up", regular.MulInt(5).Add(number.FromInt(1)), loan.TfLoanOverpayment, loanID, 20},
		{"full payment", regular.MulInt(50), loan.TfLoanFullPayment, loanID, 10},
		{"missing loan", regular.MulInt(50), 0, [32]byte{0xEE}, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := loan.NewLoanPay(f.borrower.ID, tc.loanID, tx.NewAmount(f.a, tc.amount))
			p.Common.Flags = tc.flags
			assert.Equal(t, tc.expected, p.CalculateBaseFee(view, cfg))
		})
	}

	res := f.pay(loanID, due.MulInt(7), 0)
	lendtest.RequireTxSuccess(t, res)
	assert.Equal(t, int64(20), res.Fee)
	assert.Equal(t, 7, res.Event().Payments)
}

func TestLoanPayConservesFunds(t *testing.T) {
	drainCover := func(f *lendingFixture) {
		f.env.Modify(func(v tx.ApplyView) error {
			k := keylet.LoanBrokerByID(f.brokerID)
			b, err := tx.ReadLoanBroker(v, k)
			if err != nil {
				return err
			}
			b.CoverAvailable = number.Zero()
			return v.Update(k, b)
		})
	}

	tests := []struct {
		name   string
		issued bool
		terms  func(s *loan.LoanSet)
		// prepare moves the ledger to the payment and returns amount and flags.
		prepare func(t *testing.T, f *lendingFixture, loanID [32]byte) (number.Number, uint32)
	}{
		{
			name:  "regular",
			terms: func(s *loan.LoanSet) { s.LoanServiceFee = num("2000000") },
			prepare: func(t *testing.T, f *lendingFixture, loanID [32]byte) (number.Number, uint32) {
				return f.paymentDue(t, loanID), 0
			},
		},
		{
			name:  "several periods",
			terms: func(s *loan.LoanSet) { s.LoanServiceFee = num("2000000") },
			prepare: func(t *testing.T, f *lendingFixture, loanID [32]byte) (number.Number, uint32) {
				return f.paymentDue(t, loanID).MulInt(3).Add(number.FromInt(12345)), 0
			},
		},
		{
			name: "late",
			terms: func(s *loan.LoanSet) {
				s.LateInterestRate = u32(24000)
				s.LatePaymentFee = num("3000000")
			},
			prepare: func(t *testing.T, f *lendingFixture, loanID [32]byte) (number.Number, uint32) {
				f.env.SetTime(*f.env.Loan(loanID).NextPaymentDueDate + 100)
				return f.paymentDue(t, loanID), 0
			},
		},
		{
			name: "overpayment",
			terms: func(s *loan.LoanSet) {
				s.Common.Flags = loan.TfLoanOverpayment
				s.OverpaymentFee = u32(500)
				s.OverpaymentInterestRate = u32(1000)
			},
			prepare: func(t *testing.T, f *lendingFixture, loanID [32]byte) (number.Number, uint32) {
				return f.paymentDue(t, loanID).MulInt(3).DivInt(2), loan.TfLoanOverpayment
			},
		},
		{
			name: "full payment",
			terms: func(s *loan.LoanSet) {
				s.ClosePaymentFee = num("4000000")
				s.CloseInterestRate = u32(3600)
			},
			prepare: func(t *testing.T, f *lendingFixture, loanID [32]byte) (number.Number, uint32) {
				f.env.AdvanceTime(300 * time.Second)
				return f.fullPaymentDue(t, loanID), loan.TfLoanFullPayment
			},
		},
		{
			name:  "fees to cover",
			terms: func(s *loan.LoanSet) { s.LoanServiceFee = num("2000000") },
			prepare: func(t *testing.T, f *lendingFixture, loanID [32]byte) (number.Number, uint32) {
				drainCover(f)
				return f.paymentDue(t, loanID), 0
			},
		},
		{
			name:   "issued regular",
			issued: true,
			terms:  func(s *loan.LoanSet) { s.LoanServiceFee = num("2") },
			prepare: func(t *testing.T, f *lendingFixture, loanID [32]byte) (number.Number, uint32) {
				return f.paymentDue(t, loanID), 0
			},
		},
		{
			name:   "issued full payment",
			issued: true,
			terms:  func(s *loan.LoanSet) { s.ClosePaymentFee = num("4") },
			prepare: func(t *testing.T, f *lendingFixture, loanID [32]byte) (number.Number, uint32) {
				f.env.AdvanceTime(300 * time.Second)
				return f.fullPaymentDue(t, loanID), loan.TfLoanFullPayment
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var f *lendingFixture
			principal := "1000000000"
			if tc.issued {
				f, _ = newIOUFixture(t, defaultBrokerParams())
				principal = "1000"
			} else {
				f = newXRPFixture(t, defaultBrokerParams())
			}
			s := f.loanSet(principal)
			tc.terms(s)
			loanID := f.createLoan(t, s)
			amount, flags := tc.prepare(t, f, loanID)

			env := f.env
			b := env.Broker(f.brokerID)
			v := env.Vault(f.vaultID)
			balances := func() (borrower, vault, owner, cover number.Number) {
				return env.Balance(f.borrower.ID, f.a), env.Balance(v.Account, f.a),
					env.Balance(f.owner.ID, f.a), env.Balance(b.Account, f.a)
			}
			borrower0, vault0, owner0, cover0 := balances()

			res := f.pay(loanID, amount, flags)
			lendtest.RequireTxSuccess(t, res)
			e := res.Event()

			borrower1, vault1, owner1, cover1 := balances()
			sent := borrower0.Sub(borrower1)
			toVault := vault1.Sub(vault0)
			toOwner := owner1.Sub(owner0)
			toCover := cover1.Sub(cover0)

			// Every unit leaving the borrower lands with the vault, the
			// broker owner or the broker's cover.
			assert.True(t, sent.Equal(toVault.Add(toOwner).Add(toCover)),
				"sent %s, vault %s, owner %s, cover %s", sent, toVault, toOwner, toCover)
			assert.True(t, sent.Lte(amount), "sent %s of %s", sent, amount)
			assert.True(t, sent.Sign() > 0)

			assert.True(t, e.PrincipalPaid.Sign() >= 0)
			assert.True(t, e.InterestPaid.Sign() >= 0)
			assert.True(t, e.FeePaid.Sign() >= 0)
			assert.True(t, toOwner.Add(toCover).Equal(e.FeePaid), "fee %s", e.FeePaid)
			assert.True(t, toVault.Lte(e.PrincipalPaid.Add(e.InterestPaid)))
			if !tc.issued {
				assert.True(t, toVault.Equal(e.PrincipalPaid.Add(e.InterestPaid)), "vault %s", toVault)
			}

			// The records follow the balances.
			vAfter := env.Vault(f.vaultID)
			bAfter := env.Broker(f.brokerID)
			lendtest.RequireNumber(t, v.AssetsAvailable.Add(toVault).String(), vAfter.AssetsAvailable)
			lendtest.RequireNumber(t, v.AssetsTotal.Add(e.ValueChange).String(), vAfter.AssetsTotal)
			lendtest.RequireNumber(t, b.CoverAvailable.Add(toCover).String(), bAfter.CoverAvailable)
			assert.True(t, vAfter.AssetsAvailable.Lte(vAfter.AssetsTotal))

			l := env.Loan(loanID)
			assert.True(t, l.PrincipalOutstanding.Lte(l.TotalValueOutstanding))
		})
	}
}
