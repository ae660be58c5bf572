// Package testing provides a ledger environment for lending transaction
// tests, in the manner of rippled's test::jtx framework.
//
// # Basic Usage
//
//	func TestLoan(t *testing.T) {
//	    env := lendtest.NewTestEnv(t)
//	    owner := lendtest.NewAccount("owner")
//	    borrower := lendtest.NewAccount("borrower")
//
//	    env.Fund(asset.XRP(), "100000000000", owner, borrower)
//	    vaultID := env.CreateVault(owner, asset.XRP(), owner, "50000000000")
//	    brokerID := env.CreateBroker(owner, vaultID, setup.BrokerParams{}, "0")
//
//	    set := loan.NewLoanSet(borrower.ID, brokerID, number.FromInt(1_000_000_000))
//	    lendtest.RequireTxSuccess(t, env.Submit(set))
//	}
//
// The clock starts at 2025-01-01 and only moves when AdvanceTime or
// SetTime is called.
package testing
