package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goxrpl-lending/internal/config"
	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
	"github.com/LeJamon/goxrpl-lending/internal/core/lending"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/loan"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/setup"
	"github.com/LeJamon/goxrpl-lending/internal/di"
)

var simFullAfter uint32

// simStart is the close time every simulated loan starts at.
const simStart uint32 = 800_000_000

type scenario struct {
	name  string
	asset asset.Asset
	// unit scales the amounts below; XRP amounts are in drops.
	unit int64
}

type scenarioReport struct {
	name      string
	loanID    [32]byte
	payments  int
	paid      number.Number
	principal number.Number
	interest  number.Number
	fee       number.Number
	final     tx.Result
	remaining uint32
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a loan from origination to payoff for XRP, IOU and MPT",
	Long: `Originate a loan of 1000 XRP, 1000 USD and 10^9 MPT units at 12% over
12 payments of 600 seconds, each on its own in-memory ledger, and repay it
on schedule. With --full-after N the loan is paid off after N payments.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reports, err := simulate(cmd.Context(), simFullAfter, logger)
		if err != nil {
			return err
		}
		return printReports(cmd.OutOrStdout(), reports)
	},
}

func scenarios() []scenario {
	gw := namedAccount("gateway")
	var mpt [24]byte
	mpt[3] = 1
	copy(mpt[4:], gw[:])
	return []scenario{
		{name: "XRP", asset: asset.XRP(), unit: 1_000_000},
		{name: "IOU", asset: asset.IOU("USD", gw), unit: 1},
		// MPT amounts are integral, so the loan needs enough units for the
		// interest to survive rounding at scale 0.
		{name: "MPT", asset: asset.MPT(mpt), unit: 1_000_000},
	}
}

// simulate runs every scenario concurrently.
func simulate(ctx context.Context, fullAfter uint32, log *slog.Logger) ([]scenarioReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	all := scenarios()
	reports := make([]scenarioReport, len(all))

	g, ctx := errgroup.WithContext(ctx)
	for i, s := range all {
		g.Go(func() error {
			r, err := runScenario(ctx, s, fullAfter, log.With("scenario", s.name))
			if err != nil {
				return fmt.Errorf("%s: %w", s.name, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func runScenario(ctx context.Context, s scenario, fullAfter uint32, log *slog.Logger) (scenarioReport, error) {
	report := scenarioReport{name: s.name}

	c := config.Defaults()
	c.Storage.Backend = config.BackendMemory
	c.History.Driver = config.HistoryNone
	n, err := di.Open(c, log)
	if err != nil {
		return report, err
	}
	defer n.Close()

	owner := namedAccount("owner")
	borrower := namedAccount("borrower")
	units := func(v int64) number.Number { return number.FromInt(v * s.unit) }

	var vaultID, brokerID [32]byte
	sb, err := n.Ledger.Sandbox(simStart)
	if err != nil {
		return report, err
	}
	err = func() error {
		defer sb.Discard()
		if err := setup.FundAccount(sb, owner, s.asset, units(100_000)); err != nil {
			return err
		}
		if err := setup.FundAccount(sb, borrower, s.asset, units(10_000)); err != nil {
			return err
		}
		if vaultID, err = setup.CreateVault(sb, owner, s.asset, n.Ledger.ParentHash()); err != nil {
			return err
		}
		if err := setup.DepositVault(sb, vaultID, owner, units(50_000)); err != nil {
			return err
		}
		brokerID, err = setup.CreateBroker(sb, owner, vaultID, setup.BrokerParams{
			ManagementFeeRate:    1000,
			CoverRateMinimum:     10000,
			CoverRateLiquidation: 50000,
		}, n.Ledger.ParentHash())
		if err != nil {
			return err
		}
		if err := setup.DepositCover(sb, brokerID, owner, units(500)); err != nil {
			return err
		}
		return sb.Commit()
	}()
	if err != nil {
		return report, fmt.Errorf("failed to set up ledger: %w", err)
	}

	rate, interval, total, grace := uint32(12000), uint32(600), uint32(12), uint32(120)
	set := loan.NewLoanSet(borrower, brokerID, units(1000))
	set.InterestRate = &rate
	set.PaymentInterval = &interval
	set.PaymentTotal = &total
	set.GracePeriod = &grace

	report.loanID = keylet.Loan(brokerID, 1).Key
	res, err := n.Engine.Apply(set, simStart)
	if err != nil {
		return report, err
	}
	if !res.Result.IsSuccess() {
		return report, fmt.Errorf("LoanSet failed: %s", res.Result)
	}

	e := lending.NewEngine(n.Engine.Config().MaxPaymentsPerTransaction, log)
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		v, err := n.Ledger.Sandbox(simStart)
		if err != nil {
			return report, err
		}
		l, lerr := tx.ReadLoan(v, keylet.LoanByID(report.loanID))
		b, berr := tx.ReadLoanBroker(v, keylet.LoanBrokerByID(brokerID))
		v.Discard()
		if lerr != nil || berr != nil {
			return report, fmt.Errorf("failed to read loan state: %v %v", lerr, berr)
		}
		report.remaining = l.PaymentRemaining
		if l.NextPaymentDueDate == nil || l.PaymentRemaining == 0 {
			return report, nil
		}

		// One second before the due date keeps the payment on time.
		at := *l.NextPaymentDueDate - 1
		full := fullAfter > 0 && uint32(report.payments) >= fullAfter && l.PaymentRemaining > 1

		var amount number.Number
		var r tx.Result
		if full {
			amount, r = e.FullPaymentDue(s.asset, at, l, b)
		} else {
			amount, r = e.PaymentDue(s.asset, at, l, b)
		}
		if !r.IsSuccess() {
			return report, fmt.Errorf("failed to compute payment: %s", r)
		}

		pay := loan.NewLoanPay(borrower, report.loanID, tx.NewAmount(s.asset, amount))
		if full {
			pay.Common.Flags = loan.TfLoanFullPayment
		}
		res, err := n.Engine.Apply(pay, at)
		if err != nil {
			return report, err
		}
		report.final = res.Result
		if !res.Result.IsSuccess() {
			return report, fmt.Errorf("LoanPay failed: %s", res.Result)
		}

		report.paid = report.paid.Add(amount)
		for _, ev := range res.Events {
			report.payments += ev.Payments
			report.principal = report.principal.Add(ev.PrincipalPaid)
			report.interest = report.interest.Add(ev.InterestPaid)
			report.fee = report.fee.Add(ev.FeePaid)
		}
	}
}

func printReports(out io.Writer, reports []scenarioReport) error {
	w := newTable(out)
	fmt.Fprintln(w, "Asset\tLoan\tPayments\tPaid\tPrincipal\tInterest\tFee\tRemaining\tResult\t")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%d\t%s\t\n",
			r.name, formatHash(r.loanID)[:16], r.payments,
			r.paid, r.principal, r.interest, r.fee, r.remaining, r.final)
	}
	return w.Flush()
}

func init() {
	simulateCmd.Flags().Uint32Var(&simFullAfter, "full-after", 0, "pay off the loan after this many payments")
	rootCmd.AddCommand(simulateCmd)
}
