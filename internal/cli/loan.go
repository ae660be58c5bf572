package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/lending"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/keylet"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/loan"
	"github.com/LeJamon/goxrpl-lending/internal/di"
)

var (
	setCounterparty   string
	setAllowOverpay   bool
	setRate           uint32
	setLateRate       uint32
	setCloseRate      uint32
	setOverpayRate    uint32
	setOverpayFee     uint32
	setPayments       uint32
	setInterval       uint32
	setGrace          uint32
	setOriginationFee string
	setServiceFee     string
	setLateFee        string
	setCloseFee       string

	payFull    bool
	payOverpay bool

	showHistory int
)

var loanCmd = &cobra.Command{
	Use:   "loan",
	Short: "Originate, repay and manage loans",
}

var loanSetCmd = &cobra.Command{
	Use:   "set <account> <broker-id> <principal>",
	Short: "Originate a loan (LoanSet)",
	Long: `Originate a loan from the broker's vault. The account is the borrower
unless --counterparty names the borrower, in which case the account must own
the broker.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := parseAccount(args[0])
		if err != nil {
			return err
		}
		brokerID, err := parseHash(args[1])
		if err != nil {
			return err
		}
		principal, err := parseNumber(args[2])
		if err != nil {
			return err
		}

		s := loan.NewLoanSet(account, brokerID, principal)
		if err := applyLoanSetFlags(cmd, s); err != nil {
			return err
		}

		return withNode(func(n *di.Node) error {
			v, err := view(n)
			if err != nil {
				return err
			}
			b, err := tx.ReadLoanBroker(v, keylet.LoanBrokerByID(brokerID))
			v.Discard()
			if err != nil {
				return fmt.Errorf("failed to read broker: %w", err)
			}
			out := cmd.OutOrStdout()
			if err := submit(n, s, out); err != nil {
				return err
			}
			fmt.Fprintf(out, "loan: %s\n", formatHash(keylet.Loan(brokerID, b.LoanSequence).Key))
			return nil
		})
	},
}

func applyLoanSetFlags(cmd *cobra.Command, s *loan.LoanSet) error {
	f := cmd.Flags()
	if setCounterparty != "" {
		cp, err := parseAccount(setCounterparty)
		if err != nil {
			return err
		}
		s.Counterparty = &cp
	}
	if setAllowOverpay {
		s.Common.Flags |= loan.TfLoanOverpayment
	}

	rates := []struct {
		flag string
		val  uint32
		dst  **uint32
	}{
		{"rate", setRate, &s.InterestRate},
		{"late-rate", setLateRate, &s.LateInterestRate},
		{"close-rate", setCloseRate, &s.CloseInterestRate},
		{"overpay-rate", setOverpayRate, &s.OverpaymentInterestRate},
		{"overpay-fee", setOverpayFee, &s.OverpaymentFee},
		{"payments", setPayments, &s.PaymentTotal},
		{"interval", setInterval, &s.PaymentInterval},
		{"grace", setGrace, &s.GracePeriod},
	}
	for _, r := range rates {
		if f.Changed(r.flag) {
			v := r.val
			*r.dst = &v
		}
	}

	fees := []struct {
		flag string
		val  string
		dst  **number.Number
	}{
		{"origination-fee", setOriginationFee, &s.LoanOriginationFee},
		{"service-fee", setServiceFee, &s.LoanServiceFee},
		{"late-fee", setLateFee, &s.LatePaymentFee},
		{"close-fee", setCloseFee, &s.ClosePaymentFee},
	}
	for _, fee := range fees {
		if !f.Changed(fee.flag) {
			continue
		}
		v, err := parseNumber(fee.val)
		if err != nil {
			return fmt.Errorf("--%s: %w", fee.flag, err)
		}
		*fee.dst = &v
	}
	return nil
}

var loanPayCmd = &cobra.Command{
	Use:   "pay <account> <loan-id> [amount]",
	Short: "Make a loan payment (LoanPay)",
	Long: `Pay a loan. Without an amount, pays what is due now: the next scheduled
payment, or the full payoff with --full.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := parseAccount(args[0])
		if err != nil {
			return err
		}
		loanID, err := parseHash(args[1])
		if err != nil {
			return err
		}

		var flags uint32
		if payFull {
			flags |= loan.TfLoanFullPayment
		}
		if payOverpay {
			flags |= loan.TfLoanOverpayment
		}

		return withNode(func(n *di.Node) error {
			r, err := loadLoan(n, loanID)
			if err != nil {
				return err
			}

			var amount number.Number
			if len(args) == 3 {
				if amount, err = parseNumber(args[2]); err != nil {
					return err
				}
			} else {
				e := lending.NewEngine(cfg.Lending.MaxPaymentsPerTx, logger)
				var res tx.Result
				if payFull {
					amount, res = e.FullPaymentDue(r.asset, now(), r.loan, r.broker)
				} else {
					amount, res = e.PaymentDue(r.asset, now(), r.loan, r.broker)
				}
				if !res.IsSuccess() {
					return fmt.Errorf("no payment due: %s", res)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "amount: %s %s\n", amount, r.asset)
			}

			p := loan.NewLoanPay(account, loanID, tx.NewAmount(r.asset, amount))
			p.Common.Flags = flags
			return submit(n, p, cmd.OutOrStdout())
		})
	},
}

func manageCmd(use, short string, flag uint32) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <account> <loan-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := parseAccount(args[0])
			if err != nil {
				return err
			}
			loanID, err := parseHash(args[1])
			if err != nil {
				return err
			}
			return withNode(func(n *di.Node) error {
				return submit(n, loan.NewLoanManage(account, loanID, flag), cmd.OutOrStdout())
			})
		},
	}
}

var loanShowCmd = &cobra.Command{
	Use:   "show <loan-id>",
	Short: "Show a loan, its remaining schedule and its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loanID, err := parseHash(args[0])
		if err != nil {
			return err
		}
		return withNode(func(n *di.Node) error {
			r, err := loadLoan(n, loanID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printLoan(out, loanID, r)

			if l := r.loan; l.NextPaymentDueDate != nil {
				fmt.Fprintln(out, "\nremaining schedule:")
				rows := lending.Schedule(r.asset, int(l.LoanScale),
					l.TotalValueOutstanding, l.PrincipalOutstanding, l.ManagementFeeOutstanding,
					l.PeriodicPayment, lending.TenthBips(l.InterestRate), l.PaymentInterval,
					l.PaymentRemaining, lending.TenthBips(r.broker.ManagementFeeRate),
					*l.NextPaymentDueDate)
				if err := printSchedule(out, rows, placesForScale(l.LoanScale)); err != nil {
					return err
				}
			}

			if n.History == nil || showHistory == 0 {
				return nil
			}
			events, err := n.History.LoanHistory(context.Background(), loanID, showHistory)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nhistory:")
			w := newTable(out)
			fmt.Fprintln(w, "Time\tType\tAction\tResult\tPath\tPayments\tPrincipal\tInterest\tFee\tValue change\t")
			for _, ev := range events {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t\n",
					formatTime(ev.CloseTime), ev.TxType, ev.Action, ev.Result, ev.Path, ev.Payments,
					ev.PrincipalPaid, ev.InterestPaid, ev.FeePaid, ev.ValueChange)
			}
			return w.Flush()
		})
	},
}

type loanRecords struct {
	loan   *entries.Loan
	broker *entries.LoanBroker
	vault  *entries.Vault
	asset  asset.Asset
}

func loadLoan(n *di.Node, loanID [32]byte) (*loanRecords, error) {
	v, err := view(n)
	if err != nil {
		return nil, err
	}
	defer v.Discard()

	l, err := tx.ReadLoan(v, keylet.LoanByID(loanID))
	if err != nil {
		return nil, fmt.Errorf("failed to read loan: %w", err)
	}
	b, err := tx.ReadLoanBroker(v, keylet.LoanBrokerByID(l.LoanBrokerID))
	if err != nil {
		return nil, fmt.Errorf("failed to read broker: %w", err)
	}
	vault, err := tx.ReadVault(v, keylet.VaultByID(b.VaultID))
	if err != nil {
		return nil, fmt.Errorf("failed to read vault: %w", err)
	}
	return &loanRecords{loan: l, broker: b, vault: vault, asset: vault.Asset}, nil
}

func printLoan(out io.Writer, id [32]byte, r *loanRecords) {
	l := r.loan
	places := placesForScale(l.LoanScale)

	status := "current"
	switch {
	case l.IsFlag(entry.LsfLoanDefault):
		status = "defaulted"
	case l.IsFlag(entry.LsfLoanImpaired):
		status = "impaired"
	case l.PaymentRemaining == 0:
		status = "paid off"
	}

	w := newTable(out)
	row := func(k, v string) { fmt.Fprintf(w, "%s:\t%s\t\n", k, v) }
	row("loan", formatHash(id))
	row("broker", formatHash(l.LoanBrokerID))
	row("borrower", formatAccount(l.Borrower))
	row("asset", r.asset.String())
	row("status", status)
	row("interest rate", formatRate(l.InterestRate))
	row("payments remaining", fmt.Sprint(l.PaymentRemaining))
	row("payment interval", fmt.Sprintf("%ds", l.PaymentInterval))
	if l.NextPaymentDueDate != nil {
		row("next payment due", formatTime(*l.NextPaymentDueDate))
	}
	row("periodic payment", formatAmount(l.PeriodicPayment, places))
	row("principal outstanding", formatAmount(l.PrincipalOutstanding, places))
	row("total value outstanding", formatAmount(l.TotalValueOutstanding, places))
	row("management fee outstanding", formatAmount(l.ManagementFeeOutstanding, places))
	_ = w.Flush()
}

func init() {
	f := loanSetCmd.Flags()
	f.StringVar(&setCounterparty, "counterparty", "", "the other party to the loan")
	f.BoolVar(&setAllowOverpay, "allow-overpayment", false, "allow overpayments")
	f.Uint32Var(&setRate, "rate", 0, "annual interest rate in tenth basis points (12000 = 12%)")
	f.Uint32Var(&setLateRate, "late-rate", 0, "late interest rate in tenth basis points")
	f.Uint32Var(&setCloseRate, "close-rate", 0, "prepayment penalty rate in tenth basis points")
	f.Uint32Var(&setOverpayRate, "overpay-rate", 0, "overpayment interest rate in tenth basis points")
	f.Uint32Var(&setOverpayFee, "overpay-fee", 0, "overpayment fee rate in tenth basis points")
	f.Uint32Var(&setPayments, "payments", 0, "number of payments")
	f.Uint32Var(&setInterval, "interval", 0, "seconds between payments")
	f.Uint32Var(&setGrace, "grace", 0, "grace period in seconds")
	f.StringVar(&setOriginationFee, "origination-fee", "0", "fee kept by the broker at origination")
	f.StringVar(&setServiceFee, "service-fee", "0", "fee added to every payment")
	f.StringVar(&setLateFee, "late-fee", "0", "fee added to late payments")
	f.StringVar(&setCloseFee, "close-fee", "0", "fee added to a full payment")

	loanPayCmd.Flags().BoolVar(&payFull, "full", false, "pay off the loan")
	loanPayCmd.Flags().BoolVar(&payOverpay, "overpay", false, "apply any excess to principal")
	loanPayCmd.MarkFlagsMutuallyExclusive("full", "overpay")

	loanShowCmd.Flags().IntVar(&showHistory, "history", 50, "history rows to show, 0 to skip")

	loanCmd.AddCommand(
		loanSetCmd,
		loanPayCmd,
		manageCmd("impair", "Impair a loan (LoanManage)", loan.TfLoanImpair),
		manageCmd("unimpair", "Clear a loan's impairment (LoanManage)", loan.TfLoanUnimpair),
		manageCmd("default", "Default a loan past its grace period (LoanManage)", loan.TfLoanDefault),
		loanShowCmd,
	)
	rootCmd.AddCommand(loanCmd)
}
