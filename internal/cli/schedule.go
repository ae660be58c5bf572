package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goxrpl-lending/internal/core/asset"
	"github.com/LeJamon/goxrpl-lending/internal/core/lending"
	"github.com/LeJamon/goxrpl-lending/internal/core/number"
)

var (
	schedAsset     string
	schedPrincipal string
	schedRate      uint32
	schedInterval  uint32
	schedPayments  uint32
	schedFeeRate   uint32
	schedStart     uint32
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the amortization schedule of a loan",
	Long: `Print the payment schedule a loan with the given terms would follow if
every payment were made on time. Amounts are rounded to the loan scale.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := parseAsset(schedAsset)
		if err != nil {
			return err
		}
		principal, err := parseNumber(schedPrincipal)
		if err != nil {
			return err
		}
		if principal.Sign() <= 0 {
			return fmt.Errorf("principal must be positive")
		}
		if schedPayments == 0 || schedInterval == 0 {
			return fmt.Errorf("payments and interval must be positive")
		}
		return writeSchedule(cmd.OutOrStdout(), a, principal,
			lending.TenthBips(schedRate), schedInterval, schedPayments,
			lending.TenthBips(schedFeeRate), schedStart)
	},
}

func writeSchedule(
	out io.Writer, a asset.Asset, principal number.Number,
	rate lending.TenthBips, interval, n uint32, feeRate lending.TenthBips, start uint32,
) error {
	props := lending.ComputeLoanProperties(a, principal, rate, interval, n, feeRate)
	principal = asset.RoundToAsset(a, principal, props.LoanScale, number.ToNearest)
	places := placesForScale(int32(props.LoanScale))

	w := newTable(out)
	fmt.Fprintf(w, "periodic payment:\t%s\t\n", formatAmount(props.PeriodicPayment, places+3))
	fmt.Fprintf(w, "total value:\t%s\t\n", formatAmount(props.TotalValueOutstanding, places))
	fmt.Fprintf(w, "management fee:\t%s\t\n", formatAmount(props.ManagementFeeOwed, places))
	fmt.Fprintf(w, "loan scale:\t%d\t\n", props.LoanScale)
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)

	rows := lending.Schedule(a, props.LoanScale,
		props.TotalValueOutstanding, principal, props.ManagementFeeOwed,
		props.PeriodicPayment, rate, interval, n, feeRate, start+interval)
	return printSchedule(out, rows, places)
}

func printSchedule(out io.Writer, rows []lending.ScheduledPayment, places int32) error {
	w := newTable(out)
	fmt.Fprintln(w, "#\tDue\tPrincipal\tInterest\tFee\tPayment\tPrincipal left\tValue left\t")

	var principal, interest, fee, total number.Number
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Number, r.DueDate,
			formatAmount(r.Principal, places),
			formatAmount(r.Interest, places),
			formatAmount(r.Fee, places),
			formatAmount(r.Total, places),
			formatAmount(r.PrincipalOutstanding, places),
			formatAmount(r.TotalValueOutstanding, places))
		principal = principal.Add(r.Principal)
		interest = interest.Add(r.Interest)
		fee = fee.Add(r.Fee)
		total = total.Add(r.Total)
	}
	fmt.Fprintf(w, "total\t\t%s\t%s\t%s\t%s\t\t\t\n",
		formatAmount(principal, places),
		formatAmount(interest, places),
		formatAmount(fee, places),
		formatAmount(total, places))
	return w.Flush()
}

func init() {
	f := scheduleCmd.Flags()
	f.StringVar(&schedAsset, "asset", "XRP", "asset: XRP, CUR/issuer or MPT/issuance-id")
	f.StringVar(&schedPrincipal, "principal", "1000", "principal")
	f.Uint32Var(&schedRate, "rate", 12000, "annual interest rate in tenth basis points")
	f.Uint32Var(&schedInterval, "interval", 600, "seconds between payments")
	f.Uint32Var(&schedPayments, "payments", 12, "number of payments")
	f.Uint32Var(&schedFeeRate, "management-fee", 1000, "management fee rate in tenth basis points")
	f.Uint32Var(&schedStart, "start", 0, "start date in seconds since 2000-01-01")
	rootCmd.AddCommand(scheduleCmd)
}
