package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goxrpl-lending/internal/core/tx"
	"github.com/LeJamon/goxrpl-lending/internal/core/tx/setup"
	"github.com/LeJamon/goxrpl-lending/internal/di"
)

var (
	fixtureAsset string

	vaultDeposit string

	brokerFeeRate        uint16
	brokerCoverMin       uint32
	brokerCoverLiquidate uint32
	brokerDebtMax        string
	brokerCover          string
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts",
}

var accountFundCmd = &cobra.Command{
	Use:   "fund <address> <amount>",
	Short: "Credit an account with an asset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseAccount(args[0])
		if err != nil {
			return err
		}
		a, err := parseAsset(fixtureAsset)
		if err != nil {
			return err
		}
		amount, err := parseNumber(args[1])
		if err != nil {
			return err
		}
		return withNode(func(n *di.Node) error {
			if err := modify(n, func(v tx.ApplyView) error {
				return setup.FundAccount(v, id, a, amount)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "funded %s with %s %s\n", args[0], amount, a)
			return nil
		})
	},
}

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage vaults",
}

var vaultCreateCmd = &cobra.Command{
	Use:   "create <owner>",
	Short: "Create a vault and deposit into it from the owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := parseAccount(args[0])
		if err != nil {
			return err
		}
		a, err := parseAsset(fixtureAsset)
		if err != nil {
			return err
		}
		deposit, err := parseNumber(vaultDeposit)
		if err != nil {
			return err
		}
		return withNode(func(n *di.Node) error {
			var id [32]byte
			err := modify(n, func(v tx.ApplyView) error {
				var err error
				if id, err = setup.CreateVault(v, owner, a, n.Ledger.ParentHash()); err != nil {
					return err
				}
				if deposit.IsZero() {
					return nil
				}
				return setup.DepositVault(v, id, owner, deposit)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vault: %s\n", formatHash(id))
			return nil
		})
	},
}

var brokerCmd = &cobra.Command{
	Use:   "broker",
	Short: "Manage loan brokers",
}

var brokerCreateCmd = &cobra.Command{
	Use:   "create <owner> <vault-id>",
	Short: "Create a loan broker over a vault and deposit first-loss cover",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := parseAccount(args[0])
		if err != nil {
			return err
		}
		vaultID, err := parseHash(args[1])
		if err != nil {
			return err
		}
		debtMax, err := parseNumber(brokerDebtMax)
		if err != nil {
			return err
		}
		cover, err := parseNumber(brokerCover)
		if err != nil {
			return err
		}
		p := setup.BrokerParams{
			ManagementFeeRate:    brokerFeeRate,
			CoverRateMinimum:     brokerCoverMin,
			CoverRateLiquidation: brokerCoverLiquidate,
			DebtMaximum:          debtMax,
		}
		return withNode(func(n *di.Node) error {
			var id [32]byte
			err := modify(n, func(v tx.ApplyView) error {
				var err error
				if id, err = setup.CreateBroker(v, owner, vaultID, p, n.Ledger.ParentHash()); err != nil {
					return err
				}
				if cover.IsZero() {
					return nil
				}
				return setup.DepositCover(v, id, owner, cover)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "broker: %s\n", formatHash(id))
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{accountFundCmd, vaultCreateCmd} {
		c.Flags().StringVar(&fixtureAsset, "asset", "XRP", "asset: XRP, CUR/issuer or MPT/issuance-id")
	}
	vaultCreateCmd.Flags().StringVar(&vaultDeposit, "deposit", "0", "initial deposit from the owner")

	brokerCreateCmd.Flags().Uint16Var(&brokerFeeRate, "management-fee", 0, "management fee rate in tenth basis points")
	brokerCreateCmd.Flags().Uint32Var(&brokerCoverMin, "cover-min", 0, "minimum cover rate in tenth basis points")
	brokerCreateCmd.Flags().Uint32Var(&brokerCoverLiquidate, "cover-liquidation", 0, "cover liquidation rate in tenth basis points")
	brokerCreateCmd.Flags().StringVar(&brokerDebtMax, "debt-max", "0", "debt ceiling, 0 for none")
	brokerCreateCmd.Flags().StringVar(&brokerCover, "cover", "0", "first-loss cover deposited by the owner")

	accountCmd.AddCommand(accountFundCmd)
	vaultCmd.AddCommand(vaultCreateCmd)
	brokerCmd.AddCommand(brokerCreateCmd)
	rootCmd.AddCommand(accountCmd, vaultCmd, brokerCmd)
}
