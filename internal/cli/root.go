package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goxrpl-lending/internal/config"
)

var (
	// Global flags
	configFile string
	debug      bool
	verbose    bool
	quiet      bool
	closeTime  uint32

	// Set by initConfig
	cfg     *config.Config
	logger  *slog.Logger
	initErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lendingd",
	Short: "lendingd - XRPL fixed-term lending ledger",
	Long: `lendingd keeps a ledger of XRPL fixed-term loans. Loans are originated
from a vault through a loan broker and repaid on an amortized schedule,
with late, full and overpayment settlement.`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initErr
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().Uint32Var(&closeTime, "at", 0, "ledger close time in seconds since 2000-01-01 (default: now)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfg, initErr = config.LoadConfig(configFile)
	if initErr != nil {
		return
	}
	logger = newLogger(cfg.Log, os.Stderr)
}

func newLogger(lc config.LogConfig, w *os.File) *slog.Logger {
	var level slog.Level
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelInfo
	default:
		if err := level.UnmarshalText([]byte(strings.ToUpper(lc.Level))); err != nil {
			level = slog.LevelInfo
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
