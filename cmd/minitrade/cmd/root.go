package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "minitrade",
	Short: "A deterministic bar-replay backtesting engine",
	Long: `Minitrade replays historical OHLCV bars through trading strategies
against a simulated broker.

It provides tools for:
  - Backtesting strategies over CSV bar data
  - Grid-search optimization of strategy parameters
  - Journaling trades and equity curves to SQLite or CSV
  - Post-run analysis (returns, Sharpe, drawdown, trade stats)`,
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}
