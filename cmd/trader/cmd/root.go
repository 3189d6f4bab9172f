package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "Backtesting toolkit for the Taiwan stock market",
	Long: `Trader backtests long strategies against a historical Taiwan market
dataset with realistic TWSE commission and transaction tax accounting.

It provides tools for:
  - Running day-scale backtests from a YAML/JSON configuration
  - Journaling trades, equity curves, and run summaries to SQLite or CSV
  - Querying past runs and exporting Org-mode reports
  - Inspecting intraday ticks stored in ClickHouse`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
