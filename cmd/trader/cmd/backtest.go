package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/twquant/trader/backtest"
	"github.com/twquant/trader/config"
	"github.com/twquant/trader/data"
	"github.com/twquant/trader/internal/logutil"
	"github.com/twquant/trader/journal"
	"github.com/twquant/trader/sim"
	"github.com/twquant/trader/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a backtest over the historical dataset",
	Long: `Backtest runs a strategy over the daily dataset between the configured
start and end dates, simulating fills with TWSE commission and tax.

Example:
  trader backtest --config simulation.yaml
  trader backtest --config simulation.yaml --report run.org`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btReportPath string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to config file (required)")
	backtestCmd.Flags().StringVar(&btReportPath, "report", "", "write an Org-mode run report to this path")

	backtestCmd.MarkFlagRequired("config")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(btConfigPath)
	if err != nil {
		return err
	}
	log := logutil.New(cfg.LogLevel)

	store, err := data.OpenSQLite(cfg.Data.DBPath)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	cache, err := data.NewCache(ctx, store,
		data.WithCaching(cfg.Data.Cache),
		data.WithLogger(log))
	if err != nil {
		return fmt.Errorf("index dataset: %w", err)
	}

	strat, err := strategies.ByName(cfg.Strategy.Name, strategies.SimpleLongConfig{
		MinChangePct:    cfg.Strategy.MinChangePct,
		MinVolumeLots:   cfg.Strategy.MinVolumeLots,
		MaxHoldingDays:  cfg.Strategy.MaxHoldingDays,
		ProfitTargetPct: cfg.Strategy.ProfitTargetPct,
		StopLossPct:     cfg.Strategy.StopLossPct,
		MaxHoldings:     cfg.Strategy.MaxHoldings,
	})
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	jnl, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if jnl != nil {
		defer jnl.Close()
	}

	start, _ := cfg.Backtest.StartDate()
	end, _ := cfg.Backtest.EndDate()

	runner := &backtest.Runner{
		Data:         cache,
		Account:      sim.NewAccount(cfg.Account.Balance),
		Exec:         sim.NewExecutor(log),
		Strategy:     strat,
		Journal:      jnl,
		Start:        start,
		End:          end,
		MaxPositions: cfg.Backtest.MaxPositions,
		Log:          log,
	}

	fmt.Printf("Running backtest with strategy: %s\n", strat.Name())
	fmt.Printf("  Dataset: %s\n", cfg.Data.DBPath)
	fmt.Printf("  Window: %s .. %s\n\n", cfg.Backtest.Start, cfg.Backtest.End)

	res, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fmt.Printf("Backtest Complete! (run %s)\n", res.RunID)
	fmt.Printf("  Balance: %.2f TWD (started %.2f)\n", res.Balance, res.StartBalance)
	fmt.Printf("  Net P/L: %.2f TWD (%.2f%%)\n", res.NetPL, res.ReturnPct)
	fmt.Printf("  Trades: %d (%d wins, %d losses)\n", res.Trades, res.Wins, res.Losses)
	if res.Trades > 0 {
		fmt.Printf("  Win rate: %.1f%%\n", res.WinRate*100)
	}
	if res.ProfitFactor > 0 {
		fmt.Printf("  Profit factor: %.2f\n", res.ProfitFactor)
	}

	if btReportPath != "" {
		if err := writeReport(cfg, res); err != nil {
			return fmt.Errorf("report: %w", err)
		}
		fmt.Printf("\nWrote report: %s\n", btReportPath)
	}
	return nil
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	case "csv":
		return journal.NewCSV(cfg.TradesFile, cfg.EquityFile, cfg.RunsFile)
	default:
		return nil, nil
	}
}

func writeReport(cfg *config.Config, res backtest.Result) error {
	params, err := yaml.Marshal(cfg.Strategy)
	if err != nil {
		return err
	}

	summary := journal.RunSummary{
		RunID:        res.RunID,
		Strategy:     cfg.Strategy.Name,
		Dataset:      cfg.Data.DBPath,
		Config:       params,
		Start:        res.Start,
		End:          res.End,
		Trades:       res.Trades,
		Wins:         res.Wins,
		Losses:       res.Losses,
		StartBalance: res.StartBalance,
		EndBalance:   res.Balance,
		NetPL:        res.NetPL,
		ReturnPct:    res.ReturnPct,
		WinRate:      res.WinRate,
		ProfitFactor: res.ProfitFactor,
	}
	return summary.WriteReport(btReportPath)
}
