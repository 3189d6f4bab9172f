package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/twquant/trader/config"
	"github.com/twquant/trader/tickstore"
)

var ticksCmd = &cobra.Command{
	Use:   "ticks",
	Short: "Inspect the intraday tick store",
	Long: `Query ticks from the ClickHouse tick store configured in the config
file's ticks section.

Subcommands:
  last - Show a stock's final tick on a day
  dump - Print a stock's ticks over a date range

Examples:
  trader ticks --config simulation.yaml last 2330 2024-06-03
  trader ticks --config simulation.yaml dump 2330 2024-06-03 2024-06-05`,
}

var ticksLastCmd = &cobra.Command{
	Use:   "last <stock-id> <YYYY-MM-DD>",
	Short: "Show a stock's final tick on a day",
	Args:  cobra.ExactArgs(2),
	RunE:  runTicksLast,
}

var ticksDumpCmd = &cobra.Command{
	Use:   "dump <stock-id> <from> <to>",
	Short: "Print a stock's ticks over a date range",
	Args:  cobra.ExactArgs(3),
	RunE:  runTicksDump,
}

var ticksConfigPath string

func init() {
	rootCmd.AddCommand(ticksCmd)
	ticksCmd.AddCommand(ticksLastCmd)
	ticksCmd.AddCommand(ticksDumpCmd)

	ticksCmd.PersistentFlags().StringVarP(&ticksConfigPath, "config", "c", "", "path to config file (required)")
	ticksCmd.MarkPersistentFlagRequired("config")
}

func openTickStore() (*tickstore.Store, error) {
	cfg, err := config.LoadFromFile(ticksConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.Ticks.Addr == "" {
		return nil, fmt.Errorf("config has no ticks.addr")
	}
	return tickstore.Open(tickstore.Config{
		Addr:     cfg.Ticks.Addr,
		Database: cfg.Ticks.Database,
		Username: cfg.Ticks.Username,
		Password: cfg.Ticks.Password,
	})
}

func runTicksLast(cmd *cobra.Command, args []string) error {
	store, err := openTickStore()
	if err != nil {
		return err
	}
	defer store.Close()

	day, err := time.Parse("2006-01-02", args[1])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	tick, ok, err := store.LastTick(context.Background(), args[0], day)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("%s did not trade on %s\n", args[0], args[1])
		return nil
	}

	fmt.Printf("%s %s close=%.2f volume=%d bid=%.2f ask=%.2f\n",
		tick.Code, tick.Time.Format(time.RFC3339),
		tick.Close, tick.Volume, tick.BidPrice, tick.AskPrice)
	return nil
}

func runTicksDump(cmd *cobra.Command, args []string) error {
	store, err := openTickStore()
	if err != nil {
		return err
	}
	defer store.Close()

	from, err := time.Parse("2006-01-02", args[1])
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	to, err := time.Parse("2006-01-02", args[2])
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}

	ticks, err := store.Ticks(context.Background(), args[0], from, to)
	if err != nil {
		return err
	}

	for _, t := range ticks {
		fmt.Printf("%s %.2f %d\n", t.Time.Format(time.RFC3339), t.Close, t.Volume)
	}
	fmt.Printf("%d ticks\n", len(ticks))
	return nil
}
