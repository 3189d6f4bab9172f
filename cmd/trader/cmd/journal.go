package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/twquant/trader/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded backtest runs",
	Long: `Query and display journal records from the SQLite journal.

Subcommands:
  run    - Show a run summary as an Org-mode block
  trades - List the trades of a run
  day    - List trades closed on a specific day

Examples:
  trader journal run 01JD...
  trader journal trades 01JD...
  trader journal day 2024-06-03`,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show a run summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List the trades of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./journal.db", "path to SQLite journal DB")
}

func openJournalDB() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	run, err := j.GetRun(args[0])
	if err != nil {
		return err
	}

	out, err := run.Render()
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTradesByRun(args[0])
	if err != nil {
		return err
	}
	printTrades(recs)
	return nil
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	day, err := time.Parse("2006-01-02", args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListTradesClosedBetween(day, day.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	printTrades(recs)
	return nil
}

func printTrades(recs []journal.TradeRecord) {
	if len(recs) == 0 {
		fmt.Println("no trades")
		return
	}

	fmt.Printf("%-4s %-6s %10s %10s %12s %10s %12s %8s %s\n",
		"id", "code", "volume", "buy", "buy date", "sell", "sell date", "roi%", "reason")
	for _, r := range recs {
		fmt.Printf("%-4s %-6s %10.0f %10.2f %12s %10.2f %12s %8.2f %s\n",
			strconv.Itoa(r.TradeID), r.Code, r.Volume,
			r.BuyPrice, r.BuyDate.Format("2006-01-02"),
			r.SellPrice, r.SellDate.Format("2006-01-02"),
			r.ROI, r.Reason)
	}
}
