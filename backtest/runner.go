// Package backtest drives a strategy over the historical dataset one trading
// day at a time, routing its order intents through the simulated executor and
// recording the outcome in a journal.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twquant/trader/data"
	"github.com/twquant/trader/internal/id"
	"github.com/twquant/trader/journal"
	"github.com/twquant/trader/market"
	"github.com/twquant/trader/sim"
	"github.com/twquant/trader/strategies"
)

// priceFields are the daily price table columns the runner assembles quotes
// from.
var priceFields = [...]string{"open", "high", "low", "close", "volume"}

// Runner walks the calendar from Start to End, skipping non-trading days.
// Each trading day it runs the stop-loss pass, then the close pass, then the
// open pass capped by MaxPositions.
type Runner struct {
	Data     *data.Cache
	Account  *sim.Account
	Exec     *sim.Executor
	Strategy strategies.Strategy

	// Journal may be nil; trades, daily equity, and the run summary are
	// recorded when it is set.
	Journal journal.Journal

	Start time.Time
	End   time.Time

	// MaxPositions caps total open lots. Zero means uncapped.
	MaxPositions int

	Log *slog.Logger
}

func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Data == nil {
		return Result{}, fmt.Errorf("backtest: Data is required")
	}
	if r.Account == nil {
		return Result{}, fmt.Errorf("backtest: Account is required")
	}
	if r.Exec == nil {
		return Result{}, fmt.Errorf("backtest: Exec is required")
	}
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}
	if r.End.Before(r.Start) {
		return Result{}, fmt.Errorf("backtest: end %s before start %s",
			r.End.Format("2006-01-02"), r.Start.Format("2006-01-02"))
	}

	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	runID := id.NewRun()
	startBalance := r.Account.Balance
	start := market.Midnight(r.Start)
	end := market.Midnight(r.End)

	log.Info("backtest start",
		"run_id", runID,
		"strategy", r.Strategy.Name(),
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
		"balance", startBalance)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if !r.Data.Index().HasDate("price", day) {
			continue
		}
		if err := r.runDay(ctx, log, runID, day); err != nil {
			return Result{}, err
		}
	}

	res := summarize(runID, startBalance, r.Account, start, end)

	log.Info("backtest done",
		"run_id", runID,
		"trades", res.Trades,
		"net_pl", res.NetPL,
		"return_pct", res.ReturnPct)

	if r.Journal != nil {
		err := r.Journal.RecordRun(journal.RunSummary{
			RunID:        runID,
			Created:      time.Now().UTC(),
			Strategy:     r.Strategy.Name(),
			Start:        start,
			End:          end,
			Trades:       res.Trades,
			Wins:         res.Wins,
			Losses:       res.Losses,
			StartBalance: startBalance,
			EndBalance:   res.Balance,
			NetPL:        res.NetPL,
			ReturnPct:    res.ReturnPct,
			WinRate:      res.WinRate,
			ProfitFactor: res.ProfitFactor,
		})
		if err != nil {
			return Result{}, fmt.Errorf("record run: %w", err)
		}
	}

	return res, nil
}

// runDay executes one trading day's three passes and snapshots equity.
func (r *Runner) runDay(ctx context.Context, log *slog.Logger, runID string, day time.Time) error {
	quotes, err := r.quotes(ctx, day)
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		return nil
	}

	env := strategies.Env{Date: day, Data: r.Data, Account: r.Account}

	stops, err := r.Strategy.CheckStopLossSignal(ctx, env, quotes)
	if err != nil {
		return fmt.Errorf("stop-loss signal on %s: %w", day.Format("2006-01-02"), err)
	}
	if err := r.sell(log, runID, stops); err != nil {
		return err
	}

	closes, err := r.Strategy.CheckCloseSignal(ctx, env, quotes)
	if err != nil {
		return fmt.Errorf("close signal on %s: %w", day.Format("2006-01-02"), err)
	}
	if err := r.sell(log, runID, closes); err != nil {
		return err
	}

	opens, err := r.Strategy.CheckOpenSignal(ctx, env, quotes)
	if err != nil {
		return fmt.Errorf("open signal on %s: %w", day.Format("2006-01-02"), err)
	}
	if r.MaxPositions > 0 {
		room := r.MaxPositions - r.Account.PositionCount()
		if room < 0 {
			room = 0
		}
		if len(opens) > room {
			opens = opens[:room]
		}
	}
	r.buy(log, opens)

	if r.Journal != nil {
		byCode := make(map[string]float64, len(quotes))
		for _, q := range quotes {
			byCode[q.Code] = q.Close
		}
		mv := r.Account.MarketValue(func(code string) (float64, bool) {
			price, ok := byCode[code]
			return price, ok
		})
		err := r.Journal.RecordEquity(journal.EquitySnapshot{
			RunID:         runID,
			Date:          day,
			Balance:       r.Account.Balance,
			Equity:        r.Account.Balance + mv,
			OpenPositions: r.Account.PositionCount(),
		})
		if err != nil {
			return fmt.Errorf("record equity: %w", err)
		}
	}
	return nil
}

// sell closes the lots named by the orders. An unknown lot id means the
// strategy and the ledger disagree and the run cannot be trusted, so it
// aborts the run.
func (r *Runner) sell(log *slog.Logger, runID string, orders []market.Order) error {
	for _, o := range orders {
		trade, err := r.Exec.Sell(r.Account, o.PositionID, o.Price, o.Volume, o.Date)
		if err != nil {
			return fmt.Errorf("sell %s lot %d: %w", o.Code, o.PositionID, err)
		}
		log.Debug("closed", "code", trade.Code, "lot", trade.ID, "profit", trade.Profit, "reason", o.Reason)

		if r.Journal != nil {
			err := r.Journal.RecordTrade(journal.TradeRecord{
				RunID:     runID,
				TradeID:   trade.ID,
				Code:      trade.Code,
				Volume:    trade.Volume,
				BuyPrice:  trade.BuyPrice,
				BuyDate:   trade.BuyDate,
				SellPrice: trade.SellPrice,
				SellDate:  trade.SellDate,
				Profit:    trade.Profit,
				ROI:       trade.ROI,
				Reason:    o.Reason,
			})
			if err != nil {
				return fmt.Errorf("record trade: %w", err)
			}
		}
	}
	return nil
}

// buy opens lots for the orders. Unaffordable orders are skipped rather than
// failing the run; later days may have the cash.
func (r *Runner) buy(log *slog.Logger, orders []market.Order) {
	for _, o := range orders {
		pos, err := r.Exec.Buy(r.Account, o.Code, o.Price, o.Volume, o.Date)
		if errors.Is(err, sim.ErrInsufficientFunds) {
			log.Warn("skip buy", "code", o.Code, "price", o.Price, "volume", o.Volume, "balance", r.Account.Balance)
			continue
		}
		if err != nil {
			log.Warn("buy failed", "code", o.Code, "err", err)
			continue
		}
		log.Debug("opened", "code", pos.Code, "lot", pos.ID, "price", pos.BuyPrice, "volume", pos.Volume)
	}
}

// quotes assembles the day's OHLCV quotes for listed common stocks. A code
// missing its close is dropped; other fields default to zero when absent.
func (r *Runner) quotes(ctx context.Context, day time.Time) ([]market.Quote, error) {
	frames := make(map[string]*data.Frame, len(priceFields))
	for _, field := range priceFields {
		frame, err := r.Data.Get(ctx, "price", field, day, 1)
		if err != nil {
			return nil, fmt.Errorf("price %s on %s: %w", field, day.Format("2006-01-02"), err)
		}
		frames[field] = frame
	}

	closeFrame := frames["close"]
	if closeFrame.Empty() {
		return nil, nil
	}

	var quotes []market.Quote
	for _, code := range market.FilterCommonStocks(closeFrame.Codes()) {
		closePx, ok := closeFrame.Value(day, code)
		if !ok {
			continue
		}
		q := market.Quote{Code: code, Date: day, Close: closePx}
		q.Open, _ = frames["open"].Value(day, code)
		q.High, _ = frames["high"].Value(day, code)
		q.Low, _ = frames["low"].Value(day, code)
		q.Volume, _ = frames["volume"].Value(day, code)
		quotes = append(quotes, q)
	}
	return quotes, nil
}
