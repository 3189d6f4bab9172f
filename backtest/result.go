package backtest

import (
	"time"

	"github.com/twquant/trader/sim"
)

// Result summarizes a completed run.
type Result struct {
	RunID string

	StartBalance float64
	Balance      float64

	Trades int
	Wins   int
	Losses int

	NetPL        float64
	ReturnPct    float64
	WinRate      float64
	ProfitFactor float64

	Start time.Time
	End   time.Time
}

// summarize derives the run statistics from the account's closed trades.
func summarize(runID string, startBalance float64, acct *sim.Account, start, end time.Time) Result {
	res := Result{
		RunID:        runID,
		StartBalance: startBalance,
		Balance:      acct.Balance,
		Start:        start,
		End:          end,
	}

	grossProfit := 0.0
	grossLoss := 0.0
	for _, tr := range acct.Trades() {
		res.Trades++
		res.NetPL += tr.Profit
		switch {
		case tr.Profit > 0:
			res.Wins++
			grossProfit += tr.Profit
		case tr.Profit < 0:
			res.Losses++
			grossLoss += -tr.Profit
		}
	}

	if startBalance != 0 {
		res.ReturnPct = res.NetPL / startBalance * 100
	}
	if res.Trades > 0 {
		res.WinRate = float64(res.Wins) / float64(res.Trades)
	}
	if grossLoss > 0 {
		res.ProfitFactor = grossProfit / grossLoss
	}
	return res
}
