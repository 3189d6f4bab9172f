// Package journal persists backtest output: closed trades, daily equity
// snapshots, and per-run summaries. SQLite and CSV backends are provided.
package journal

import "time"

// TradeRecord is one closed round trip as the simulated account saw it.
type TradeRecord struct {
	RunID     string
	TradeID   int
	Code      string
	Volume    float64
	BuyPrice  float64
	BuyDate   time.Time
	SellPrice float64
	SellDate  time.Time
	Profit    float64
	ROI       float64
	Reason    string
}

// EquitySnapshot is the account state at the end of one trading day.
type EquitySnapshot struct {
	RunID         string
	Date          time.Time
	Balance       float64
	Equity        float64
	OpenPositions int
}

// RunSummary is the header row for a completed backtest run.
type RunSummary struct {
	RunID    string
	Created  time.Time
	Strategy string
	Dataset  string
	Config   []byte

	Start time.Time
	End   time.Time

	Trades int
	Wins   int
	Losses int

	StartBalance float64
	EndBalance   float64

	NetPL        float64
	ReturnPct    float64
	WinRate      float64
	ProfitFactor float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	RecordRun(RunSummary) error
	Close() error
}
