package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, trade_id, code, volume, buy_price, buy_date, sell_price, sell_date, profit, roi, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.TradeID, t.Code, t.Volume, t.BuyPrice, t.BuyDate,
		t.SellPrice, t.SellDate, t.Profit, t.ROI, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, date, balance, equity, open_positions)
		VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Date, e.Balance, e.Equity, e.OpenPositions,
	)
	return err
}

func (j *SQLite) RecordRun(r RunSummary) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, strategy, dataset, config, start_date, end_date,
		 trades, wins, losses, start_balance, end_balance,
		 net_pl, return_pct, win_rate, profit_factor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Strategy, r.Dataset, r.Config, r.Start, r.End,
		r.Trades, r.Wins, r.Losses, r.StartBalance, r.EndBalance,
		r.NetPL, r.ReturnPct, r.WinRate, r.ProfitFactor,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
