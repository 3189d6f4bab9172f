package journal

import (
	"database/sql"
	"fmt"
	"time"
)

const tradeColumns = `run_id, trade_id, code, volume, buy_price, buy_date, sell_price, sell_date, profit, roi, reason`

func scanTrade(row interface{ Scan(...any) error }) (TradeRecord, error) {
	var rec TradeRecord
	err := row.Scan(
		&rec.RunID,
		&rec.TradeID,
		&rec.Code,
		&rec.Volume,
		&rec.BuyPrice,
		&rec.BuyDate,
		&rec.SellPrice,
		&rec.SellDate,
		&rec.Profit,
		&rec.ROI,
		&rec.Reason,
	)
	return rec, err
}

// GetTrade returns a single trade by run and in-run trade id.
func (j *SQLite) GetTrade(runID string, tradeID int) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE run_id = ? AND trade_id = ?`, runID, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %d of run %q not found", tradeID, runID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesByRun returns every trade of a run ordered by trade id.
func (j *SQLite) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE run_id = ?
		ORDER BY trade_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	return collectTrades(rows)
}

// ListTradesClosedBetween returns trades whose sell_date is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE sell_date >= ? AND sell_date < ?
		ORDER BY sell_date ASC`, start, end)
	if err != nil {
		return nil, err
	}
	return collectTrades(rows)
}

func collectTrades(rows *sql.Rows) ([]TradeRecord, error) {
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRun returns the summary row of a completed run.
func (j *SQLite) GetRun(runID string) (RunSummary, error) {
	var r RunSummary
	row := j.db.QueryRow(`
		SELECT run_id, created, strategy, dataset, config, start_date, end_date,
		       trades, wins, losses, start_balance, end_balance,
		       net_pl, return_pct, win_rate, profit_factor
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&r.RunID, &r.Created, &r.Strategy, &r.Dataset, &r.Config, &r.Start, &r.End,
		&r.Trades, &r.Wins, &r.Losses, &r.StartBalance, &r.EndBalance,
		&r.NetPL, &r.ReturnPct, &r.WinRate, &r.ProfitFactor,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunSummary{}, fmt.Errorf("run %q not found", runID)
		}
		return RunSummary{}, err
	}
	return r, nil
}

// ListEquityByRun returns a run's daily snapshots in date order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, date, balance, equity, open_positions
		FROM equity
		WHERE run_id = ?
		ORDER BY date ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Date, &e.Balance, &e.Equity, &e.OpenPositions); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
