package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	runs   *csv.Writer
	files  []*os.File
}

func NewCSV(tradesPath, equityPath, runsPath string) (*CSVJournal, error) {
	j := &CSVJournal{}

	open := func(path string) (*os.File, error) {
		f, err := os.Create(path)
		if err != nil {
			for _, prev := range j.files {
				prev.Close()
			}
			return nil, err
		}
		j.files = append(j.files, f)
		return f, nil
	}

	tf, err := open(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := open(equityPath)
	if err != nil {
		return nil, err
	}
	rf, err := open(runsPath)
	if err != nil {
		return nil, err
	}

	j.trades = csv.NewWriter(tf)
	j.equity = csv.NewWriter(ef)
	j.runs = csv.NewWriter(rf)

	headers := []struct {
		w   *csv.Writer
		row []string
	}{
		{j.trades, []string{"run_id", "trade_id", "code", "volume", "buy_price", "buy_date", "sell_price", "sell_date", "profit", "roi", "reason"}},
		{j.equity, []string{"run_id", "date", "balance", "equity", "open_positions"}},
		{j.runs, []string{"run_id", "created", "strategy", "dataset", "start_date", "end_date", "trades", "wins", "losses", "start_balance", "end_balance", "net_pl", "return_pct", "win_rate", "profit_factor"}},
	}
	for _, h := range headers {
		if err := h.w.Write(h.row); err != nil {
			return nil, err
		}
		h.w.Flush()
		if err := h.w.Error(); err != nil {
			return nil, err
		}
	}

	return j, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.RunID,
		strconv.Itoa(t.TradeID),
		t.Code,
		f(t.Volume),
		f(t.BuyPrice),
		t.BuyDate.Format(time.RFC3339),
		f(t.SellPrice),
		t.SellDate.Format(time.RFC3339),
		f(t.Profit),
		f(t.ROI),
		t.Reason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.RunID,
		e.Date.Format(time.RFC3339),
		f(e.Balance),
		f(e.Equity),
		strconv.Itoa(e.OpenPositions),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) RecordRun(r RunSummary) error {
	err := j.runs.Write([]string{
		r.RunID,
		r.Created.Format(time.RFC3339),
		r.Strategy,
		r.Dataset,
		r.Start.Format(time.RFC3339),
		r.End.Format(time.RFC3339),
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Losses),
		f(r.StartBalance),
		f(r.EndBalance),
		f(r.NetPL),
		f(r.ReturnPct),
		f(r.WinRate),
		f(r.ProfitFactor),
	})
	if err != nil {
		return err
	}
	j.runs.Flush()
	return j.runs.Error()
}

func (j *CSVJournal) Close() error {
	for _, w := range []*csv.Writer{j.trades, j.equity, j.runs} {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	}
	for _, f := range j.files {
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
