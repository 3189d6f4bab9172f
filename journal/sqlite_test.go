package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func testTrade(runID string, tradeID int) TradeRecord {
	return TradeRecord{
		RunID:     runID,
		TradeID:   tradeID,
		Code:      "2330",
		Volume:    1000,
		BuyPrice:  100,
		BuyDate:   time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		SellPrice: 110,
		SellDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Profit:    9580.23,
		ROI:       9.58,
		Reason:    "TakeProfit",
	}
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('trades','equity','runs')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
	assert.True(t, found["runs"])
}

func TestSQLiteRecordTrade(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	rec := testTrade("run-1", 1)
	require.NoError(t, j.RecordTrade(rec))

	got, err := j.GetTrade("run-1", 1)
	require.NoError(t, err)

	assert.Equal(t, rec.RunID, got.RunID)
	assert.Equal(t, rec.TradeID, got.TradeID)
	assert.Equal(t, rec.Code, got.Code)
	assert.InDelta(t, rec.Volume, got.Volume, 1e-6)
	assert.InDelta(t, rec.BuyPrice, got.BuyPrice, 1e-9)
	assert.InDelta(t, rec.SellPrice, got.SellPrice, 1e-9)
	assert.True(t, got.BuyDate.Equal(rec.BuyDate))
	assert.True(t, got.SellDate.Equal(rec.SellDate))
	assert.InDelta(t, rec.Profit, got.Profit, 1e-6)
	assert.InDelta(t, rec.ROI, got.ROI, 1e-6)
	assert.Equal(t, rec.Reason, got.Reason)
}

func TestSQLiteDuplicateTradeRejected(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	require.NoError(t, j.RecordTrade(testTrade("run-1", 1)))
	assert.Error(t, j.RecordTrade(testTrade("run-1", 1)), "run_id+trade_id is the primary key")
	assert.NoError(t, j.RecordTrade(testTrade("run-2", 1)))
}

func TestSQLiteRecordEquity(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	rec := EquitySnapshot{
		RunID:         "run-1",
		Date:          time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		Balance:       900_000,
		Equity:        1_003_000,
		OpenPositions: 2,
	}
	require.NoError(t, j.RecordEquity(rec))

	got, err := j.ListEquityByRun("run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.True(t, got[0].Date.Equal(rec.Date))
	assert.InDelta(t, rec.Balance, got[0].Balance, 1e-6)
	assert.InDelta(t, rec.Equity, got[0].Equity, 1e-6)
	assert.Equal(t, rec.OpenPositions, got[0].OpenPositions)
}

func TestSQLiteRecordRun(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	rec := RunSummary{
		RunID:        "01JD0000000000000000000000",
		Created:      time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC),
		Strategy:     "SimpleLong",
		Dataset:      "backtest.db",
		Config:       []byte("min_change_pct: 8\n"),
		Start:        time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Trades:       3,
		Wins:         2,
		Losses:       1,
		StartBalance: 1_000_000,
		EndBalance:   1_012_345.67,
		NetPL:        12_345.67,
		ReturnPct:    1.23,
		WinRate:      0.6667,
		ProfitFactor: 2.5,
	}
	require.NoError(t, j.RecordRun(rec))

	got, err := j.GetRun(rec.RunID)
	require.NoError(t, err)

	assert.Equal(t, rec.Strategy, got.Strategy)
	assert.Equal(t, rec.Config, got.Config)
	assert.Equal(t, rec.Trades, got.Trades)
	assert.InDelta(t, rec.EndBalance, got.EndBalance, 1e-6)
	assert.InDelta(t, rec.WinRate, got.WinRate, 1e-6)
	assert.True(t, got.Start.Equal(rec.Start))
}
