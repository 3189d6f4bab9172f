package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTrades(t *testing.T, j *SQLite) {
	t.Helper()

	base := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 4; i++ {
		rec := testTrade("run-1", i)
		rec.SellDate = base.AddDate(0, 0, i)
		require.NoError(t, j.RecordTrade(rec))
	}
	other := testTrade("run-2", 1)
	other.SellDate = base.AddDate(0, 0, 2)
	require.NoError(t, j.RecordTrade(other))
}

func TestGetTradeNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	_, err := j.GetTrade("run-1", 99)
	assert.ErrorContains(t, err, "not found")

	_, err = j.GetRun("nonesuch")
	assert.ErrorContains(t, err, "not found")
}

func TestListTradesByRun(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	seedTrades(t, j)

	got, err := j.ListTradesByRun("run-1")
	require.NoError(t, err)
	require.Len(t, got, 4)

	for i, rec := range got {
		assert.Equal(t, i+1, rec.TradeID, "trades ordered by trade id")
		assert.Equal(t, "run-1", rec.RunID)
	}

	empty, err := j.ListTradesByRun("run-3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListTradesClosedBetween(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	seedTrades(t, j)

	start := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)

	got, err := j.ListTradesClosedBetween(start, end)
	require.NoError(t, err)

	// run-1 trades 2,3,4 sold on 3/5, 3/6, 3/7 and run-2 trade 1 on 3/5;
	// the end bound is exclusive so 3/7 is out.
	require.Len(t, got, 3)
	for _, rec := range got {
		assert.False(t, rec.SellDate.Before(start))
		assert.True(t, rec.SellDate.Before(end))
	}
	assert.True(t, sortedBySellDate(got))
}

func sortedBySellDate(recs []TradeRecord) bool {
	for i := 1; i < len(recs); i++ {
		if recs[i].SellDate.Before(recs[i-1].SellDate) {
			return false
		}
	}
	return true
}
