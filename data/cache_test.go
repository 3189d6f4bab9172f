package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twquant/trader/market"
)

// stubStore is an in-memory Store that counts range queries.
type stubStore struct {
	columns map[string][]string
	dates   map[string][]time.Time
	rows    map[string][]Row // keyed by table; all fields share one value set

	queries int
}

func (s *stubStore) ListTables(ctx context.Context) ([]string, error) {
	var out []string
	for table := range s.columns {
		out = append(out, table)
	}
	return out, nil
}

func (s *stubStore) ListColumns(ctx context.Context, table string) ([]string, error) {
	return s.columns[table], nil
}

func (s *stubStore) ListDates(ctx context.Context, table string) ([]time.Time, error) {
	return s.dates[table], nil
}

func (s *stubStore) Query(ctx context.Context, table, field string, start, end time.Time) ([]Row, error) {
	s.queries++
	var out []Row
	for _, r := range s.rows[table] {
		if !r.Date.Before(start) && r.Date.Before(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func newStubStore(t *testing.T) *stubStore {
	t.Helper()

	days := tradingDays(t)
	price := make([]Row, 0, 2*len(days))
	for i, d := range days {
		price = append(price,
			Row{StockID: "2330", Date: d, Value: 100 + float64(i)},
			Row{StockID: "1101", Date: d, Value: 50 + float64(i)},
		)
	}
	macro := make([]Row, 0, len(days))
	for i, d := range days {
		macro = append(macro, Row{Date: d, Value: 3000 + float64(i)})
	}

	return &stubStore{
		columns: map[string][]string{
			"price":          {"stock_id", "date", "close", "open"},
			"margin_balance": {"date", "balance"},
		},
		dates: map[string][]time.Time{
			"price":          days,
			"margin_balance": days,
		},
		rows: map[string][]Row{
			"price":          price,
			"margin_balance": macro,
		},
	}
}

func newTestCache(t *testing.T, store Store, opts ...Option) *Cache {
	t.Helper()
	c, err := NewCache(context.Background(), store, opts...)
	require.NoError(t, err)
	return c
}

func TestGetFieldValidation(t *testing.T) {
	t.Parallel()

	store := newStubStore(t)
	c := newTestCache(t, store)
	asOf := market.Day(2025, 3, 7)

	_, err := c.Get(context.Background(), "price", "nonesuch", asOf, 1)
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = c.Get(context.Background(), "margin_balance", "close", asOf, 1)
	assert.ErrorIs(t, err, ErrFieldNotInTable)

	_, err = c.Get(context.Background(), "price", "close", asOf, 0)
	assert.Error(t, err)

	assert.Zero(t, store.queries, "validation failures must not reach the store")
}

func TestGetCacheIdempotence(t *testing.T) {
	t.Parallel()

	store := newStubStore(t)
	c := newTestCache(t, store)
	asOf := market.Day(2025, 3, 7)

	first, err := c.Get(context.Background(), "price", "close", asOf, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, store.queries)

	second, err := c.Get(context.Background(), "price", "close", asOf, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, store.queries, "identical request must be a pure cache hit")

	assert.Equal(t, first.Dates(), second.Dates())
	v1, ok1 := first.Value(market.Day(2025, 3, 7), "2330")
	v2, ok2 := second.Value(market.Day(2025, 3, 7), "2330")
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, v1, v2)
}

func TestGetSubSpanMatchesFreshQuery(t *testing.T) {
	t.Parallel()

	days := tradingDays(t)
	asOf := market.Day(2025, 3, 7)

	warm := newStubStore(t)
	c := newTestCache(t, warm)

	_, err := c.Get(context.Background(), "price", "close", asOf, 5)
	require.NoError(t, err)
	require.Equal(t, 1, warm.queries)

	// Served from the covered window, no second store query.
	sub, err := c.Get(context.Background(), "price", "close", asOf, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, warm.queries)

	// A cold cache resolving the same sub-span returns identical data.
	cold := newTestCache(t, newStubStore(t))
	fresh, err := cold.Get(context.Background(), "price", "close", asOf, 2)
	require.NoError(t, err)

	assert.Equal(t, fresh.Dates(), sub.Dates())
	assert.Equal(t, []time.Time{days[3], days[4]}, sub.Dates())
	for _, d := range sub.Dates() {
		for _, code := range []string{"2330", "1101"} {
			want, _ := fresh.Value(d, code)
			got, ok := sub.Value(d, code)
			assert.True(t, ok)
			assert.Equal(t, want, got)
		}
	}
}

func TestGetExtendsCoverage(t *testing.T) {
	t.Parallel()

	store := newStubStore(t)
	c := newTestCache(t, store)

	// Warm an early window, then ask for a later non-overlapping one: the
	// refetch covers the union.
	_, err := c.Get(context.Background(), "price", "close", market.Day(2025, 3, 4), 2)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "price", "close", market.Day(2025, 3, 7), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, store.queries)

	// The whole range is now covered.
	full, err := c.Get(context.Background(), "price", "close", market.Day(2025, 3, 7), 5)
	require.NoError(t, err)
	assert.Equal(t, 2, store.queries)
	assert.Equal(t, 5, full.Len())
}

func TestGetPartialWindow(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, newStubStore(t))

	f, err := c.Get(context.Background(), "price", "close", market.Day(2025, 3, 7), 30)
	require.NoError(t, err)
	assert.True(t, f.Partial)
	assert.Equal(t, 5, f.Len())
}

func TestGetNoQualifyingDates(t *testing.T) {
	t.Parallel()

	store := newStubStore(t)
	c := newTestCache(t, store)

	f, err := c.Get(context.Background(), "price", "close", market.Day(2025, 1, 1), 3)
	require.NoError(t, err)
	assert.True(t, f.Empty())
	assert.Zero(t, store.queries)
}

func TestGetHolidayWindowIsEmptyNotError(t *testing.T) {
	t.Parallel()

	store := newStubStore(t)
	store.rows["price"] = nil // dates known, rows missing

	c := newTestCache(t, store)
	f, err := c.Get(context.Background(), "price", "close", market.Day(2025, 3, 7), 2)
	require.NoError(t, err)
	assert.True(t, f.Empty())
}

func TestGetCachingDisabled(t *testing.T) {
	t.Parallel()

	store := newStubStore(t)
	c := newTestCache(t, store, WithCaching(false))
	asOf := market.Day(2025, 3, 7)

	_, err := c.Get(context.Background(), "price", "close", asOf, 3)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "price", "close", asOf, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, store.queries, "disabled cache queries the store every time")
}

func TestGetMacroTable(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, newStubStore(t))

	f, err := c.Get(context.Background(), "margin_balance", "balance", market.Day(2025, 3, 7), 3)
	require.NoError(t, err)
	assert.True(t, f.Macro)
	assert.Empty(t, f.Codes())

	v, ok := f.MacroValue(market.Day(2025, 3, 7))
	assert.True(t, ok)
	assert.Equal(t, 3004.0, v)
}

func TestFrameColumnAndLatest(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, newStubStore(t))

	f, err := c.Get(context.Background(), "price", "close", market.Day(2025, 3, 7), 5)
	require.NoError(t, err)

	vals, ok := f.Column("2330")
	require.Len(t, vals, 5)
	assert.Equal(t, []float64{100, 101, 102, 103, 104}, vals)
	for _, o := range ok {
		assert.True(t, o)
	}

	latest, found := f.Latest("2330")
	assert.True(t, found)
	assert.Equal(t, 104.0, latest)

	_, found = f.Latest("9999")
	assert.False(t, found)
}
