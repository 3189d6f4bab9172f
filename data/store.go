// Package data answers "the last n observations of field f as of date d"
// against a historical store, caching fetched date windows so a backtest
// that replays the same window repeatedly hits the store once.
package data

import (
	"context"
	"time"
)

// Row is one observation returned by a Store range query. StockID is empty
// for macro/economic tables, which carry no per-stock dimension.
type Row struct {
	StockID string
	Date    time.Time
	Value   float64
}

// Store is the historical data collaborator. Queries are synchronous and
// return the complete result set for the requested range; duplicate
// (date, stock) keys are resolved upstream. The cache propagates store
// errors unchanged and never retries.
type Store interface {
	// ListTables names every table in the store.
	ListTables(ctx context.Context) ([]string, error)

	// ListColumns names the columns of table.
	ListColumns(ctx context.Context, table string) ([]string, error)

	// ListDates returns the distinct observation dates of table, ascending.
	ListDates(ctx context.Context, table string) ([]time.Time, error)

	// Query returns all rows of field in table with start <= date < end.
	Query(ctx context.Context, table, field string, start, end time.Time) ([]Row, error)
}
