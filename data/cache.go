package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrUnknownField means the field exists in no table of the store.
	ErrUnknownField = errors.New("data: unknown field")

	// ErrFieldNotInTable means the field exists, but not in the requested
	// table.
	ErrFieldNotInTable = errors.New("data: field not in table")
)

type cacheKey struct {
	table string
	field string
}

type cacheEntry struct {
	frame *Frame
	span  Span
}

// Cache resolves windowed history requests against a Store, keeping every
// fetched (table, field) window in memory for the life of the process.
//
// A Cache is single-owner state: one backtest run, one Cache. It is not
// safe for concurrent use; concurrent runs need one instance each.
type Cache struct {
	store   Store
	log     *slog.Logger
	caching bool

	fields map[string][]string // field -> tables carrying it
	macro  map[string]bool     // table -> has no stock_id column
	index  *DateIndex

	entries map[cacheKey]*cacheEntry
}

// Option configures a Cache.
type Option func(*Cache)

// WithCaching toggles window reuse. Disabled, every Get queries the store;
// fetched windows are still remembered so a later enable benefits.
func WithCaching(on bool) Option {
	return func(c *Cache) { c.caching = on }
}

// WithLogger sets the cache's logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// NewCache introspects the store's schema once, builds the field registry
// and per-table date index, and returns a ready cache. Caching is on by
// default.
func NewCache(ctx context.Context, store Store, opts ...Option) (*Cache, error) {
	c := &Cache{
		store:   store,
		log:     slog.Default(),
		caching: true,
		fields:  make(map[string][]string),
		macro:   make(map[string]bool),
		entries: make(map[cacheKey]*cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}

	tables, err := store.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	tableDates := make(map[string][]time.Time, len(tables))
	for _, table := range tables {
		cols, err := store.ListColumns(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("list columns of %s: %w", table, err)
		}

		dated := false
		hasStockID := false
		for _, col := range cols {
			switch col {
			case "date":
				dated = true
			case "stock_id":
				hasStockID = true
			default:
				c.fields[col] = append(c.fields[col], table)
			}
		}
		if !dated {
			continue
		}
		c.macro[table] = !hasStockID

		dates, err := store.ListDates(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("list dates of %s: %w", table, err)
		}
		tableDates[table] = dates
	}
	c.index = NewDateIndex(tableDates)

	return c, nil
}

// Index exposes the per-table date index, e.g. for trading-calendar checks.
func (c *Cache) Index() *DateIndex { return c.index }

// Get returns the lookback most recent observations of field in table at or
// before asOf. A request fully inside an already-fetched window is served
// from memory; anything else queries the store for the union of the missing
// and covered windows and replaces the entry.
//
// Fewer known dates than lookback degrades to all of them (the frame is
// flagged Partial); none at all yields an empty frame. Both are soft.
func (c *Cache) Get(ctx context.Context, table, field string, asOf time.Time, lookback int) (*Frame, error) {
	if lookback < 1 {
		return nil, fmt.Errorf("data: lookback must be >= 1, got %d", lookback)
	}
	tables, ok := c.fields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	found := false
	for _, t := range tables {
		if t == table {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s not in %s (have %v)", ErrFieldNotInTable, field, table, tables)
	}

	span, partial, ok := c.index.SpanBefore(table, asOf, lookback)
	if !ok {
		// No observation at or before asOf at all.
		return newFrame(table, field, c.macro[table]).finalize(), nil
	}
	if partial {
		c.log.Warn("partial window",
			"table", table, "field", field,
			"as_of", asOf.Format(time.DateOnly), "lookback", lookback)
	}

	key := cacheKey{table: table, field: field}
	cached := c.entries[key]

	if c.caching && cached != nil && cached.span.Contains(span) {
		c.log.Debug("cache hit", "table", table, "field", field)
		out := cached.frame.Slice(span)
		out.Partial = partial
		return out, nil
	}

	// Fetch the union of the covered and requested windows so coverage
	// never shrinks.
	fetch := span
	if cached != nil {
		if cached.span.Start.Before(fetch.Start) {
			fetch.Start = cached.span.Start
		}
		if cached.span.End.After(fetch.End) {
			fetch.End = cached.span.End
		}
	}

	// End-exclusive guard: one day past the window end keeps the boundary
	// date's rows regardless of the store's time-of-day precision.
	rows, err := c.store.Query(ctx, table, field, fetch.Start, fetch.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	frame := newFrame(table, field, c.macro[table])
	for _, row := range rows {
		frame.set(row.Date, row.StockID, row.Value)
	}
	frame.finalize()

	c.entries[key] = &cacheEntry{frame: frame, span: fetch}
	c.log.Debug("cache fill",
		"table", table, "field", field,
		"start", fetch.Start.Format(time.DateOnly), "end", fetch.End.Format(time.DateOnly),
		"rows", len(rows))

	out := frame.Slice(span)
	out.Partial = partial
	return out, nil
}
