package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// dateLayout is how observation dates are stored in the database.
const dateLayout = "2006-01-02"

// SQLite is a Store over a SQLite database of daily observation tables.
// Per-stock tables carry (stock_id, date, field...) columns; macro tables
// carry (date, field...) only.
type SQLite struct {
	db *sql.DB

	hasStockID map[string]bool
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &SQLite{db: db, hasStockID: make(map[string]bool)}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }

// DB exposes the underlying handle, e.g. for test fixtures.
func (s *SQLite) DB() *sql.DB { return s.db }

func (s *SQLite) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (s *SQLite) ListColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		if name == "stock_id" {
			s.hasStockID[table] = true
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func (s *SQLite) ListDates(ctx context.Context, table string) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT DISTINCT date FROM %q ORDER BY date`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		d, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", table, err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// Query returns field's rows with start <= date < end. Table and field names
// come from the cache's introspected registry, never from user input.
func (s *SQLite) Query(ctx context.Context, table, field string, start, end time.Time) ([]Row, error) {
	if _, ok := s.hasStockID[table]; !ok {
		// Introspection populates the stock_id map as a side effect.
		if _, err := s.ListColumns(ctx, table); err != nil {
			return nil, err
		}
	}

	var q string
	if s.hasStockID[table] {
		q = fmt.Sprintf(`SELECT stock_id, date, %q FROM %q WHERE date >= ? AND date < ?`, field, table)
	} else {
		q = fmt.Sprintf(`SELECT '', date, %q FROM %q WHERE date >= ? AND date < ?`, field, table)
	}

	rows, err := s.db.QueryContext(ctx, q, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			stockID string
			raw     string
			value   sql.NullFloat64
		)
		if err := rows.Scan(&stockID, &raw, &value); err != nil {
			return nil, err
		}
		if !value.Valid {
			continue
		}
		d, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", table, err)
		}
		out = append(out, Row{StockID: stockID, Date: d, Value: value.Float64})
	}
	return out, rows.Err()
}

func parseDate(raw string) (time.Time, error) {
	if len(raw) > len(dateLayout) {
		// Tolerate datetime-style storage ("2025-03-14 00:00:00").
		raw = raw[:len(dateLayout)]
	}
	d, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", raw, err)
	}
	return d, nil
}
