// Package tickstore reads and writes intraday ticks in ClickHouse. The daily
// dataset answers everything the strategies ask for; the tick store exists
// for intraday inspection and tick-level replays.
package tickstore

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/twquant/trader/market"
)

// Schema creates the ticks table. MergeTree ordered by (stock_id, ts) keeps
// per-stock range scans cheap.
const Schema = `
CREATE TABLE IF NOT EXISTS ticks (
	stock_id   String,
	ts         DateTime64(3, 'UTC'),
	close      Float64,
	volume     Int64,
	bid_price  Float64,
	bid_volume Int64,
	ask_price  Float64,
	ask_volume Int64,
	tick_type  Int8
) ENGINE = MergeTree()
ORDER BY (stock_id, ts)
`

const tickColumns = `stock_id, ts, close, volume, bid_price, bid_volume, ask_price, ask_volume, tick_type`

type Config struct {
	Addr     string
	Database string
	Username string
	Password string
}

type Store struct {
	conn driver.Conn
}

func Open(cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("tickstore: addr is required")
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("tickstore: connect %s: %w", cfg.Addr, err)
	}
	return &Store{conn: conn}, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureSchema creates the ticks table if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.conn.Exec(ctx, Schema)
}

// Insert writes a batch of ticks.
func (s *Store) Insert(ctx context.Context, ticks []market.Tick) error {
	if len(ticks) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO ticks ("+tickColumns+")")
	if err != nil {
		return err
	}
	for _, t := range ticks {
		err := batch.Append(
			t.Code, t.Time, t.Close, t.Volume,
			t.BidPrice, t.BidVolume, t.AskPrice, t.AskVolume, t.TickType,
		)
		if err != nil {
			return err
		}
	}
	return batch.Send()
}

// Ticks returns a stock's ticks between the from and to dates inclusive, in
// time order. Dates are taken at day granularity, matching the daily store's
// end-inclusive convention.
func (s *Store) Ticks(ctx context.Context, stockID string, from, to time.Time) ([]market.Tick, error) {
	start, end := dayRange(from, to)

	rows, err := s.conn.Query(ctx, `
		SELECT `+tickColumns+`
		FROM ticks
		WHERE stock_id = ? AND ts >= ? AND ts < ?
		ORDER BY ts`, stockID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Tick
	for rows.Next() {
		t, err := scanTick(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// LastTick returns the final tick of a stock's session on day. ok is false
// when the stock did not trade that day.
func (s *Store) LastTick(ctx context.Context, stockID string, day time.Time) (market.Tick, bool, error) {
	start, end := dayRange(day, day)

	rows, err := s.conn.Query(ctx, `
		SELECT `+tickColumns+`
		FROM ticks
		WHERE stock_id = ? AND ts >= ? AND ts < ?
		ORDER BY ts DESC
		LIMIT 1`, stockID, start, end)
	if err != nil {
		return market.Tick{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return market.Tick{}, false, rows.Err()
	}
	t, err := scanTick(rows)
	if err != nil {
		return market.Tick{}, false, err
	}
	return t, true, nil
}

func scanTick(rows driver.Rows) (market.Tick, error) {
	var t market.Tick
	err := rows.Scan(
		&t.Code, &t.Time, &t.Close, &t.Volume,
		&t.BidPrice, &t.BidVolume, &t.AskPrice, &t.AskVolume, &t.TickType,
	)
	return t, err
}

// dayRange widens [from, to] to a half-open timestamp range covering whole
// sessions: midnight of from up to but excluding midnight after to.
func dayRange(from, to time.Time) (time.Time, time.Time) {
	return market.Midnight(from), market.Midnight(to).AddDate(0, 0, 1)
}
