package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	trade_id INTEGER NOT NULL,
	code TEXT NOT NULL,
	volume REAL NOT NULL,
	buy_price REAL NOT NULL,
	buy_date DATETIME NOT NULL,
	sell_price REAL NOT NULL,
	sell_date DATETIME NOT NULL,
	profit REAL NOT NULL,
	roi REAL NOT NULL,
	reason TEXT NOT NULL,
	PRIMARY KEY (run_id, trade_id)
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	date DATETIME NOT NULL,
	balance REAL NOT NULL,
	equity REAL NOT NULL,
	open_positions INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	dataset TEXT NOT NULL,
	config BLOB,
	start_date DATETIME NOT NULL,
	end_date DATETIME NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	start_balance REAL NOT NULL,
	end_balance REAL NOT NULL,
	net_pl REAL NOT NULL,
	return_pct REAL NOT NULL,
	win_rate REAL NOT NULL,
	profit_factor REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_sell_date ON trades(sell_date);
CREATE INDEX IF NOT EXISTS idx_equity_date ON equity(date);
`
