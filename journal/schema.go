// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	instrument TEXT NOT NULL,
	ticker TEXT NOT NULL,
	created DATETIME NOT NULL,
	initial_capital REAL NOT NULL,
	final_capital REAL NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	best_pct REAL,
	worst_pct REAL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	entry_index INTEGER NOT NULL,
	exit_index INTEGER NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL,
	pnl_pct REAL NOT NULL,
	capital_before REAL NOT NULL,
	capital_after REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_session ON trades(session_id);

CREATE TABLE IF NOT EXISTS equity (
	session_id TEXT NOT NULL,
	cursor INTEGER NOT NULL,
	time DATETIME NOT NULL,
	price REAL NOT NULL,
	balance REAL NOT NULL,
	equity REAL NOT NULL,
	holding INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_session ON equity(session_id, cursor);

CREATE TABLE IF NOT EXISTS scores (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	total_profit REAL NOT NULL,
	total_return REAL NOT NULL,
	created DATETIME NOT NULL
);
`
