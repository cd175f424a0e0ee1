package journal

import (
	"database/sql"
	"math"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// The replay clock writes from its own goroutine while the CLI reads.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, session_id, instrument, entry_index, exit_index, entry_price, exit_price,
		 open_time, close_time, pnl_pct, capital_before, capital_after, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.SessionID, t.Instrument, t.EntryIndex, t.ExitIndex, t.EntryPrice, t.ExitPrice,
		t.OpenTime, t.CloseTime, t.PnLPercent, t.CapitalBefore, t.CapitalAfter, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(session_id, cursor, time, price, balance, equity, holding)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Cursor, e.Time, e.Price, e.Balance, e.Equity, e.Holding,
	)
	return err
}

func (j *SQLite) RecordSession(s SessionRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO sessions
		(session_id, instrument, ticker, created, initial_capital, final_capital, trades, wins, best_pct, worst_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.Instrument, s.Ticker, s.Created, s.InitialCapital, s.FinalCapital,
		s.Trades, s.Wins, finiteOrNull(s.BestPct), finiteOrNull(s.WorstPct),
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func finiteOrNull(x float64) sql.NullFloat64 {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: x, Valid: true}
}

func orSentinel(x sql.NullFloat64, sentinel float64) float64 {
	if !x.Valid {
		return sentinel
	}
	return x.Float64
}
