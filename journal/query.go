package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
)

const tradeColumns = `trade_id, session_id, instrument, entry_index, exit_index, entry_price, exit_price,
	open_time, close_time, pnl_pct, capital_before, capital_after, reason`

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (TradeRecord, error) {
	var rec TradeRecord
	err := s.Scan(
		&rec.TradeID,
		&rec.SessionID,
		&rec.Instrument,
		&rec.EntryIndex,
		&rec.ExitIndex,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.OpenTime,
		&rec.CloseTime,
		&rec.PnLPercent,
		&rec.CapitalBefore,
		&rec.CapitalAfter,
		&rec.Reason,
	)
	return rec, err
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesBySession returns a session's trades in the order they closed.
func (j *SQLite) ListTradesBySession(sessionID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`SELECT `+tradeColumns+`
		FROM trades
		WHERE session_id = ?
		ORDER BY exit_index ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBySession returns the equity curve of one session.
func (j *SQLite) ListEquityBySession(sessionID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT session_id, cursor, time, price, balance, equity, holding
		FROM equity
		WHERE session_id = ?
		ORDER BY cursor ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.SessionID, &e.Cursor, &e.Time, &e.Price, &e.Balance, &e.Equity, &e.Holding); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSessions returns the most recent sessions, newest first.
func (j *SQLite) ListSessions(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.Query(`
		SELECT session_id, instrument, ticker, created, initial_capital, final_capital, trades, wins, best_pct, worst_pct
		FROM sessions
		ORDER BY created DESC, session_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var (
			s           SessionRecord
			best, worst sql.NullFloat64
		)
		if err := rows.Scan(
			&s.SessionID,
			&s.Instrument,
			&s.Ticker,
			&s.Created,
			&s.InitialCapital,
			&s.FinalCapital,
			&s.Trades,
			&s.Wins,
			&best,
			&worst,
		); err != nil {
			return nil, err
		}
		s.BestPct = orSentinel(best, math.Inf(-1))
		s.WorstPct = orSentinel(worst, math.Inf(1))
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
