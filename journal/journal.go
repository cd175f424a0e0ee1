// journal/journal.go
package journal

import "time"

// TradeRecord is one closed round trip, manual or forced at end of replay.
type TradeRecord struct {
	TradeID       string
	SessionID     string
	Instrument    string
	EntryIndex    int
	ExitIndex     int
	EntryPrice    float64
	ExitPrice     float64
	OpenTime      time.Time
	CloseTime     time.Time
	PnLPercent    float64
	CapitalBefore float64
	CapitalAfter  float64
	Reason        string
}

// EquitySnapshot is the ledger as seen on one replay tick.
type EquitySnapshot struct {
	SessionID string
	Cursor    int
	Time      time.Time
	Price     float64
	Balance   float64
	Equity    float64
	Holding   bool
}

// SessionRecord summarizes one finished instrument session.
//
// BestPct and WorstPct carry -Inf and +Inf when Trades == 0. Stores that
// cannot hold infinities persist NULL instead and restore the sentinels on read.
type SessionRecord struct {
	SessionID      string
	Instrument     string
	Ticker         string
	Created        time.Time
	InitialCapital float64
	FinalCapital   float64
	Trades         int
	Wins           int
	BestPct        float64
	WorstPct       float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	RecordSession(SessionRecord) error
	Close() error
}

// Discard is a Journal that drops everything.
var Discard Journal = discard{}

type discard struct{}

func (discard) RecordTrade(TradeRecord) error { return nil }
func (discard) RecordEquity(EquitySnapshot) error { return nil }
func (discard) RecordSession(SessionRecord) error { return nil }
func (discard) Close() error { return nil }
