package sim

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/blindtrader/journal"
	"github.com/rustyeddy/blindtrader/market"
	"github.com/rustyeddy/blindtrader/pkg/id"
)

var (
	ErrCursorOutOfRange = errors.New("cursor out of range")
	ErrInvalidCapital   = errors.New("capital must be positive and finite")
	ErrNoSeries         = errors.New("series is required")
)

type State int

const (
	Flat State = iota
	Holding
	Finished
)

func (s State) String() string {
	switch s {
	case Flat:
		return "FLAT"
	case Holding:
		return "HOLDING"
	case Finished:
		return "FINISHED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Ledger holds realized capital and the equity marked to the current sample.
type Ledger struct {
	BaseCapital float64
	LiveEquity  float64
}

// Frame is what the presentation layer needs after every tick.
type Frame struct {
	SessionID     string
	Cursor        int
	Time          time.Time
	Price         float64
	BaseCapital   float64
	LiveEquity    float64
	Holding       bool
	UnrealizedPct float64
	// Significant is set while holding when the price moved more than the
	// configured threshold since the previous sample.
	Significant bool
}

// Result is emitted once when a session finishes.
type Result struct {
	SessionID      string
	InitialCapital float64
	FinalCapital   float64
	Stats          Statistics
	Trades         []TradeRecord
}

type Option func(*Engine)

func WithJournal(j journal.Journal) Option {
	return func(e *Engine) {
		if j != nil {
			e.journal = j
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithInstrument labels journal records. The engine never shows the name.
func WithInstrument(name, ticker string) Option {
	return func(e *Engine) {
		e.name = name
		e.ticker = ticker
	}
}

// WithSignificantMove sets the per-tick move that flags Frame.Significant.
func WithSignificantMove(threshold float64) Option {
	return func(e *Engine) { e.significant = threshold }
}

// Engine is the position and ledger state machine for one instrument
// session: FLAT -> HOLDING -> FLAT ... -> FINISHED.
//
// Engine is not safe for concurrent use. Callers serialize ticks and intents
// (game.Session does this with a single mutex).
type Engine struct {
	series *market.Series
	cursor int

	initial float64
	ledger  Ledger
	pos     *Position
	trades  []TradeRecord
	stats   Statistics

	finished  bool
	sessionID string

	name        string
	ticker      string
	significant float64

	journal journal.Journal
	log     *zap.Logger
	now     func() time.Time
}

func NewEngine(series *market.Series, capital float64, opts ...Option) (*Engine, error) {
	if series == nil || series.Len() == 0 {
		return nil, ErrNoSeries
	}
	if !validCapital(capital) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCapital, capital)
	}

	e := &Engine{
		series:      series,
		significant: 0.01,
		journal:     journal.Discard,
		log:         zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset(capital)
	return e, nil
}

func validCapital(c float64) bool {
	return c > 0 && !math.IsInf(c, 0) && !math.IsNaN(c)
}

// Reset clears the position, trade history and statistics and starts a new
// session with base and live capital at capital. It must run before each
// instrument is played.
func (e *Engine) Reset(capital float64) {
	e.cursor = 0
	e.initial = capital
	e.ledger = Ledger{BaseCapital: capital, LiveEquity: capital}
	e.pos = nil
	e.trades = nil
	e.stats = NewStatistics()
	e.finished = false
	e.sessionID = id.New()
}

// Seek places the cursor before play begins, typically at the last sample of
// the initially visible window.
func (e *Engine) Seek(cursor int) error {
	if cursor < 0 || cursor > e.series.LastIndex() {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrCursorOutOfRange, cursor, e.series.LastIndex())
	}
	e.cursor = cursor
	e.mark()
	return nil
}

// Tick moves the cursor forward and re-marks live equity. Cursors that go
// backwards or past the end are ignored, as is anything after Finish.
func (e *Engine) Tick(cursor int) Frame {
	if e.finished || cursor < e.cursor || cursor > e.series.LastIndex() {
		return e.Frame()
	}
	e.cursor = cursor
	f := e.mark()

	if err := e.journal.RecordEquity(journal.EquitySnapshot{
		SessionID: e.sessionID,
		Cursor:    f.Cursor,
		Time:      f.Time,
		Price:     f.Price,
		Balance:   f.BaseCapital,
		Equity:    f.LiveEquity,
		Holding:   f.Holding,
	}); err != nil {
		e.log.Warn("record equity", zap.String("session_id", e.sessionID), zap.Error(err))
	}
	return f
}

// mark recomputes LiveEquity from BaseCapital and the open position.
func (e *Engine) mark() Frame {
	if e.pos == nil {
		e.ledger.LiveEquity = e.ledger.BaseCapital
		return e.Frame()
	}
	pct := e.pos.UnrealizedPct(e.series.Price(e.cursor))
	e.ledger.LiveEquity = ApplyPnL(e.ledger.BaseCapital, pct)
	return e.Frame()
}

// Open starts a long at the current sample. It does nothing while holding,
// after Finish, or on the final sample where no tick is left to resolve it.
func (e *Engine) Open() bool {
	if e.finished || e.pos != nil || e.cursor >= e.series.LastIndex() {
		return false
	}
	s := e.series.At(e.cursor)
	e.pos = &Position{EntryPrice: s.Price, EntryIndex: e.cursor, EntryTime: s.Time}
	e.ledger.LiveEquity = e.ledger.BaseCapital

	e.log.Debug("position opened",
		zap.String("session_id", e.sessionID),
		zap.Int("cursor", e.cursor),
		zap.Float64("price", s.Price))
	return true
}

// Close realizes the open position at the current sample. Closing while flat
// is a no-op so duplicate release events are harmless.
func (e *Engine) Close() (TradeRecord, bool) {
	if e.finished || e.pos == nil {
		return TradeRecord{}, false
	}
	return e.closeAt(e.cursor, Manual), true
}

func (e *Engine) closeAt(idx int, reason CloseReason) TradeRecord {
	s := e.series.At(idx)
	pct := e.pos.UnrealizedPct(s.Price)
	before := e.ledger.BaseCapital
	after := ApplyPnL(before, pct)

	rec := TradeRecord{
		ID:         id.New(),
		Start:      e.pos.point(),
		End:        Point{Index: idx, Time: s.Time, Price: s.Price},
		PnLPercent: pct,
		Reason:     reason,
	}

	e.ledger = Ledger{BaseCapital: after, LiveEquity: after}
	e.trades = append(e.trades, rec)
	e.stats.Record(pct)
	e.pos = nil

	if err := e.journal.RecordTrade(journal.TradeRecord{
		TradeID:       rec.ID,
		SessionID:     e.sessionID,
		Instrument:    e.ticker,
		EntryIndex:    rec.Start.Index,
		ExitIndex:     rec.End.Index,
		EntryPrice:    rec.Start.Price,
		ExitPrice:     rec.End.Price,
		OpenTime:      rec.Start.Time,
		CloseTime:     rec.End.Time,
		PnLPercent:    pct,
		CapitalBefore: before,
		CapitalAfter:  after,
		Reason:        string(reason),
	}); err != nil {
		e.log.Warn("record trade", zap.String("trade_id", rec.ID), zap.Error(err))
	}

	e.log.Debug("position closed",
		zap.String("session_id", e.sessionID),
		zap.String("reason", string(reason)),
		zap.Int("cursor", idx),
		zap.Float64("pnl_pct", pct),
		zap.Float64("capital", after))
	return rec
}

// Finish handles the end of the replay. An open position is force-closed
// against the final sample first. The Result is returned exactly once; later
// calls report ok=false until Reset.
func (e *Engine) Finish() (Result, bool) {
	if e.finished {
		return Result{}, false
	}
	if e.pos != nil {
		e.cursor = e.series.LastIndex()
		e.closeAt(e.cursor, EndOfReplay)
	}
	e.finished = true
	e.ledger.LiveEquity = e.ledger.BaseCapital

	res := Result{
		SessionID:      e.sessionID,
		InitialCapital: e.initial,
		FinalCapital:   e.ledger.BaseCapital,
		Stats:          e.stats,
		Trades:         e.Trades(),
	}

	if err := e.journal.RecordSession(journal.SessionRecord{
		SessionID:      e.sessionID,
		Instrument:     e.name,
		Ticker:         e.ticker,
		Created:        e.now(),
		InitialCapital: res.InitialCapital,
		FinalCapital:   res.FinalCapital,
		Trades:         res.Stats.TradeCount,
		Wins:           res.Stats.WinningTrades,
		BestPct:        res.Stats.BestTradePct,
		WorstPct:       res.Stats.WorstTradePct,
	}); err != nil {
		e.log.Warn("record session", zap.String("session_id", e.sessionID), zap.Error(err))
	}
	return res, true
}

func (e *Engine) State() State {
	switch {
	case e.finished:
		return Finished
	case e.pos != nil:
		return Holding
	default:
		return Flat
	}
}

func (e *Engine) Cursor() int             { return e.cursor }
func (e *Engine) Ledger() Ledger          { return e.ledger }
func (e *Engine) Stats() Statistics       { return e.stats }
func (e *Engine) SessionID() string       { return e.sessionID }
func (e *Engine) Series() *market.Series  { return e.series }
func (e *Engine) InitialCapital() float64 { return e.initial }

// Position returns the open position, if any.
func (e *Engine) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}
	return *e.pos, true
}

// Trades returns a copy of the closed-trade history.
func (e *Engine) Trades() []TradeRecord {
	out := make([]TradeRecord, len(e.trades))
	copy(out, e.trades)
	return out
}

// Frame reports the current state without changing it.
func (e *Engine) Frame() Frame {
	s := e.series.At(e.cursor)
	f := Frame{
		SessionID:   e.sessionID,
		Cursor:      e.cursor,
		Time:        s.Time,
		Price:       s.Price,
		BaseCapital: e.ledger.BaseCapital,
		LiveEquity:  e.ledger.LiveEquity,
		Holding:     e.pos != nil,
	}
	if e.pos != nil {
		f.UnrealizedPct = e.pos.UnrealizedPct(s.Price)
		if e.cursor > 0 && e.significant > 0 {
			prev := e.series.Price(e.cursor - 1)
			f.Significant = math.Abs(s.Price-prev)/prev > e.significant
		}
	}
	return f
}
