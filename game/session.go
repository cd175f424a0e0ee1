// Package game runs blind trading rounds: it ties the replay clock to the
// position engine and scores the outcome.
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/blindtrader/journal"
	"github.com/rustyeddy/blindtrader/market"
	"github.com/rustyeddy/blindtrader/replay"
	"github.com/rustyeddy/blindtrader/sim"
)

var (
	ErrNotStarted = errors.New("session not started")
	ErrSuperseded = errors.New("round abandoned before it finished")
)

// Observer receives session output. Frames and trades from the clock arrive
// on the clock goroutine; those caused by Open or Close arrive on the caller's
// goroutine. Nil funcs are skipped.
type Observer struct {
	OnFrame  func(sim.Frame)
	OnTrade  func(sim.TradeRecord)
	OnResult func(RoundResult)
}

type SessionConfig struct {
	Capital         float64
	Interval        time.Duration
	InitialVisible  int
	SignificantMove float64
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Capital:         500,
		Interval:        80 * time.Millisecond,
		InitialVisible:  20,
		SignificantMove: 0.01,
	}
}

type SessionOption func(*Session)

func WithObserver(o Observer) SessionOption {
	return func(s *Session) { s.obs = o }
}

func WithJournal(j journal.Journal) SessionOption {
	return func(s *Session) {
		if j != nil {
			s.journal = j
		}
	}
}

func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces the session's replay clock, typically with one built on
// a replay.Manual ticker.
func WithClock(c *replay.Clock) SessionOption {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// Session plays one instrument at a time. A single mutex serializes ticks,
// intents, restarts and the finish; each Start bumps a generation so
// callbacks from a superseded run are discarded.
type Session struct {
	mu sync.Mutex

	cfg     SessionConfig
	clock   *replay.Clock
	engine  *sim.Engine
	inst    *market.Instrument
	script  *replay.Script
	gen     uint64
	result  *RoundResult
	done    chan struct{}
	obs     Observer
	journal journal.Journal
	log     *zap.Logger
}

func NewSession(cfg SessionConfig, opts ...SessionOption) *Session {
	s := &Session{
		cfg:     cfg,
		journal: journal.Discard,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = replay.NewClock(replay.WithLogger(s.log))
	}
	return s
}

// Start begins a round on inst with capital reset to the configured starting
// capital. A round already in progress is abandoned without a result. script
// may be nil.
func (s *Session) Start(ctx context.Context, inst *market.Instrument, script *replay.Script) error {
	if inst == nil || inst.Series == nil {
		return fmt.Errorf("%w: no instrument", replay.ErrInvalidInput)
	}
	if n := inst.Series.Len(); n < s.cfg.InitialVisible || s.cfg.InitialVisible < 1 {
		return fmt.Errorf("%w: %d samples, %d initially visible", replay.ErrInvalidInput, n, s.cfg.InitialVisible)
	}

	s.mu.Lock()
	s.abandon()
	gen := s.gen

	if err := s.prepare(inst); err != nil {
		s.mu.Unlock()
		return err
	}
	s.inst = inst
	s.script = script
	s.result = nil
	s.done = make(chan struct{})

	var trade *sim.TradeRecord
	if rec, ok := s.applyScript(s.engine.Cursor()); ok {
		trade = &rec
	}
	frame := s.engine.Frame()

	err := s.clock.Start(ctx, inst.Series, replay.Options{
		Interval:       s.cfg.Interval,
		InitialVisible: s.cfg.InitialVisible,
	}, replay.Handler{
		Tick: func(c int) { s.onTick(gen, c) },
		End:  func(last int) { s.onEnd(gen, last) },
	})
	if err != nil {
		s.done = nil
		s.mu.Unlock()
		return err
	}
	obs := s.obs
	s.mu.Unlock()

	s.log.Info("session started",
		zap.String("session_id", frame.SessionID),
		zap.Int("samples", inst.Series.Len()),
		zap.Float64("capital", s.cfg.Capital))

	notifyTrade(obs, trade)
	notifyFrame(obs, frame)
	return nil
}

// prepare resets the engine for inst, reusing it when the series is the same.
func (s *Session) prepare(inst *market.Instrument) error {
	if s.engine != nil && s.engine.Series() == inst.Series {
		s.engine.Reset(s.cfg.Capital)
	} else {
		e, err := sim.NewEngine(inst.Series, s.cfg.Capital,
			sim.WithJournal(s.journal),
			sim.WithLogger(s.log),
			sim.WithInstrument(inst.Name, inst.Ticker),
			sim.WithSignificantMove(s.cfg.SignificantMove))
		if err != nil {
			return err
		}
		s.engine = e
	}
	return s.engine.Seek(s.cfg.InitialVisible - 1)
}

// applyScript runs the scripted intent at cursor. Callers hold s.mu.
func (s *Session) applyScript(cursor int) (sim.TradeRecord, bool) {
	in, ok := s.script.At(cursor)
	if !ok {
		return sim.TradeRecord{}, false
	}
	switch in {
	case replay.Open:
		s.engine.Open()
	case replay.Close:
		return s.engine.Close()
	}
	return sim.TradeRecord{}, false
}

func (s *Session) onTick(gen uint64, cursor int) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.engine.Tick(cursor)
	var trade *sim.TradeRecord
	if rec, ok := s.applyScript(cursor); ok {
		trade = &rec
	}
	frame := s.engine.Frame()
	obs := s.obs
	s.mu.Unlock()

	notifyTrade(obs, trade)
	notifyFrame(obs, frame)
}

func (s *Session) onEnd(gen uint64, last int) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	holding := s.engine.State() == sim.Holding
	res, ok := s.engine.Finish()
	if !ok {
		s.mu.Unlock()
		return
	}
	var forced *sim.TradeRecord
	if holding && len(res.Trades) > 0 {
		forced = &res.Trades[len(res.Trades)-1]
	}
	rr := NewRoundResult(s.inst, res)
	s.result = &rr
	close(s.done)
	frame := s.engine.Frame()
	obs := s.obs
	s.mu.Unlock()

	s.log.Info("session finished",
		zap.String("session_id", rr.SessionID),
		zap.String("ticker", rr.Ticker),
		zap.Int("last", last),
		zap.Int("trades", rr.Stats.TradeCount),
		zap.Float64("final_capital", rr.FinalCapital),
		zap.Float64("user_return_pct", rr.UserReturnPct))

	notifyTrade(obs, forced)
	notifyFrame(obs, frame)
	if obs.OnResult != nil {
		obs.OnResult(rr)
	}
}

// Open is the press intent. It reports whether a position was opened.
func (s *Session) Open() bool {
	s.mu.Lock()
	if s.engine == nil || !s.engine.Open() {
		s.mu.Unlock()
		return false
	}
	frame := s.engine.Frame()
	obs := s.obs
	s.mu.Unlock()

	notifyFrame(obs, frame)
	return true
}

// Close is the release intent. It reports whether a position was closed.
func (s *Session) Close() bool {
	s.mu.Lock()
	if s.engine == nil {
		s.mu.Unlock()
		return false
	}
	rec, ok := s.engine.Close()
	if !ok {
		s.mu.Unlock()
		return false
	}
	frame := s.engine.Frame()
	obs := s.obs
	s.mu.Unlock()

	notifyTrade(obs, &rec)
	notifyFrame(obs, frame)
	return true
}

// Toggle opens when flat and closes when holding.
func (s *Session) Toggle() bool {
	if s.State() == sim.Holding {
		return s.Close()
	}
	return s.Open()
}

// Stop abandons the current round. No result is produced.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abandon()
}

// abandon fences off the current run and releases anyone waiting on an
// unfinished round. Callers hold s.mu.
func (s *Session) abandon() {
	s.clock.Stop()
	s.gen++
	if s.done != nil && s.result == nil {
		close(s.done)
		s.done = nil
	}
}

// Wait blocks until the current round finishes or ctx is done.
func (s *Session) Wait(ctx context.Context) (RoundResult, error) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return RoundResult{}, ErrNotStarted
	}

	select {
	case <-done:
	case <-ctx.Done():
		return RoundResult{}, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil || s.done != done {
		return RoundResult{}, ErrSuperseded
	}
	return *s.result, nil
}

func (s *Session) State() sim.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return sim.Flat
	}
	return s.engine.State()
}

func (s *Session) Frame() (sim.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return sim.Frame{}, false
	}
	return s.engine.Frame(), true
}

func (s *Session) Trades() []sim.TradeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil
	}
	return s.engine.Trades()
}

func (s *Session) Instrument() *market.Instrument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inst
}

// Result returns the finished round, if the current one has finished.
func (s *Session) Result() (RoundResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return RoundResult{}, false
	}
	return *s.result, true
}

func notifyFrame(obs Observer, f sim.Frame) {
	if obs.OnFrame != nil {
		obs.OnFrame(f)
	}
}

func notifyTrade(obs Observer, t *sim.TradeRecord) {
	if t != nil && obs.OnTrade != nil {
		obs.OnTrade(*t)
	}
}
