package game

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/blindtrader/market"
	"github.com/rustyeddy/blindtrader/replay"
	"github.com/rustyeddy/blindtrader/sim"
)

func instrument(t *testing.T, name string, prices ...float64) *market.Instrument {
	t.Helper()
	t0 := time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC)
	samples := make([]market.Sample, len(prices))
	for i, p := range prices {
		samples[i] = market.Sample{Time: t0.AddDate(0, 0, i), Price: p, Benchmark: 2000 + 10*float64(i)}
	}
	s, err := market.NewSeries(samples)
	require.NoError(t, err)
	return &market.Instrument{Name: name, Ticker: name, Series: s}
}

type events struct {
	mu      sync.Mutex
	frames  chan sim.Frame
	trades  []sim.TradeRecord
	results []RoundResult
}

func newEvents() *events {
	return &events{frames: make(chan sim.Frame, 256)}
}

func (e *events) observer() Observer {
	return Observer{
		OnFrame: func(f sim.Frame) { e.frames <- f },
		OnTrade: func(tr sim.TradeRecord) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.trades = append(e.trades, tr)
		},
		OnResult: func(r RoundResult) {
			e.mu.Lock()
			defer e.mu.Unlock()
			e.results = append(e.results, r)
		},
	}
}

func (e *events) waitCursor(t *testing.T, cursor int) sim.Frame {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-e.frames:
			if f.Cursor == cursor {
				return f
			}
		case <-deadline:
			t.Fatalf("no frame for cursor %d", cursor)
		}
	}
}

func (e *events) snapshot() ([]sim.TradeRecord, []RoundResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sim.TradeRecord(nil), e.trades...), append([]RoundResult(nil), e.results...)
}

func manualSession(ev *events, visible int) (*Session, *replay.Manual) {
	m := replay.NewManual()
	cfg := DefaultSessionConfig()
	cfg.InitialVisible = visible
	s := NewSession(cfg,
		WithClock(replay.NewClock(replay.WithTicker(m.NewTicker))),
		WithObserver(ev.observer()))
	return s, m
}

// drain fires until the run stops. The End callback has returned by then.
func drain(m *replay.Manual) {
	for m.Fire() {
	}
}

func TestScriptedRound(t *testing.T) {
	t.Parallel()

	ev := newEvents()
	s, m := manualSession(ev, 1)
	script, err := replay.ParseScript("0:open,2:close")
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background(), instrument(t, "KO", 100, 105, 110, 95, 90), script))
	drain(m)

	res, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 550.0, res.FinalCapital, 1e-9)
	assert.InDelta(t, 10.0, res.UserReturnPct, 1e-9)
	assert.InDelta(t, -10.0, res.StockReturnPct, 1e-9)
	assert.InDelta(t, 2.0, res.BenchmarkReturnPct, 1e-9)
	assert.True(t, res.BeatMarket())
	assert.Equal(t, 1, res.Stats.TradeCount)

	trades, results := ev.snapshot()
	require.Len(t, trades, 1)
	assert.Equal(t, sim.Manual, trades[0].Reason)
	require.Len(t, results, 1)
	assert.Equal(t, res.SessionID, results[0].SessionID)
	assert.Equal(t, sim.Finished, s.State())
}

func TestForcedCloseIsReported(t *testing.T) {
	t.Parallel()

	ev := newEvents()
	s, m := manualSession(ev, 1)
	script, err := replay.ParseScript("2:open")
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background(), instrument(t, "KO", 100, 105, 110, 95, 90), script))
	drain(m)

	res, ok := s.Result()
	require.True(t, ok)
	assert.InDelta(t, 500*(90.0/110.0), res.FinalCapital, 1e-9)

	trades, _ := ev.snapshot()
	require.Len(t, trades, 1)
	assert.Equal(t, sim.EndOfReplay, trades[0].Reason)
	assert.Equal(t, 4, trades[0].End.Index)
}

func TestUserIntents(t *testing.T) {
	t.Parallel()

	ev := newEvents()
	s, m := manualSession(ev, 2)

	require.NoError(t, s.Start(context.Background(), instrument(t, "AAPL", 100, 100, 120, 150, 90, 95), nil))
	ev.waitCursor(t, 1)

	require.True(t, s.Toggle(), "press opens")
	assert.False(t, s.Open(), "second press is ignored")

	require.True(t, m.Fire())
	f := ev.waitCursor(t, 2)
	assert.True(t, f.Holding)
	assert.InDelta(t, 600.0, f.LiveEquity, 1e-9)

	require.True(t, m.Fire())
	ev.waitCursor(t, 3)
	require.True(t, s.Toggle(), "release closes")
	assert.False(t, s.Close(), "duplicate release is a no-op")

	drain(m)
	res, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 750.0, res.FinalCapital, 1e-9)
	assert.Len(t, s.Trades(), 1)
}

func TestRestartFencesStaleCallbacks(t *testing.T) {
	t.Parallel()

	ev := newEvents()
	s, m := manualSession(ev, 1)
	inst := instrument(t, "BTC", 100, 110, 120, 130)

	require.NoError(t, s.Start(context.Background(), inst, nil))
	s.mu.Lock()
	oldGen := s.gen
	s.mu.Unlock()
	require.True(t, s.Open())
	require.True(t, m.Fire())
	ev.waitCursor(t, 1)

	s.mu.Lock()
	oldDone := s.done
	s.mu.Unlock()

	require.NoError(t, s.Start(context.Background(), inst, nil))
	select {
	case <-oldDone:
	default:
		t.Fatal("waiters on the abandoned round were not released")
	}

	s.onTick(oldGen, 3)
	s.onEnd(oldGen, 3)

	f, ok := s.Frame()
	require.True(t, ok)
	assert.Equal(t, 0, f.Cursor, "stale tick ignored")
	assert.False(t, f.Holding, "reset cleared the position")
	assert.Equal(t, 500.0, f.BaseCapital)
	_, finished := s.Result()
	assert.False(t, finished, "stale end ignored")

	drain(m)
	res, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 500.0, res.FinalCapital)
	assert.Zero(t, res.Stats.TradeCount)
	assert.True(t, math.IsInf(res.Stats.BestTradePct, -1))
}

func TestStopAbandonsRound(t *testing.T) {
	t.Parallel()

	ev := newEvents()
	s, m := manualSession(ev, 1)
	require.NoError(t, s.Start(context.Background(), instrument(t, "KO", 1, 2, 3), nil))

	s.Stop()
	s.Stop()
	assert.False(t, m.Fire())

	_, err := s.Wait(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
	_, results := ev.snapshot()
	assert.Empty(t, results)
}

func TestStartRejectsShortSeries(t *testing.T) {
	t.Parallel()

	s := NewSession(DefaultSessionConfig())
	err := s.Start(context.Background(), instrument(t, "KO", 1, 2, 3), nil)
	assert.ErrorIs(t, err, replay.ErrInvalidInput)

	err = s.Start(context.Background(), nil, nil)
	assert.ErrorIs(t, err, replay.ErrInvalidInput)

	assert.False(t, s.Open())
	assert.False(t, s.Close())
	_, err = s.Wait(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestWaitHonorsContext(t *testing.T) {
	t.Parallel()

	ev := newEvents()
	s, _ := manualSession(ev, 1)
	require.NoError(t, s.Start(context.Background(), instrument(t, "KO", 1, 2, 3), nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	s.Stop()
}
