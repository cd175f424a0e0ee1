package game

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/blindtrader/replay"
	"github.com/rustyeddy/blindtrader/sim"
)

func TestPlayAllResetsCapitalEachRound(t *testing.T) {
	t.Parallel()

	cfg := DefaultSessionConfig()
	cfg.Interval = time.Millisecond
	cfg.InitialVisible = 1
	s := NewSession(cfg)

	win, err := replay.ParseScript("0:open,1:close")
	require.NoError(t, err)
	lose, err := replay.ParseScript("1:open")
	require.NoError(t, err)

	g, err := NewGame(s, []Round{
		{Instrument: instrument(t, "KO", 100, 120, 130), Script: win},
		{Instrument: instrument(t, "BTC", 100, 200, 100), Script: lose},
		{Instrument: instrument(t, "AAPL", 50, 50, 50)},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sum, err := g.PlayAll(ctx)
	require.NoError(t, err)

	h := g.History()
	require.Len(t, h, 3)
	for _, r := range h {
		assert.Equal(t, 500.0, r.InitialCapital)
	}
	assert.InDelta(t, 600.0, h[0].FinalCapital, 1e-9)
	assert.InDelta(t, 250.0, h[1].FinalCapital, 1e-9)
	assert.Equal(t, 500.0, h[2].FinalCapital)

	assert.True(t, g.Over())
	assert.Equal(t, 3, sum.Rounds)
	assert.InDelta(t, -150.0, sum.TotalProfit, 1e-9)
	assert.Equal(t, 2, sum.TotalTrades)
	assert.Equal(t, 1, sum.TotalWins)
	assert.InDelta(t, 50.0, sum.WinRatePct, 1e-9)
	assert.InDelta(t, 0.2, sum.BestTradePct, 1e-12)
}

func TestNewGameValidation(t *testing.T) {
	t.Parallel()

	_, err := NewGame(NewSession(DefaultSessionConfig()), nil)
	assert.ErrorIs(t, err, ErrNoRounds)

	_, err = NewGame(NewSession(DefaultSessionConfig()), []Round{{}})
	assert.ErrorIs(t, err, replay.ErrInvalidInput)
}

func TestGameNavigation(t *testing.T) {
	t.Parallel()

	g, err := NewGame(NewSession(DefaultSessionConfig()), []Round{
		{Instrument: instrument(t, "A", 1, 2)},
		{Instrument: instrument(t, "B", 1, 2)},
	})
	require.NoError(t, err)

	r, ok := g.Current()
	require.True(t, ok)
	assert.Equal(t, "A", r.Instrument.Ticker)
	assert.True(t, g.Next())
	assert.Equal(t, 1, g.Index())
	assert.False(t, g.Next())
	assert.False(t, g.Next())
	assert.True(t, g.Over())
	_, ok = g.Current()
	assert.False(t, ok)
	assert.ErrorIs(t, g.StartRound(context.Background()), ErrNoRounds)
}

func TestClampRounds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, ClampRounds(0))
	assert.Equal(t, 1, ClampRounds(-4))
	assert.Equal(t, 3, ClampRounds(3))
	assert.Equal(t, 10, ClampRounds(11))
}

func TestSummarizeFiltersSentinels(t *testing.T) {
	t.Parallel()

	none := sim.NewStatistics()
	some := sim.NewStatistics()
	some.Record(-0.1)
	some.Record(0.05)

	sum := Summarize([]RoundResult{
		{InitialCapital: 500, FinalCapital: 500, UserReturnPct: 0, StockReturnPct: 10, Stats: none},
		{InitialCapital: 500, FinalCapital: 470, UserReturnPct: -6, StockReturnPct: -2, BenchmarkReturnPct: 3, Stats: some},
	})

	assert.Equal(t, 0.05, sum.BestTradePct)
	assert.InDelta(t, -30.0, sum.TotalProfit, 1e-9)
	assert.InDelta(t, -3.0, sum.AverageUserReturnPct, 1e-9)
	assert.InDelta(t, 4.0, sum.AverageStockReturnPct, 1e-9)
	assert.InDelta(t, 1.5, sum.AverageBenchmarkReturnPct, 1e-9)
	assert.InDelta(t, 50.0, sum.WinRatePct, 1e-9)
	assert.InDelta(t, -0.03, sum.AggregateReturn(), 1e-12)

	onlyEmpty := Summarize([]RoundResult{{InitialCapital: 500, FinalCapital: 500, Stats: none}})
	assert.Zero(t, onlyEmpty.BestTradePct)
	assert.Zero(t, onlyEmpty.WinRatePct)
	assert.False(t, math.IsInf(onlyEmpty.BestTradePct, 0))

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ret     float64
		pct     float64
		ranking int
	}{
		{name: "mean", ret: 5, pct: 50, ranking: 5001},
		{name: "one_sd_above", ret: 20, pct: 84.1345, ranking: 1587},
		{name: "one_sd_below", ret: -10, pct: 15.8655, ranking: 8414},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pct, ranking := Percentile(tt.ret)
			assert.InDelta(t, tt.pct, pct, 1e-3)
			assert.Equal(t, tt.ranking, ranking)
		})
	}

	lo, loRank := Percentile(-1000)
	hi, hiRank := Percentile(1000)
	assert.InDelta(t, 0, lo, 1e-9)
	assert.InDelta(t, 100, hi, 1e-9)
	assert.Equal(t, 10001, loRank)
	assert.Equal(t, 1, hiRank)
}
