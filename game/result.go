package game

import (
	"math"
	"time"

	"github.com/rustyeddy/blindtrader/market"
	"github.com/rustyeddy/blindtrader/sim"
)

// RoundResult scores one instrument against buy-and-hold and the benchmark.
// Return fields are in percent; Stats keeps per-trade fractions.
type RoundResult struct {
	SessionID   string
	Name        string
	Ticker      string
	PeriodStart time.Time
	PeriodEnd   time.Time

	InitialCapital float64
	FinalCapital   float64

	UserReturnPct      float64
	StockReturnPct     float64
	BenchmarkReturnPct float64
	BenchmarkStart     float64
	BenchmarkEnd       float64

	Stats  sim.Statistics
	Trades []sim.TradeRecord
}

func NewRoundResult(in *market.Instrument, res sim.Result) RoundResult {
	s := in.Series
	return RoundResult{
		SessionID:          res.SessionID,
		Name:               in.Name,
		Ticker:             in.Ticker,
		PeriodStart:        in.PeriodStart(),
		PeriodEnd:          in.PeriodEnd(),
		InitialCapital:     res.InitialCapital,
		FinalCapital:       res.FinalCapital,
		UserReturnPct:      (res.FinalCapital - res.InitialCapital) / res.InitialCapital * 100,
		StockReturnPct:     s.ReturnPct(),
		BenchmarkReturnPct: s.BenchmarkReturnPct(),
		BenchmarkStart:     s.First().Benchmark,
		BenchmarkEnd:       s.Last().Benchmark,
		Stats:              res.Stats,
		Trades:             res.Trades,
	}
}

func (r RoundResult) Profit() float64 { return r.FinalCapital - r.InitialCapital }

// BeatMarket reports whether the player outperformed buy-and-hold.
func (r RoundResult) BeatMarket() bool { return r.UserReturnPct > r.StockReturnPct }

// Summary aggregates a whole game.
type Summary struct {
	Rounds         int
	InitialCapital float64
	FinalCapital   float64
	TotalProfit    float64

	AverageUserReturnPct      float64
	AverageStockReturnPct     float64
	AverageBenchmarkReturnPct float64

	TotalTrades int
	TotalWins   int
	// WinRatePct is wins over trades across every round, in percent.
	WinRatePct float64
	// BestTradePct is the best single trade as a fraction. Rounds without
	// trades are ignored; 0 when nothing traded at all.
	BestTradePct float64
}

func Summarize(history []RoundResult) Summary {
	sum := Summary{Rounds: len(history)}
	if len(history) == 0 {
		return sum
	}

	best := math.Inf(-1)
	for _, r := range history {
		sum.InitialCapital += r.InitialCapital
		sum.FinalCapital += r.FinalCapital
		sum.TotalProfit += r.Profit()
		sum.AverageUserReturnPct += r.UserReturnPct
		sum.AverageStockReturnPct += r.StockReturnPct
		sum.AverageBenchmarkReturnPct += r.BenchmarkReturnPct
		sum.TotalTrades += r.Stats.TradeCount
		sum.TotalWins += r.Stats.WinningTrades
		if !math.IsInf(r.Stats.BestTradePct, -1) {
			best = math.Max(best, r.Stats.BestTradePct)
		}
	}

	n := float64(len(history))
	sum.AverageUserReturnPct /= n
	sum.AverageStockReturnPct /= n
	sum.AverageBenchmarkReturnPct /= n
	if sum.TotalTrades > 0 {
		sum.WinRatePct = float64(sum.TotalWins) / float64(sum.TotalTrades) * 100
	}
	if !math.IsInf(best, -1) {
		sum.BestTradePct = best
	}
	return sum
}

// AggregateReturn is total profit over total starting capital, as a fraction.
func (s Summary) AggregateReturn() float64 {
	if s.InitialCapital == 0 {
		return 0
	}
	return (s.FinalCapital - s.InitialCapital) / s.InitialCapital
}

const (
	percentileMean   = 5.0
	percentileStdDev = 15.0
	rankingPool      = 10000
)

// Percentile estimates the share of players beaten by a return (in percent)
// from a normal model of player returns. It returns that share in percent and
// the matching position in a pool of ten thousand players.
func Percentile(returnPct float64) (pct float64, ranking int) {
	z := (returnPct - percentileMean) / percentileStdDev
	pct = 0.5 * (1 + math.Erf(z/math.Sqrt2)) * 100
	ranking = int(math.Floor(rankingPool-pct*100)) + 1
	return pct, ranking
}
