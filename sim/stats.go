package sim

import "math"

// Statistics aggregates closed trades for one session.
//
// BestTradePct starts at -Inf and WorstTradePct at +Inf. Those sentinels mean
// "no trades yet" and consumers filter on them (see game.Summary.BestTrade),
// so they must not be replaced with zero.
type Statistics struct {
	TradeCount    int
	WinningTrades int
	BestTradePct  float64
	WorstTradePct float64
}

func NewStatistics() Statistics {
	return Statistics{
		BestTradePct:  math.Inf(-1),
		WorstTradePct: math.Inf(1),
	}
}

// Record folds one closed trade's PnL into the statistics.
func (s *Statistics) Record(pnlPercent float64) {
	s.TradeCount++
	if pnlPercent > 0 {
		s.WinningTrades++
	}
	s.BestTradePct = math.Max(s.BestTradePct, pnlPercent)
	s.WorstTradePct = math.Min(s.WorstTradePct, pnlPercent)
}

func (s Statistics) HasTrades() bool { return s.TradeCount > 0 }

func (s Statistics) LosingTrades() int { return s.TradeCount - s.WinningTrades }

// WinRate is the fraction of winning trades, 0 when nothing traded.
func (s Statistics) WinRate() float64 {
	if s.TradeCount == 0 {
		return 0
	}
	return float64(s.WinningTrades) / float64(s.TradeCount)
}
