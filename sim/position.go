package sim

import "time"

// Position is the single open long. There is never more than one per session.
type Position struct {
	EntryPrice float64
	EntryIndex int
	EntryTime  time.Time
}

func (p Position) point() Point {
	return Point{Index: p.EntryIndex, Time: p.EntryTime, Price: p.EntryPrice}
}

// UnrealizedPct is the position's PnL if it closed at price.
func (p Position) UnrealizedPct(price float64) float64 {
	return PnLPercent(p.EntryPrice, price)
}
