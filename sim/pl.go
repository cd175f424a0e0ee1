package sim

// PnLPercent is the fractional price change from entry to current. Entry
// prices are positive by construction (market.NewSeries rejects anything else).
func PnLPercent(entryPrice, currentPrice float64) float64 {
	return (currentPrice - entryPrice) / entryPrice
}

// ApplyPnL compounds capital by a fractional PnL.
//
// Live equity and realized capital both go through PnLPercent and ApplyPnL so
// the value shown while holding is exactly the value settled at close.
func ApplyPnL(capital, pnlPercent float64) float64 {
	return capital * (1 + pnlPercent)
}
