package sim

import "time"

type CloseReason string

const (
	// Manual is a close requested by the player.
	Manual CloseReason = "Manual"
	// EndOfReplay is the forced close against the final sample.
	EndOfReplay CloseReason = "EndOfReplay"
)

// Point locates a trade boundary on the chart.
type Point struct {
	Index int
	Time  time.Time
	Price float64
}

// TradeRecord is one closed round trip. The history is append-only and
// feeds chart overlays; statistics are tracked separately.
type TradeRecord struct {
	ID         string
	Start      Point
	End        Point
	PnLPercent float64
	Reason     CloseReason
}

func (t TradeRecord) Won() bool { return t.PnLPercent > 0 }
