package market

import "time"

// Hidden is shown in place of an instrument's name until it is revealed.
const Hidden = "???"

// Instrument is an anonymized price history the player trades blind.
type Instrument struct {
	Name   string
	Ticker string
	Series *Series
}

func (in *Instrument) PeriodStart() time.Time { return in.Series.First().Time }
func (in *Instrument) PeriodEnd() time.Time   { return in.Series.Last().Time }

// Display returns the name and ticker to render. Both stay hidden until the
// round is over.
func (in *Instrument) Display(revealed bool) (name, ticker string) {
	if !revealed {
		return Hidden, Hidden
	}
	return in.Name, in.Ticker
}
