// Package indicators computes trend hints over the visible part of a replay.
package indicators

import "errors"

var ErrPeriod = errors.New("invalid indicator period")

// Trend compares the latest price with a moving average.
type Trend int

const (
	Unknown Trend = iota
	Above
	Below
)

func (t Trend) String() string {
	switch t {
	case Above:
		return "above"
	case Below:
		return "below"
	default:
		return "n/a"
	}
}

// TrendOf reports where the last price sits relative to its simple moving
// average over period. Unknown until enough prices are visible.
func TrendOf(prices []float64, period int) (Trend, float64) {
	ma, err := MA(prices, period)
	if err != nil {
		return Unknown, 0
	}
	last := prices[len(prices)-1]
	switch {
	case last > ma:
		return Above, ma
	case last < ma:
		return Below, ma
	default:
		return Unknown, ma
	}
}
