package indicators

import "fmt"

// MA calculates the Simple Moving Average of the last period prices.
func MA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrPeriod, period)
	}
	if len(prices) < period {
		return 0, fmt.Errorf("not enough prices: need %d, got %d", period, len(prices))
	}

	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period), nil
}

// EMA calculates the Exponential Moving Average for the given period, seeded
// with the SMA of the first period prices.
func EMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrPeriod, period)
	}
	if len(prices) < period {
		return 0, fmt.Errorf("not enough prices: need %d, got %d", period, len(prices))
	}

	multiplier := 2.0 / float64(period+1)

	sma := 0.0
	for _, p := range prices[:period] {
		sma += p
	}
	ema := sma / float64(period)

	for _, p := range prices[period:] {
		ema = (p-ema)*multiplier + ema
	}
	return ema, nil
}
