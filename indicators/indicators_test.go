package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrices() []float64 {
	return []float64{102, 105, 106, 108, 110, 111, 113, 114, 116, 118}
}

func TestMA(t *testing.T) {
	ma, err := MA(testPrices(), 5)
	require.NoError(t, err)
	// Last 5: 111,113,114,116,118 => 572/5 = 114.4
	assert.InDelta(t, 114.4, ma, 0.001)

	_, err = MA(testPrices(), 0)
	assert.ErrorIs(t, err, ErrPeriod)
	_, err = MA(testPrices()[:3], 5)
	assert.Error(t, err)
}

func TestEMA(t *testing.T) {
	ema, err := EMA(testPrices()[:4], 3)
	require.NoError(t, err)
	// Seed (102+105+106)/3 = 104.333, then 108 with k=0.5 => 106.1667
	assert.InDelta(t, 106.1667, ema, 0.001)

	ema, err = EMA(testPrices(), 5)
	require.NoError(t, err)
	assert.Greater(t, ema, 110.0)
	assert.Less(t, ema, 118.0)

	_, err = EMA(testPrices(), -1)
	assert.ErrorIs(t, err, ErrPeriod)
}

func TestTrendOf(t *testing.T) {
	tr, ma := TrendOf(testPrices(), 5)
	assert.Equal(t, Above, tr)
	assert.InDelta(t, 114.4, ma, 0.001)

	tr, _ = TrendOf([]float64{120, 118, 116, 100}, 4)
	assert.Equal(t, Below, tr)

	tr, _ = TrendOf([]float64{100, 100}, 2)
	assert.Equal(t, Unknown, tr)

	tr, _ = TrendOf(testPrices()[:2], 5)
	assert.Equal(t, Unknown, tr)
	assert.Equal(t, "n/a", tr.String())
	assert.Equal(t, "above", Above.String())
}
