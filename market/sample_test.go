package market

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplesAt(prices ...float64) []Sample {
	t0 := time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]Sample, len(prices))
	for i, p := range prices {
		out[i] = Sample{Time: t0.AddDate(0, 0, i), Price: p, Benchmark: 2000 + float64(i)}
	}
	return out
}

func TestNewSeries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		samples []Sample
		wantErr bool
	}{
		{name: "valid", samples: samplesAt(100, 105, 110)},
		{name: "empty", samples: nil, wantErr: true},
		{name: "zero_price", samples: samplesAt(100, 0, 110), wantErr: true},
		{name: "negative_price", samples: samplesAt(-1), wantErr: true},
		{name: "nan_price", samples: samplesAt(100, math.NaN()), wantErr: true},
		{name: "inf_price", samples: samplesAt(math.Inf(1)), wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := NewSeries(tt.samples)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSample)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.samples), s.Len())
		})
	}
}

func TestNewSeriesRejectsTimeGoingBackwards(t *testing.T) {
	t.Parallel()

	in := samplesAt(100, 101, 102)
	in[2].Time = in[0].Time.Add(-time.Hour)

	_, err := NewSeries(in)
	assert.ErrorIs(t, err, ErrInvalidSample)
}

func TestNewSeriesAllowsEqualTimestamps(t *testing.T) {
	t.Parallel()

	in := samplesAt(100, 101)
	in[1].Time = in[0].Time

	_, err := NewSeries(in)
	assert.NoError(t, err)
}

func TestSeriesIsImmutable(t *testing.T) {
	t.Parallel()

	in := samplesAt(100, 105, 110)
	s, err := NewSeries(in)
	require.NoError(t, err)

	in[0].Price = 1
	assert.Equal(t, 100.0, s.Price(0))

	w := s.Window(0, 2)
	w[0].Price = 2
	assert.Equal(t, 100.0, s.Price(0))
}

func TestSeriesWindowClamps(t *testing.T) {
	t.Parallel()

	s, err := NewSeries(samplesAt(1, 2, 3, 4))
	require.NoError(t, err)

	assert.Len(t, s.Window(-5, 2), 2)
	assert.Len(t, s.Window(2, 99), 2)
	assert.Nil(t, s.Window(3, 3))
}

func TestSeriesReturns(t *testing.T) {
	t.Parallel()

	s, err := NewSeries(samplesAt(100, 105, 110, 95, 90))
	require.NoError(t, err)

	assert.InDelta(t, -10.0, s.ReturnPct(), 1e-9)
	assert.InDelta(t, 4.0/2000*100, s.BenchmarkReturnPct(), 1e-9)
	assert.Equal(t, 4, s.LastIndex())
}

func TestInstrumentDisplay(t *testing.T) {
	t.Parallel()

	s, err := NewSeries(samplesAt(1, 2))
	require.NoError(t, err)
	in := &Instrument{Name: "Coca-Cola", Ticker: "KO", Series: s}

	name, ticker := in.Display(false)
	assert.Equal(t, Hidden, name)
	assert.Equal(t, Hidden, ticker)

	name, ticker = in.Display(true)
	assert.Equal(t, "Coca-Cola", name)
	assert.Equal(t, "KO", ticker)
	assert.True(t, in.PeriodEnd().After(in.PeriodStart()))
}
