package market

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidSample = errors.New("invalid price sample")

// Sample is one point of an instrument's price history. Benchmark carries
// the auxiliary index value (an S&P-500 style reference) at the same time.
type Sample struct {
	Time      time.Time
	Price     float64
	Benchmark float64
}

// Series is an ordered, immutable sequence of samples for one session.
type Series struct {
	samples []Sample
}

// NewSeries validates and copies samples. Prices must be positive and
// finite and timestamps must never go backwards.
func NewSeries(samples []Sample) (*Series, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty series", ErrInvalidSample)
	}

	out := make([]Sample, len(samples))
	for i, s := range samples {
		if !validPrice(s.Price) {
			return nil, fmt.Errorf("%w: price %v at index %d", ErrInvalidSample, s.Price, i)
		}
		if i > 0 && s.Time.Before(samples[i-1].Time) {
			return nil, fmt.Errorf("%w: time %s before %s at index %d",
				ErrInvalidSample, s.Time.Format(time.RFC3339), samples[i-1].Time.Format(time.RFC3339), i)
		}
		out[i] = s
	}
	return &Series{samples: out}, nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

func (s *Series) Len() int { return len(s.samples) }

func (s *Series) At(i int) Sample { return s.samples[i] }

func (s *Series) Price(i int) float64 { return s.samples[i].Price }

func (s *Series) First() Sample { return s.samples[0] }

func (s *Series) Last() Sample { return s.samples[len(s.samples)-1] }

// LastIndex is the final valid cursor position.
func (s *Series) LastIndex() int { return len(s.samples) - 1 }

// Window returns a copy of samples in [from, to), clamped to the series.
func (s *Series) Window(from, to int) []Sample {
	if from < 0 {
		from = 0
	}
	if to > len(s.samples) {
		to = len(s.samples)
	}
	if from >= to {
		return nil
	}
	out := make([]Sample, to-from)
	copy(out, s.samples[from:to])
	return out
}

// ReturnPct is the buy-and-hold return over the whole series, in percent.
func (s *Series) ReturnPct() float64 {
	first, last := s.First().Price, s.Last().Price
	return (last - first) / first * 100
}

// BenchmarkReturnPct is the benchmark's return over the series, in percent.
// A series without benchmark values reports 0.
func (s *Series) BenchmarkReturnPct() float64 {
	first, last := s.First().Benchmark, s.Last().Benchmark
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}
