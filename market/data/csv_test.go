package data

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/blindtrader/replay"
)

func newLoader(maxPoints int) *Loader {
	return NewLoader(DefaultBenchmark(), maxPoints, 42, nil)
}

func TestParseSortsAndSkips(t *testing.T) {
	t.Parallel()

	in := `Date,Price
2015-01-05,41.20
2015-01-02,40.10
not-a-date,12
2015-01-06,abc
2015-01-07,0
2015-01-08,-3
2015-01-09,41.90
`
	ld, err := newLoader(0).Parse(strings.NewReader(in), Dataset{Name: "Coca-Cola (2015)", Ticker: "KO"})
	require.NoError(t, err)

	s := ld.Instrument.Series
	require.Equal(t, 3, s.Len())
	assert.Equal(t, 40.10, s.Price(0))
	assert.Equal(t, 41.20, s.Price(1))
	assert.Equal(t, 41.90, s.Price(2))
	assert.Equal(t, 4, ld.Skipped)
	assert.True(t, ld.Synthetic)
	assert.Equal(t, "KO", ld.Instrument.Ticker)
}

func TestSyntheticBenchmarkStartsAtBase(t *testing.T) {
	t.Parallel()

	in := "2020-01-01,100\n2020-01-02,110\n2020-01-03,99\n"
	ld, err := NewLoader(Benchmark{Base: 2000, Correlation: 0.6, Noise: 0}, 0, 1, nil).
		Parse(strings.NewReader(in), Dataset{})
	require.NoError(t, err)

	s := ld.Instrument.Series
	assert.Equal(t, 2000.0, s.At(0).Benchmark)
	assert.InDelta(t, 2000*(1+0.1*0.6), s.At(1).Benchmark, 1e-9)
	assert.InDelta(t, 2000*(1+0.1*0.6)*(1+(-11.0/110)*0.6), s.At(2).Benchmark, 1e-9)
}

func TestBenchmarkAndEventColumns(t *testing.T) {
	t.Parallel()

	in := `date,price,sp500,event
2022-01-03,100,4700,
2022-01-04,101,4710,open
2022-01-05,99,4690,
2022-01-06,104,4720,CLOSE
`
	ld, err := newLoader(0).Parse(strings.NewReader(in), Dataset{})
	require.NoError(t, err)

	assert.False(t, ld.Synthetic)
	assert.Equal(t, 4710.0, ld.Instrument.Series.At(1).Benchmark)
	assert.Equal(t, "1:open,3:close", ld.Script.String())
}

func TestHeaderlessColumnsAreGuessed(t *testing.T) {
	t.Parallel()

	in := "2022-01-03,100,open\n2022-01-04,101,\n2022-01-05,102,close\n"
	ld, err := newLoader(0).Parse(strings.NewReader(in), Dataset{})
	require.NoError(t, err)

	assert.True(t, ld.Synthetic)
	in0, ok := ld.Script.At(0)
	require.True(t, ok)
	assert.Equal(t, replay.Open, in0)
	assert.Equal(t, 2, ld.Script.Len())
}

func TestWindowCapsLength(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	t0 := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&b, "%s,%d\n", t0.AddDate(0, 0, i).Format("2006-01-02"), i+1)
	}

	ld, err := newLoader(450).Parse(strings.NewReader(b.String()), Dataset{})
	require.NoError(t, err)

	s := ld.Instrument.Series
	require.Equal(t, 450, s.Len())
	for i := 1; i < s.Len(); i++ {
		assert.Equal(t, s.Price(i-1)+1, s.Price(i), "window must be contiguous")
	}
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	_, err := newLoader(0).Parse(strings.NewReader("date,price\nbad,row\n"), Dataset{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := newLoader(0).Load(Dataset{Path: filepath.Join(t.TempDir(), "nope.csv")})
	assert.Error(t, err)
}

func TestDiscoverAndPick(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(rel, body string) {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	write("stocks/ko.csv", "2015-01-02,40\n2015-01-05,41\n")
	write("stocks/2015/aapl.csv", "2015-01-02,110\n2015-01-05,106\n")
	write("crypto/btc.csv", "date,price\n")
	write("notes.txt", "ignore me")

	found, err := Discover(filepath.Join(dir, "**", "*.csv"))
	require.NoError(t, err)
	require.Len(t, found, 3)

	pool := NewPool(newLoader(0), nil, found[0])
	added, err := pool.Discover(filepath.Join(dir, "**", "*.csv"))
	require.NoError(t, err)
	assert.Equal(t, 2, added, "duplicates ignored")
	assert.Equal(t, 3, pool.Len())

	got, err := pool.Pick(10, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Len(t, got, 2, "empty btc.csv is skipped")

	tickers := map[string]bool{}
	for _, ld := range got {
		tickers[ld.Instrument.Ticker] = true
	}
	assert.True(t, tickers["KO"])
	assert.True(t, tickers["AAPL"])

	one, err := pool.Pick(1, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestPickEmptyPool(t *testing.T) {
	t.Parallel()

	_, err := NewPool(newLoader(0), nil).Pick(3, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrNoData)
}
