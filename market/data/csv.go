// Package data loads instrument price histories from CSV files.
package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/blindtrader/market"
	"github.com/rustyeddy/blindtrader/replay"
)

var ErrNoData = errors.New("no usable price rows")

// Dataset names a CSV file and the instrument it holds.
type Dataset struct {
	Path   string `yaml:"path" json:"path"`
	Name   string `yaml:"name" json:"name"`
	Ticker string `yaml:"ticker" json:"ticker"`
}

// Benchmark controls the synthetic index used when a file has no benchmark
// column. Each step moves by the instrument's return scaled by Correlation
// plus uniform noise of width Noise.
type Benchmark struct {
	Base        float64 `yaml:"base" json:"base"`
	Correlation float64 `yaml:"correlation" json:"correlation"`
	Noise       float64 `yaml:"noise" json:"noise"`
}

func DefaultBenchmark() Benchmark {
	return Benchmark{Base: 2000, Correlation: 0.6, Noise: 0.005}
}

// Loaded is one parsed dataset ready for play.
type Loaded struct {
	Instrument *market.Instrument
	// Script holds intents from the optional event column, re-indexed to
	// the loaded window.
	Script *replay.Script
	// Skipped counts rows dropped for bad dates or prices.
	Skipped int
	// Synthetic is set when the benchmark was generated.
	Synthetic bool
}

type Loader struct {
	Benchmark Benchmark
	// MaxPoints caps the series length. Longer files are cut to a random
	// contiguous window. Zero keeps everything.
	MaxPoints int

	rng *rand.Rand
	log *zap.Logger
}

// NewLoader seeds its own generator. A zero seed uses the clock.
func NewLoader(bench Benchmark, maxPoints int, seed int64, log *zap.Logger) *Loader {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		Benchmark: bench,
		MaxPoints: maxPoints,
		rng:       rand.New(rand.NewSource(seed)),
		log:       log,
	}
}

func (l *Loader) Load(ds Dataset) (*Loaded, error) {
	f, err := os.Open(ds.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", ds.Path, err)
	}
	defer f.Close()

	out, err := l.Parse(f, ds)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ds.Path, err)
	}
	return out, nil
}

type row struct {
	t     time.Time
	price float64
	bench float64
	event string
}

type columns struct {
	date, price, bench, event int
}

// Parse reads date,price[,benchmark][,event] records. A header row is
// detected by a "date" or "time" first column and may name the columns in
// any order after that.
func (l *Loader) Parse(r io.Reader, ds Dataset) (*Loaded, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	cols := columns{date: 0, price: 1, bench: -1, event: -1}
	var (
		rows    []row
		skipped int
		first   = true
	)

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}

		if first {
			first = false
			if isHeader(rec) {
				cols = headerColumns(rec)
				continue
			}
			cols = guessColumns(rec)
		}

		rw, ok := parseRow(rec, cols)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, rw)
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].t.Before(rows[j].t) })

	if l.MaxPoints > 0 && len(rows) > l.MaxPoints {
		start := l.rng.Intn(len(rows) - l.MaxPoints + 1)
		rows = rows[start : start+l.MaxPoints]
	}

	synthetic := !hasBenchmark(rows)
	if synthetic {
		l.synthesize(rows)
	}

	samples := make([]market.Sample, len(rows))
	script := replay.NewScript()
	for i, rw := range rows {
		samples[i] = market.Sample{Time: rw.t, Price: rw.price, Benchmark: rw.bench}
		if rw.event == "" {
			continue
		}
		in, err := replay.ParseIntent(rw.event)
		if err != nil {
			l.log.Debug("ignoring event", zap.String("dataset", ds.Path), zap.Int("index", i), zap.Error(err))
			continue
		}
		script.Add(i, in)
	}

	series, err := market.NewSeries(samples)
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		l.log.Debug("skipped rows", zap.String("dataset", ds.Path), zap.Int("skipped", skipped))
	}

	return &Loaded{
		Instrument: &market.Instrument{Name: ds.Name, Ticker: ds.Ticker, Series: series},
		Script:     script,
		Skipped:    skipped,
		Synthetic:  synthetic,
	}, nil
}

func (l *Loader) synthesize(rows []row) {
	b := l.Benchmark.Base
	for i := range rows {
		if i > 0 {
			prev := rows[i-1].price
			move := (rows[i].price - prev) / prev
			b *= 1 + move*l.Benchmark.Correlation + (l.rng.Float64()-0.5)*l.Benchmark.Noise
		}
		rows[i].bench = b
	}
}

func hasBenchmark(rows []row) bool {
	for _, r := range rows {
		if !positive(r.bench) {
			return false
		}
	}
	return true
}

func isHeader(rec []string) bool {
	h := strings.ToLower(strings.TrimSpace(rec[0]))
	return strings.Contains(h, "date") || strings.Contains(h, "time")
}

func headerColumns(rec []string) columns {
	cols := columns{date: 0, price: 1, bench: -1, event: -1}
	for i, h := range rec {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "price", "close", "adj close", "adj_close":
			if i > 0 {
				cols.price = i
			}
		case "benchmark", "sp500", "s&p500", "index":
			cols.bench = i
		case "event":
			cols.event = i
		}
	}
	return cols
}

// guessColumns handles headerless files: a numeric third column is the
// benchmark, anything else there is an event.
func guessColumns(rec []string) columns {
	cols := columns{date: 0, price: 1, bench: -1, event: -1}
	if len(rec) > 2 {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64); err == nil {
			cols.bench = 2
			if len(rec) > 3 {
				cols.event = 3
			}
		} else {
			cols.event = 2
		}
	}
	return cols
}

func parseRow(rec []string, cols columns) (row, bool) {
	if len(rec) <= cols.price || len(rec) <= cols.date {
		return row{}, false
	}
	t, ok := parseTime(rec[cols.date])
	if !ok {
		return row{}, false
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(rec[cols.price]), 64)
	if err != nil || !positive(p) {
		return row{}, false
	}

	rw := row{t: t, price: p}
	if cols.bench >= 0 && cols.bench < len(rec) {
		if b, err := strconv.ParseFloat(strings.TrimSpace(rec[cols.bench]), 64); err == nil {
			rw.bench = b
		}
	}
	if cols.event >= 0 && cols.event < len(rec) {
		rw.event = strings.TrimSpace(rec[cols.event])
	}
	return rw, true
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

var timeLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil && sec > 0 {
		return time.Unix(sec, 0).UTC(), true
	}
	return time.Time{}, false
}
