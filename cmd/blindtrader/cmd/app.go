package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/blindtrader/config"
	"github.com/rustyeddy/blindtrader/game"
	"github.com/rustyeddy/blindtrader/journal"
	"github.com/rustyeddy/blindtrader/market/data"
	"github.com/rustyeddy/blindtrader/replay"
)

// pickRounds draws the configured number of rounds from the dataset pool.
// Histories too short to replay are dropped.
func pickRounds(c *config.Config, log *zap.Logger, rounds int) ([]game.Round, error) {
	loader := data.NewLoader(c.Data.Benchmark, c.Game.MaxPoints, c.Data.Seed, log)
	pool := data.NewPool(loader, log, c.Data.Datasets...)
	if c.Data.Glob != "" {
		n, err := pool.Discover(c.Data.Glob)
		if err != nil {
			return nil, fmt.Errorf("discover %q: %w", c.Data.Glob, err)
		}
		log.Debug("datasets discovered", zap.String("glob", c.Data.Glob), zap.Int("count", n))
	}
	if pool.Len() == 0 {
		return nil, fmt.Errorf("%w: configure data.datasets or data.glob", data.ErrNoData)
	}

	loaded, err := pool.Pick(rounds, newRand(c.Data.Seed))
	if err != nil {
		return nil, err
	}
	return toRounds(loaded, c.Game.InitialVisible, log)
}

// loadRounds loads the named files in order, one round each.
func loadRounds(c *config.Config, log *zap.Logger, maxPoints int, paths []string) ([]game.Round, error) {
	loader := data.NewLoader(c.Data.Benchmark, maxPoints, c.Data.Seed, log)
	var loaded []*data.Loaded
	for _, p := range paths {
		ds := data.DatasetFor(p)
		for _, known := range c.Data.Datasets {
			if known.Path == p {
				ds = known
			}
		}
		ld, err := loader.Load(ds)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		loaded = append(loaded, ld)
	}
	return toRounds(loaded, c.Game.InitialVisible, log)
}

func toRounds(loaded []*data.Loaded, visible int, log *zap.Logger) ([]game.Round, error) {
	var rounds []game.Round
	for _, ld := range loaded {
		if n := ld.Instrument.Series.Len(); n <= visible {
			log.Warn("history too short to play",
				zap.String("ticker", ld.Instrument.Ticker),
				zap.Int("samples", n),
				zap.Int("initial_visible", visible))
			continue
		}
		rounds = append(rounds, game.Round{Instrument: ld.Instrument, Script: ld.Script})
	}
	if len(rounds) == 0 {
		return nil, game.ErrNoRounds
	}
	return rounds, nil
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// newSession builds a session on the configured clock with the journal
// attached. tick overrides the configured interval when positive.
func newSession(c *config.Config, log *zap.Logger, j journal.Journal, obs game.Observer, tick time.Duration) (*game.Session, error) {
	sc, err := c.Session()
	if err != nil {
		return nil, err
	}
	if tick > 0 {
		sc.Interval = tick
	}
	return game.NewSession(sc,
		game.WithObserver(obs),
		game.WithJournal(j),
		game.WithLogger(log),
		game.WithClock(replay.NewClock(replay.WithLogger(log))),
	), nil
}

// postScore adds the game to the leaderboard. Only the SQLite journal keeps
// one.
func postScore(j journal.Journal, name string, sum game.Summary) ([]journal.ScoreEntry, error) {
	sq, ok := j.(*journal.SQLite)
	if !ok {
		return nil, nil
	}
	return sq.SaveScore(name, sum.TotalProfit, sum.AggregateReturn()*100, time.Now())
}
