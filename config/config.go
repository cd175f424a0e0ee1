package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/blindtrader/game"
	"github.com/rustyeddy/blindtrader/journal"
	"github.com/rustyeddy/blindtrader/market/data"
)

// Config represents the complete game configuration
type Config struct {
	Game    GameConfig    `json:"game" yaml:"game"`
	Data    DataConfig    `json:"data" yaml:"data"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Profile ProfileConfig `json:"profile" yaml:"profile"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// GameConfig contains round and replay parameters
type GameConfig struct {
	StartingCapital float64 `json:"starting_capital" yaml:"starting_capital"`
	TickInterval    string  `json:"tick_interval" yaml:"tick_interval"` // e.g., "80ms"
	InitialVisible  int     `json:"initial_visible" yaml:"initial_visible"`
	MaxPoints       int     `json:"max_points" yaml:"max_points"`
	Rounds          int     `json:"rounds" yaml:"rounds"`
	SignificantMove float64 `json:"significant_move" yaml:"significant_move"`
}

// ParseDuration converts the tick interval string to time.Duration
func (g GameConfig) ParseDuration() (time.Duration, error) {
	if g.TickInterval == "" {
		return 0, fmt.Errorf("game.tick_interval is required")
	}
	return time.ParseDuration(g.TickInterval)
}

// DataConfig says where instrument histories come from
type DataConfig struct {
	Glob      string         `json:"glob,omitempty" yaml:"glob,omitempty"`
	Datasets  []data.Dataset `json:"datasets,omitempty" yaml:"datasets,omitempty"`
	Seed      int64          `json:"seed" yaml:"seed"` // 0 seeds from the clock
	Benchmark data.Benchmark `json:"benchmark" yaml:"benchmark"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type ProfileConfig struct {
	Path string `json:"path" yaml:"path"`
}

type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON).
// Fields the file leaves out keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(b, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(b, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var b []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		b, err = yaml.Marshal(c)
	} else {
		b, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	g := c.Game
	if g.StartingCapital <= 0 {
		return fmt.Errorf("game.starting_capital must be positive")
	}
	d, err := g.ParseDuration()
	if err != nil {
		return fmt.Errorf("game.tick_interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("game.tick_interval must be positive")
	}
	if g.InitialVisible < 1 {
		return fmt.Errorf("game.initial_visible must be at least 1")
	}
	if g.MaxPoints != 0 && g.MaxPoints <= g.InitialVisible {
		return fmt.Errorf("game.max_points must exceed initial_visible")
	}
	if g.Rounds < game.MinRounds || g.Rounds > game.MaxRounds {
		return fmt.Errorf("game.rounds must be between %d and %d", game.MinRounds, game.MaxRounds)
	}
	if g.SignificantMove < 0 {
		return fmt.Errorf("game.significant_move must not be negative")
	}
	if c.Data.Benchmark.Base <= 0 {
		return fmt.Errorf("data.benchmark.base must be positive")
	}

	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Game: GameConfig{
			StartingCapital: 500,
			TickInterval:    "80ms",
			InitialVisible:  20,
			MaxPoints:       450,
			Rounds:          game.DefaultRounds,
			SignificantMove: 0.01,
		},
		Data: DataConfig{
			Glob:      "data/**/*.csv",
			Benchmark: data.DefaultBenchmark(),
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./blindtrader.sqlite",
		},
		Profile: ProfileConfig{Path: "./profile.yaml"},
		Log:     LogConfig{Level: "info"},
	}
}

// Session builds the per-round session settings.
func (c *Config) Session() (game.SessionConfig, error) {
	d, err := c.Game.ParseDuration()
	if err != nil {
		return game.SessionConfig{}, err
	}
	return game.SessionConfig{
		Capital:         c.Game.StartingCapital,
		Interval:        d,
		InitialVisible:  c.Game.InitialVisible,
		SignificantMove: c.Game.SignificantMove,
	}, nil
}

// OpenJournal opens the configured journal backend.
func (c *Config) OpenJournal() (journal.Journal, error) {
	switch c.Journal.Type {
	case "sqlite":
		j, err := journal.NewSQLite(c.Journal.DBPath)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "csv":
		j, err := journal.NewCSV(c.Journal.TradesFile, c.Journal.EquityFile)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "none", "":
		return journal.Discard, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", c.Journal.Type)
	}
}

// Environment overrides.
const (
	EnvDB       = "BLINDTRADER_DB"
	EnvLogLevel = "BLINDTRADER_LOG_LEVEL"
	EnvProfile  = "BLINDTRADER_PROFILE"
	EnvTick     = "BLINDTRADER_TICK"
	EnvRounds   = "BLINDTRADER_ROUNDS"
)

// ApplyEnv loads .env files (missing files are ignored) and applies
// BLINDTRADER_* overrides on top of c, then re-validates.
func ApplyEnv(c *Config, files ...string) error {
	_ = godotenv.Load(files...)

	if v := getEnv(EnvDB, ""); v != "" {
		c.Journal.DBPath = v
	}
	if v := getEnv(EnvLogLevel, ""); v != "" {
		c.Log.Level = v
	}
	if v := getEnv(EnvProfile, ""); v != "" {
		c.Profile.Path = v
	}
	if v := getEnv(EnvTick, ""); v != "" {
		c.Game.TickInterval = v
	}
	if v := getEnv(EnvRounds, ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRounds, err)
		}
		c.Game.Rounds = n
	}
	return c.Validate()
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}
