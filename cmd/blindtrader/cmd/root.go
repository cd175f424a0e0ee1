package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/blindtrader/config"
	"github.com/rustyeddy/blindtrader/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "blindtrader",
	Short: "A blind stock trading game played against historical prices",
	Long: `Blindtrader replays anonymized price histories one sample at a time.

Hold to open a position and release to close it. The instrument's name and
period stay hidden until the round is scored against buy-and-hold and the
benchmark.

It provides:
  - An interactive terminal game (play)
  - Scripted headless replays (run)
  - A SQLite trade journal and leaderboard
  - A persistent player profile with ranks and achievements`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var (
	cfgFile  string
	dbPath   string
	logLevel string

	cfg    *config.Config
	logger = zap.NewNop()
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "f", "", "config file (YAML or JSON); defaults apply when omitted")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "path to SQLite journal DB (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// setup loads the config, applies .env and BLINDTRADER_* overrides, then
// the command line flags, and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFromFile(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}
	if err := config.ApplyEnv(cfg, ".env"); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	if cmd.Flags().Changed("db") {
		cfg.Journal.DBPath = dbPath
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err = logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	return nil
}
