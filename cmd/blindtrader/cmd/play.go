package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/blindtrader/game"
	"github.com/rustyeddy/blindtrader/internal/logging"
	"github.com/rustyeddy/blindtrader/profile"
	"github.com/rustyeddy/blindtrader/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play an interactive blind trading game",
	Long: `Start the terminal game. Each round replays an anonymized history.

Keys:
  space  hold / release
  o      open a position
  c      close the position
  n      next round (after the analysis screen)
  q      quit

Example:
  blindtrader play --rounds 5 --name alice`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

var (
	playRounds  int
	playName    string
	playLogFile string
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().IntVarP(&playRounds, "rounds", "r", 0, "number of rounds, 1-10 (default from config)")
	playCmd.Flags().StringVarP(&playName, "name", "n", "", "leaderboard name")
	playCmd.Flags().StringVar(&playLogFile, "log-file", "blindtrader.log", "log destination while the game owns the terminal")
}

func runPlay(cmd *cobra.Command, args []string) error {
	log, err := logging.ToFile(cfg.Log.Level, cfg.Log.Development, playLogFile)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer log.Sync()

	n := cfg.Game.Rounds
	if playRounds > 0 {
		n = game.ClampRounds(playRounds)
	}
	rounds, err := pickRounds(cfg, log, n)
	if err != nil {
		return err
	}

	j, err := cfg.OpenJournal()
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	bridge := tui.NewBridge()
	defer bridge.Close()

	sess, err := newSession(cfg, log, j, bridge.Observer(), 0)
	if err != nil {
		return err
	}
	defer sess.Stop()

	g, err := game.NewGame(sess, rounds)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	m := tui.New(ctx, g, bridge,
		tui.WithLogger(log),
		tui.WithProfileStore(profile.NewFileStore(cfg.Profile.Path)),
		tui.WithGameOver(func(sum game.Summary) error {
			_, err := postScore(j, playName, sum)
			return err
		}))

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		log.Error("program exited", zap.Error(err))
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}
