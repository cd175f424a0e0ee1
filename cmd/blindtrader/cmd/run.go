package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/blindtrader/game"
	"github.com/rustyeddy/blindtrader/internal/format"
	"github.com/rustyeddy/blindtrader/profile"
	"github.com/rustyeddy/blindtrader/replay"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay datasets headlessly with scripted intents",
	Long: `Run a game without the interactive UI. Intents come from a script,
either the --script flag or the dataset's event column.

Script cursors index the loaded samples. The replay starts at
initial_visible-1, so earlier cursors never fire.

Examples:
  blindtrader run --dataset data/acme.csv --script "25:open,40:close"
  blindtrader run --rounds 5 --tick 1ms --name alice`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runDatasets []string
	runScript   string
	runTick     time.Duration
	runRounds   int
	runName     string
	runFull     bool
	runNoSave   bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVar(&runDatasets, "dataset", nil, "CSV file to play, repeatable (default: draw from the pool)")
	runCmd.Flags().StringVarP(&runScript, "script", "s", "", `intents as "cursor:open,cursor:close", applied to every round`)
	runCmd.Flags().DurationVarP(&runTick, "tick", "t", time.Millisecond, "replay tick interval")
	runCmd.Flags().IntVarP(&runRounds, "rounds", "r", 0, "rounds drawn from the pool (default from config)")
	runCmd.Flags().StringVarP(&runName, "name", "n", "", "leaderboard name")
	runCmd.Flags().BoolVar(&runFull, "full", false, "replay whole files instead of a random window")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "skip the leaderboard and profile")
}

func runRun(cmd *cobra.Command, args []string) error {
	script, err := replay.ParseScript(runScript)
	if err != nil {
		return err
	}

	rounds, err := headlessRounds()
	if err != nil {
		return err
	}
	if runScript != "" {
		for i := range rounds {
			rounds[i].Script = script
		}
	}

	j, err := cfg.OpenJournal()
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	sess, err := newSession(cfg, logger, j, game.Observer{}, runTick)
	if err != nil {
		return err
	}
	g, err := game.NewGame(sess, rounds)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sum, err := g.PlayAll(ctx)
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}

	out := cmd.OutOrStdout()
	for i, r := range g.History() {
		printRound(out, i+1, r)
	}
	printSummary(out, sum)

	if runNoSave {
		return nil
	}
	if _, err := postScore(j, runName, sum); err != nil {
		return fmt.Errorf("save score: %w", err)
	}
	up, err := profile.Record(profile.NewFileStore(cfg.Profile.Path), g.History(), sum.AggregateReturn()*100)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	printProfileUpdate(out, up)
	return nil
}

func headlessRounds() ([]game.Round, error) {
	if len(runDatasets) > 0 {
		maxPoints := cfg.Game.MaxPoints
		if runFull {
			maxPoints = 0
		}
		return loadRounds(cfg, logger, maxPoints, runDatasets)
	}
	n := cfg.Game.Rounds
	if runRounds > 0 {
		n = game.ClampRounds(runRounds)
	}
	return pickRounds(cfg, logger, n)
}

func printRound(w io.Writer, n int, r game.RoundResult) {
	fmt.Fprintf(w, "* Round %d: %s (%s)\n", n, r.Name, r.Ticker)
	fmt.Fprintf(w, "  Period:     %s to %s\n", r.PeriodStart.Format("2006-01-02"), r.PeriodEnd.Format("2006-01-02"))
	fmt.Fprintf(w, "  Capital:    %s -> %s\n", format.Currency(r.InitialCapital, 2), format.Currency(r.FinalCapital, 2))
	fmt.Fprintf(w, "  You:        %s\n", format.Percentage(r.UserReturnPct, 2))
	fmt.Fprintf(w, "  Buy & hold: %s\n", format.Percentage(r.StockReturnPct, 2))
	fmt.Fprintf(w, "  Benchmark:  %s\n", format.Percentage(r.BenchmarkReturnPct, 2))
	fmt.Fprintf(w, "  Trades:     %d (%d won, best %s, worst %s)\n",
		r.Stats.TradeCount, r.Stats.WinningTrades,
		format.Fraction(r.Stats.BestTradePct, 2), format.Fraction(r.Stats.WorstTradePct, 2))
	for _, t := range r.Trades {
		fmt.Fprintf(w, "    %4d -> %-4d %8s  %s\n", t.Start.Index, t.End.Index, format.Fraction(t.PnLPercent, 2), t.Reason)
	}
	if r.BeatMarket() {
		fmt.Fprintln(w, "  Beat the market")
	}
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, s game.Summary) {
	ret := s.AggregateReturn() * 100
	pct, ranking := game.Percentile(ret)
	fmt.Fprintf(w, "* Game over: %d rounds\n", s.Rounds)
	fmt.Fprintf(w, "  Total profit: %s (%s)\n", format.Currency(s.TotalProfit, 2), format.Percentage(ret, 2))
	fmt.Fprintf(w, "  Avg return:   %s vs buy & hold %s, benchmark %s\n",
		format.Percentage(s.AverageUserReturnPct, 2),
		format.Percentage(s.AverageStockReturnPct, 2),
		format.Percentage(s.AverageBenchmarkReturnPct, 2))
	fmt.Fprintf(w, "  Win rate:     %.1f%% of %d trades, best %s\n", s.WinRatePct, s.TotalTrades, format.Fraction(s.BestTradePct, 2))
	fmt.Fprintf(w, "  Percentile:   %.1f (rank #%d of 10,000)\n", pct, ranking)
}

func printProfileUpdate(w io.Writer, up profile.Update) {
	p := up.Profile
	fmt.Fprintf(w, "  Rank:         %s", p.Rank().Title)
	if up.LeveledUp {
		fmt.Fprint(w, " (promoted)")
	}
	fmt.Fprintln(w)
	for _, a := range up.NewAchievements {
		fmt.Fprintf(w, "  ✓ Unlocked %s %s: %s\n", a.Icon.Glyph(), a.Title, a.Description)
	}
	logger.Info("profile updated",
		zap.String("player_id", p.PlayerID),
		zap.Int("games_played", p.GamesPlayed),
		zap.Float64("career_profit", p.TotalCareerProfit))
}
