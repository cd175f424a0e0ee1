package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blindtrader/internal/format"
	"github.com/rustyeddy/blindtrader/journal"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the best games by total profit",
	Args:  cobra.NoArgs,
	RunE:  runLeaderboard,
}

var leaderboardLimit int

func init() {
	rootCmd.AddCommand(leaderboardCmd)

	leaderboardCmd.Flags().IntVarP(&leaderboardLimit, "limit", "l", 10, fmt.Sprintf("entries to show (max %d)", journal.MaxScores))
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	scores, err := j.TopScores(leaderboardLimit)
	if err != nil {
		return fmt.Errorf("query scores: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(scores) == 0 {
		fmt.Fprintln(out, "No scores yet. Play a game first.")
		return nil
	}
	fmt.Fprintf(out, "%4s  %-*s  %14s  %9s  %s\n", "#", journal.MaxNameLength, "Name", "Profit", "Return", "Date")
	for i, s := range scores {
		fmt.Fprintf(out, "%4d  %-*s  %14s  %9s  %s\n",
			i+1, journal.MaxNameLength, s.Name,
			format.Currency(s.TotalProfit, 2),
			format.Percentage(s.TotalReturn, 1),
			s.Created.Local().Format("2006-01-02"))
	}
	return nil
}
