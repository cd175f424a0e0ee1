package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blindtrader/internal/format"
	"github.com/rustyeddy/blindtrader/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show career stats, rank and achievements",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

var profileName string

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.Flags().StringVar(&profileName, "set-name", "", "store a display name on the profile")
}

func runProfile(cmd *cobra.Command, args []string) error {
	st := profile.NewFileStore(cfg.Profile.Path)
	p, err := st.Load()
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if cmd.Flags().Changed("set-name") {
		p.Name = profileName
		if err := st.Save(p); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	rank := p.Rank()
	name := p.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(out, "Player:          %s [%s]\n", name, p.PlayerID)
	fmt.Fprintf(out, "Rank:            %s\n", rank.Title)
	if !rank.Top() {
		fmt.Fprintf(out, "Next rank at:    %s (%.0f%% there)\n",
			format.Currency(rank.Next, 0), rank.Progress(p.TotalCareerProfit)*100)
	}
	fmt.Fprintf(out, "Career profit:   %s\n", format.Currency(p.TotalCareerProfit, 2))
	fmt.Fprintf(out, "Games played:    %d\n", p.GamesPlayed)
	best := "-"
	if !math.IsInf(p.HighestSessionReturn, -1) {
		best = format.Percentage(p.HighestSessionReturn, 2)
	}
	fmt.Fprintf(out, "Best game:       %s\n", best)

	fmt.Fprintln(out, "\nAchievements:")
	for _, a := range profile.Achievements() {
		mark := " "
		if p.Has(a.ID) {
			mark = "✓"
		}
		fmt.Fprintf(out, "  [%s] %s %-14s %s\n", mark, a.Icon.Glyph(), a.Title, a.Description)
	}
	return nil
}
