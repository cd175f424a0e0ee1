package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/blindtrader/journal"
	"github.com/rustyeddy/blindtrader/pkg/id"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query trade journal data",
	Long: `Query and display session and trade records from the SQLite journal.

Subcommands:
  trade     - Get details of a specific trade by ID
  session   - List the trades of one session
  sessions  - List recent sessions

Examples:
  blindtrader journal trade <trade-id>
  blindtrader journal session <session-id>
  blindtrader journal sessions --limit 5`,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalSessionCmd = &cobra.Command{
	Use:   "session <session-id>",
	Short: "List the trades of one session",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalSession,
}

var journalSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent sessions",
	Args:  cobra.NoArgs,
	RunE:  runJournalSessions,
}

var journalLimit int

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalSessionCmd)
	journalCmd.AddCommand(journalSessionsCmd)

	journalSessionsCmd.Flags().IntVarP(&journalLimit, "limit", "l", 20, "number of sessions to list")
}

func openSQLite() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, journal.FormatTradeOrg(rec))
	if at, err := id.Time(rec.TradeID); err == nil {
		fmt.Fprintf(out, "Recorded: %s\n", at.Local().Format(time.RFC3339))
	}
	return nil
}

func runJournalSession(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTradesBySession(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	equity, err := j.ListEquityBySession(args[0])
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, journal.FormatTradesOrg(recs))
	if n := len(equity); n > 0 {
		fmt.Fprintf(out, "Equity: %d ticks, %.2f -> %.2f\n", n, equity[0].Equity, equity[n-1].Equity)
	}
	return nil
}

func runJournalSessions(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListSessions(journalLimit)
	if err != nil {
		return fmt.Errorf("query sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "No sessions recorded.")
		return nil
	}
	for _, s := range recs {
		fmt.Fprintln(out, journal.FormatSessionOrg(s))
	}
	return nil
}
