package journal

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatTradeOrg renders a TradeRecord as an Org-mode block suitable for pasting into a journal.
func FormatTradeOrg(t TradeRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s (%s)\n", t.Instrument, shortID(t.TradeID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.TradeID)
	fmt.Fprintf(&b, ":SESSION_ID: %s\n", t.SessionID)
	fmt.Fprintf(&b, ":INSTRUMENT: %s\n", t.Instrument)
	fmt.Fprintf(&b, ":ENTRY: #%d @ %.4f\n", t.EntryIndex, t.EntryPrice)
	fmt.Fprintf(&b, ":EXIT: #%d @ %.4f\n", t.ExitIndex, t.ExitPrice)
	fmt.Fprintf(&b, ":OPEN_TIME: %s\n", t.OpenTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":CLOSE_TIME: %s\n", t.CloseTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":PNL_PCT: %.2f\n", t.PnLPercent*100)
	fmt.Fprintf(&b, ":CAPITAL: %.2f -> %.2f\n", t.CapitalBefore, t.CapitalAfter)
	fmt.Fprintf(&b, ":REASON: %s\n", t.Reason)
	b.WriteString(":END:\n")
	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

// FormatSessionOrg renders a session summary heading. Sentinel best/worst
// values are shown as "-" rather than as infinities.
func FormatSessionOrg(s SessionRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* Session: %s %s (%s)\n", s.Instrument, s.Ticker, shortID(s.SessionID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":SESSION_ID: %s\n", s.SessionID)
	fmt.Fprintf(&b, ":CREATED: [%s]\n", s.Created.Local().Format("2006-01-02 Mon 15:04"))
	fmt.Fprintf(&b, ":START_CAP: %.2f\n", s.InitialCapital)
	fmt.Fprintf(&b, ":END_CAP: %.2f\n", s.FinalCapital)
	fmt.Fprintf(&b, ":TRADES: %d\n", s.Trades)
	fmt.Fprintf(&b, ":WINS: %d\n", s.Wins)
	fmt.Fprintf(&b, ":BEST_PCT: %s\n", pctOrDash(s.BestPct))
	fmt.Fprintf(&b, ":WORST_PCT: %s\n", pctOrDash(s.WorstPct))
	b.WriteString(":END:\n")
	return b.String()
}

func pctOrDash(x float64) string {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return "-"
	}
	return fmt.Sprintf("%.2f", x*100)
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
