package journal

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	rec := sampleTrade("01HZX3ABCDEF", 2)
	out := FormatTradeOrg(rec)

	assert.Contains(t, out, "** Trade: KO (01HZX3AB)")
	assert.Contains(t, out, ":ENTRY: #0 @ 100.0000")
	assert.Contains(t, out, ":EXIT: #2 @ 110.0000")
	assert.Contains(t, out, ":PNL_PCT: 10.00")
	assert.Contains(t, out, ":CAPITAL: 500.00 -> 550.00")
	assert.Contains(t, out, ":REASON: Manual")
	assert.True(t, strings.HasSuffix(out, ":END:\n"))
}

func TestFormatTradesOrgSeparatesBlocks(t *testing.T) {
	t.Parallel()

	out := FormatTradesOrg([]TradeRecord{sampleTrade("A", 1), sampleTrade("B", 2)})
	assert.Equal(t, 2, strings.Count(out, "** Trade:"))
	assert.Contains(t, out, ":END:\n\n** Trade:")
	assert.Empty(t, FormatTradesOrg(nil))
}

func TestFormatSessionOrgHidesSentinels(t *testing.T) {
	t.Parallel()

	out := FormatSessionOrg(SessionRecord{
		SessionID:  "S1",
		Instrument: "Bitcoin",
		Ticker:     "BTC",
		Created:    time.Now(),
		BestPct:    math.Inf(-1),
		WorstPct:   math.Inf(1),
	})
	assert.Contains(t, out, ":BEST_PCT: -")
	assert.Contains(t, out, ":WORST_PCT: -")
	assert.NotContains(t, out, "Inf")
}
