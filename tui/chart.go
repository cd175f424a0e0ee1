package tui

import (
	"math"
	"strings"
)

var bars = []rune(" ▁▂▃▄▅▆▇█")

// Sparkline renders the last width values as a block chart height rows tall.
// Rows are joined with newlines, top row first.
func Sparkline(values []float64, width, height int) string {
	if width < 1 || height < 1 || len(values) == 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	steps := len(bars) - 1

	// levels[i] is the column's height in eighths of a row.
	levels := make([]int, len(values))
	for i, v := range values {
		if span == 0 {
			levels[i] = height * steps / 2
			continue
		}
		levels[i] = int(math.Round((v - lo) / span * float64(height*steps)))
	}

	rows := make([]string, height)
	for r := 0; r < height; r++ {
		floor := (height - 1 - r) * steps
		var b strings.Builder
		for _, lvl := range levels {
			fill := lvl - floor
			switch {
			case fill <= 0:
				b.WriteRune(bars[0])
			case fill >= steps:
				b.WriteRune(bars[steps])
			default:
				b.WriteRune(bars[fill])
			}
		}
		rows[r] = b.String()
	}
	return strings.Join(rows, "\n")
}
