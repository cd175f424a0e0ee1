// Package format renders money and percentages for the CLI and UI.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency renders v as dollars with thousands separators, e.g. "$1,234.50"
// or "-$12.00".
func Currency(v float64, places int32) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "-"
	}
	d := decimal.NewFromFloat(v).Round(places)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(places)
	whole, frac, _ := strings.Cut(s, ".")
	out := sign + "$" + group(whole)
	if frac != "" {
		out += "." + frac
	}
	return out
}

// Percentage renders a value already in percent with an explicit sign, e.g.
// "+12.3%". Infinite sentinels render as "-".
func Percentage(v float64, places int32) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "-"
	}
	d := decimal.NewFromFloat(v).Round(places)
	sign := ""
	if !d.IsNegative() {
		sign = "+"
	}
	return sign + d.StringFixed(places) + "%"
}

// Fraction renders a fractional change (0.1) as a percentage ("+10.0%").
func Fraction(v float64, places int32) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "-"
	}
	return Percentage(v*100, places)
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
