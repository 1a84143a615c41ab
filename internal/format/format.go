// Package format turns raw attribute values into display strings and
// cosmetic classifications. Everything here is pure; nothing feeds back into
// filtering or sorting.
package format

import (
	"math"
	"strconv"
	"time"
)

// Placeholder is rendered for every missing value
const Placeholder = "-"

// CurrencyPrefix is prepended to prices
const CurrencyPrefix = "$"

// magnitude units, largest first
var units = []struct {
	threshold float64
	suffix    string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

func fixed2(v float64) string {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Price renders "$12.30"; negatives as "-$1.50"
func Price(v *float64) string {
	if v == nil {
		return Placeholder
	}
	if *v < 0 {
		return "-" + CurrencyPrefix + fixed2(-*v)
	}
	return CurrencyPrefix + fixed2(*v)
}

// Magnitude scales to the largest applicable unit: 5e9 → "5.00B",
// -1.5e6 → "-1.50M", 950 → "950.00"
func Magnitude(v *float64) string {
	if v == nil {
		return Placeholder
	}
	abs := math.Abs(*v)
	for _, u := range units {
		if abs >= u.threshold {
			return fixed2(*v/u.threshold) + u.suffix
		}
	}
	return fixed2(*v)
}

// Percent renders "+3.00%", "+0.00%", "-1.00%"
func Percent(v *float64) string {
	if v == nil {
		return Placeholder
	}
	s := fixed2(*v) + "%"
	if *v >= 0 {
		return "+" + s
	}
	return s
}

// Number renders a plain 2-decimal value
func Number(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return fixed2(*v)
}

// Date renders a unix-seconds timestamp as YYYY-MM-DD (UTC)
func Date(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return time.Unix(int64(*v), 0).UTC().Format("2006-01-02")
}

// Text renders a nullable string; empty strings count as missing
func Text(s *string) string {
	if s == nil || *s == "" {
		return Placeholder
	}
	return *s
}
