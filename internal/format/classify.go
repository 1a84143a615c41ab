package format

import (
	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/contracts"
)

// Sign classifies a value for colouring
type Sign string

const (
	SignNeutral  Sign = "neutral"
	SignPositive Sign = "positive"
	SignNegative Sign = "negative"
)

// SignOf returns positive/negative for non-zero values, neutral otherwise
func SignOf(v *float64) Sign {
	switch {
	case v == nil || *v == 0:
		return SignNeutral
	case *v > 0:
		return SignPositive
	default:
		return SignNegative
	}
}

// Band is one of five ordered rating labels
type Band string

const (
	BandNone       Band = ""
	BandStrongBuy  Band = "Strong Buy"
	BandBuy        Band = "Buy"
	BandNeutral    Band = "Neutral"
	BandSell       Band = "Sell"
	BandStrongSell Band = "Strong Sell"
)

// Rating maps a [-1, 1] score onto a band with half-open thresholds
func Rating(score *float64) Band {
	if score == nil {
		return BandNone
	}
	s := *score
	switch {
	case s >= 0.5:
		return BandStrongBuy
	case s >= 0.1:
		return BandBuy
	case s >= -0.1:
		return BandNeutral
	case s >= -0.5:
		return BandSell
	default:
		return BandStrongSell
	}
}

// Flag is a cosmetic threshold classification
type Flag string

const (
	FlagNone       Flag = ""
	FlagOverbought Flag = "overbought"
	FlagOversold   Flag = "oversold"
	FlagStrong     Flag = "strong"
	FlagElevated   Flag = "elevated"
)

// Threshold constants for highlighting
const (
	OverboughtLevel      = 70.0
	OversoldLevel        = 30.0
	StrongTrendLevel     = 25.0
	ElevatedVolumeFactor = 2.0
)

// Highlight applies a column's threshold rule to a value
func Highlight(rule columns.Highlight, v *float64) Flag {
	if v == nil {
		return FlagNone
	}
	switch rule {
	case columns.HighlightOscillator:
		if *v >= OverboughtLevel {
			return FlagOverbought
		}
		if *v <= OversoldLevel {
			return FlagOversold
		}
	case columns.HighlightTrendStrength:
		if *v >= StrongTrendLevel {
			return FlagStrong
		}
	case columns.HighlightRelativeVolume:
		if *v >= ElevatedVolumeFactor {
			return FlagElevated
		}
	}
	return FlagNone
}

// Cell is the presentation of one value in one column
type Cell struct {
	Text      string `json:"text"`
	Sign      Sign   `json:"sign,omitempty"`
	Band      Band   `json:"band,omitempty"`
	Highlight Flag   `json:"highlight,omitempty"`
}

// Value renders a numeric value with the given column format
func Value(f columns.Format, v *float64) string {
	switch f {
	case columns.FormatPrice:
		return Price(v)
	case columns.FormatMagnitude:
		return Magnitude(v)
	case columns.FormatPercent:
		return Percent(v)
	case columns.FormatDate:
		return Date(v)
	case columns.FormatRating:
		if band := Rating(v); band != BandNone {
			return string(band)
		}
		return Placeholder
	default:
		return Number(v)
	}
}

// CellOf renders one record's value for one column
func CellOf(def columns.Definition, r *contracts.Record) Cell {
	if def.Kind != columns.KindNumeric {
		return Cell{Text: Text(def.Text(r))}
	}

	v := def.Number(r)
	cell := Cell{
		Text:      Value(def.Format, v),
		Highlight: Highlight(def.Highlight, v),
	}
	if def.Signed {
		cell.Sign = SignOf(v)
	}
	if def.Format == columns.FormatRating {
		cell.Band = Rating(v)
	}
	return cell
}
