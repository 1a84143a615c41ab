package presets

import (
	"math"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/format"
	"github.com/wonny/asx-screener/internal/screener"
)

// above and below turn the inclusive range bounds into strict ones
func above(v float64) *float64 {
	b := math.Nextafter(v, math.Inf(1))
	return &b
}

func below(v float64) *float64 {
	b := math.Nextafter(v, math.Inf(-1))
	return &b
}

func sortBy(f columns.Field, dir screener.Direction) screener.SortSpec {
	return screener.SortSpec{Field: f, Direction: dir}
}

// Builtin returns the default presets. They mirror the scanner shortlists
// saved with every snapshot, expressed as engine criteria.
// ⭐ SSOT: 기본 프리셋 정의는 여기서만
func Builtin() []screener.Preset {
	newCriteria := screener.NewCriteria

	overbought := newCriteria()
	overbought.RSI = screener.Range{Min: above(format.OverboughtLevel)}

	oversold := newCriteria()
	oversold.RSI = screener.Range{Max: below(format.OversoldLevel)}

	gainers := newCriteria()
	gainers.Change = screener.Range{Min: above(0)}

	losers := newCriteria()
	losers.Change = screener.Range{Max: below(0)}

	return []screener.Preset{
		{
			Name:        "most_capitalized",
			Description: "Largest companies by market capitalisation",
			Criteria:    newCriteria(),
			Sort:        sortBy(columns.FieldMarketCap, screener.Descending),
			Columns:     []columns.Field{columns.FieldMarketCap},
		},
		{
			Name:        "volume_leaders",
			Description: "Highest traded volume today",
			Criteria:    newCriteria(),
			Sort:        sortBy(columns.FieldVolume, screener.Descending),
			Columns:     []columns.Field{columns.FieldVolume, columns.FieldRelativeVolume},
		},
		{
			Name:        "top_gainers",
			Description: "Positive daily change, best first",
			Criteria:    gainers,
			Sort:        sortBy(columns.FieldChange, screener.Descending),
			Columns:     []columns.Field{columns.FieldChange, columns.FieldChangeAbs},
		},
		{
			Name:        "top_losers",
			Description: "Negative daily change, worst first",
			Criteria:    losers,
			Sort:        sortBy(columns.FieldChange, screener.Ascending),
			Columns:     []columns.Field{columns.FieldChange, columns.FieldChangeAbs},
		},
		{
			Name:        "most_volatile",
			Description: "Highest daily volatility",
			Criteria:    newCriteria(),
			Sort:        sortBy(columns.FieldVolatilityD, screener.Descending),
			Columns:     []columns.Field{columns.FieldVolatilityD, columns.FieldATR},
		},
		{
			Name:        "overbought",
			Description: "RSI(14) above 70",
			Criteria:    overbought,
			Sort:        sortBy(columns.FieldRSI, screener.Descending),
			Columns:     []columns.Field{columns.FieldRSI},
		},
		{
			Name:        "oversold",
			Description: "RSI(14) below 30",
			Criteria:    oversold,
			Sort:        sortBy(columns.FieldRSI, screener.Ascending),
			Columns:     []columns.Field{columns.FieldRSI},
		},
		{
			Name:        "high_dividend",
			Description: "Highest recent dividend yield",
			Criteria:    newCriteria(),
			Sort:        sortBy(columns.FieldDividendYield, screener.Descending),
			Columns:     []columns.Field{columns.FieldDividendYield},
		},
		{
			Name:        "unusual_volume",
			Description: "Volume far above its 10-day average",
			Criteria:    newCriteria(),
			Sort:        sortBy(columns.FieldRelativeVolume, screener.Descending),
			Columns:     []columns.Field{columns.FieldRelativeVolume, columns.FieldVolume},
		},
	}
}
