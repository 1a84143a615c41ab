package columns

import "fmt"

// Field enumerates every screenable attribute.
// ⭐ SSOT: 컬럼 식별자는 여기서만 정의
type Field int

const (
	FieldNone Field = iota

	// Basic
	FieldTicker
	FieldDescription
	FieldExchange
	FieldType
	FieldClose
	FieldOpen
	FieldHigh
	FieldLow
	FieldVolume
	FieldChange
	FieldChangeAbs

	// Performance
	FieldPerfW
	FieldPerf1M
	FieldPerf3M
	FieldPerf6M
	FieldPerfY
	FieldPerfYTD
	FieldPerf5Y
	FieldPerfAll
	FieldHigh1M
	FieldLow1M
	FieldHigh3M
	FieldLow3M
	FieldHigh6M
	FieldLow6M
	FieldHigh52W
	FieldLow52W
	FieldHighAll
	FieldLowAll

	// Technical
	FieldRSI
	FieldRSI7
	FieldStochK
	FieldStochD
	FieldCCI20
	FieldADX
	FieldADXPlusDI
	FieldADXMinusDI
	FieldMACD
	FieldMACDSignal
	FieldMomentum
	FieldAO
	FieldWilliamsR
	FieldBBLower
	FieldBBUpper
	FieldATR
	FieldVolatilityD
	FieldVolatilityW
	FieldVolatilityM

	// Moving averages
	FieldSMA5
	FieldSMA10
	FieldSMA20
	FieldSMA30
	FieldSMA50
	FieldSMA100
	FieldSMA200
	FieldEMA5
	FieldEMA10
	FieldEMA20
	FieldEMA30
	FieldEMA50
	FieldEMA100
	FieldEMA200

	// Ratings
	FieldRecommendAll
	FieldRecommendMA
	FieldRecommendOther

	// Fundamentals
	FieldMarketCap
	FieldPE
	FieldPS
	FieldPB
	FieldDividendYield
	FieldEPS
	FieldBeta
	FieldEnterpriseValue
	FieldRevenue
	FieldGrossProfit
	FieldNetIncome
	FieldTotalDebt

	// Volume
	FieldAvgVolume10D
	FieldAvgVolume30D
	FieldAvgVolume60D
	FieldAvgVolume90D
	FieldRelativeVolume
	FieldVWAP

	// Info
	FieldSector
	FieldIndustry
	FieldCountry
	FieldEarningsReleaseDate

	fieldCount
)

// Kind is the semantic type of a column
type Kind int

const (
	KindNumeric Kind = iota
	KindCategorical
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Group is the bulk-visibility category of a column
type Group int

const (
	GroupBasic Group = iota
	GroupPerformance
	GroupTechnical
	GroupMovingAverages
	GroupRatings
	GroupFundamentals
	GroupVolume
	GroupInfo
)

var groupNames = [...]string{
	GroupBasic:          "Basic",
	GroupPerformance:    "Performance",
	GroupTechnical:      "Technical",
	GroupMovingAverages: "Moving Averages",
	GroupRatings:        "Ratings",
	GroupFundamentals:   "Fundamentals",
	GroupVolume:         "Volume",
	GroupInfo:           "Info",
}

// Groups lists every group in display order
func Groups() []Group {
	return []Group{
		GroupBasic, GroupPerformance, GroupTechnical, GroupMovingAverages,
		GroupRatings, GroupFundamentals, GroupVolume, GroupInfo,
	}
}

func (g Group) String() string {
	if g < 0 || int(g) >= len(groupNames) {
		return fmt.Sprintf("Group(%d)", int(g))
	}
	return groupNames[g]
}

// ParseGroup resolves a group by its display name
func ParseGroup(s string) (Group, bool) {
	for i, name := range groupNames {
		if name == s {
			return Group(i), true
		}
	}
	return 0, false
}

// MarshalText encodes a group as its display name
func (g Group) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText decodes a group from its display name
func (g *Group) UnmarshalText(text []byte) error {
	parsed, ok := ParseGroup(string(text))
	if !ok {
		return fmt.Errorf("unknown column group %q", string(text))
	}
	*g = parsed
	return nil
}

// Format selects the presentation rule applied to a column's values
type Format int

const (
	FormatText Format = iota
	FormatPrice
	FormatMagnitude
	FormatPercent
	FormatNumber
	FormatRating
	FormatDate
)

// Highlight selects the cosmetic threshold rule of a column
type Highlight int

const (
	HighlightNone Highlight = iota
	HighlightOscillator
	HighlightTrendStrength
	HighlightRelativeVolume
)

// String returns the stable identifier of the field (e.g. "market_cap")
func (f Field) String() string {
	if def, ok := Lookup(f); ok {
		return def.ID
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField resolves a field by its identifier or its scanner key
func ParseField(s string) (Field, bool) {
	if f, ok := byID[s]; ok {
		return f, true
	}
	if f, ok := byKey[s]; ok {
		return f, true
	}
	return FieldNone, false
}

// MarshalText encodes a field as its identifier
func (f Field) MarshalText() ([]byte, error) {
	if f == FieldNone {
		return []byte(""), nil
	}
	return []byte(f.String()), nil
}

// UnmarshalText decodes a field from its identifier or scanner key
func (f *Field) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*f = FieldNone
		return nil
	}
	parsed, ok := ParseField(string(text))
	if !ok {
		return fmt.Errorf("unknown field %q", string(text))
	}
	*f = parsed
	return nil
}

// MarshalText encodes a kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

var formatNames = [...]string{
	FormatText:      "text",
	FormatPrice:     "price",
	FormatMagnitude: "magnitude",
	FormatPercent:   "percent",
	FormatNumber:    "number",
	FormatRating:    "rating",
	FormatDate:      "date",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// MarshalText encodes a format by name
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
