package columns

import (
	"github.com/wonny/asx-screener/internal/contracts"
)

// Definition describes one screenable column
type Definition struct {
	Field          Field     `json:"id"`
	Key            string    `json:"key"` // scanner column key
	Label          string    `json:"label"`
	Group          Group     `json:"group"`
	Kind           Kind      `json:"kind"`
	Format         Format    `json:"format"`
	DefaultVisible bool      `json:"default_visible"`
	Hideable       bool      `json:"hideable"`
	Sortable       bool      `json:"sortable"`
	Signed         bool      `json:"signed"` // colour by sign
	Highlight      Highlight `json:"-"`

	ID string `json:"-"`

	number func(*contracts.Record) *float64
	text   func(*contracts.Record) *string
}

// Pinned reports whether the column can never be hidden
func (d Definition) Pinned() bool {
	return !d.Hideable
}

// Number reads a numeric column; nil for non-numeric columns or missing values
func (d Definition) Number(r *contracts.Record) *float64 {
	if d.number == nil {
		return nil
	}
	return d.number(r)
}

// Text reads a categorical/text column; nil for numeric columns or missing values
func (d Definition) Text(r *contracts.Record) *string {
	if d.text == nil {
		return nil
	}
	return d.text(r)
}

func num(f Field, id, key, label string, g Group, fm Format, get func(*contracts.Record) *float64) Definition {
	return Definition{
		Field: f, ID: id, Key: key, Label: label, Group: g,
		Kind: KindNumeric, Format: fm, Hideable: true, Sortable: true,
		Signed: fm == FormatPercent,
		number: get,
	}
}

func cat(f Field, id, key, label string, g Group, get func(*contracts.Record) *string) Definition {
	return Definition{
		Field: f, ID: id, Key: key, Label: label, Group: g,
		Kind: KindCategorical, Format: FormatText, Hideable: true, Sortable: true,
		text: get,
	}
}

func txt(f Field, id, key, label string, g Group, get func(*contracts.Record) *string) Definition {
	d := cat(f, id, key, label, g, get)
	d.Kind = KindText
	return d
}

// defaultVisible is the curated first-load column set
var defaultVisible = map[Field]bool{
	FieldTicker:         true,
	FieldDescription:    true,
	FieldClose:          true,
	FieldChange:         true,
	FieldVolume:         true,
	FieldRelativeVolume: true,
	FieldMarketCap:      true,
	FieldPE:             true,
	FieldDividendYield:  true,
	FieldPerfY:          true,
	FieldRSI:            true,
	FieldRecommendAll:   true,
	FieldSector:         true,
}

var signedNumbers = map[Field]bool{
	FieldChangeAbs: true,
	FieldMACD:      true,
	FieldMomentum:  true,
	FieldAO:        true,
	FieldEPS:       true,
	FieldNetIncome: true,
}

var highlights = map[Field]Highlight{
	FieldRSI:            HighlightOscillator,
	FieldRSI7:           HighlightOscillator,
	FieldADX:            HighlightTrendStrength,
	FieldRelativeVolume: HighlightRelativeVolume,
}

// registry is the static catalog, in display order
var registry = buildRegistry()

var (
	index [fieldCount]int
	byID  = make(map[string]Field, fieldCount)
	byKey = make(map[string]Field, fieldCount)
)

func init() {
	for i := range index {
		index[i] = -1
	}
	for i, def := range registry {
		index[def.Field] = i
		byID[def.ID] = def.Field
		byKey[def.Key] = def.Field
	}
}

func buildRegistry() []Definition {
	defs := []Definition{
		// Basic
		{
			Field: FieldTicker, ID: "ticker", Key: "ticker", Label: "Ticker", Group: GroupBasic,
			Kind: KindText, Format: FormatText, Hideable: false, Sortable: true,
			text: func(r *contracts.Record) *string { t := r.Ticker(); return &t },
		},
		txt(FieldDescription, "description", "description", "Company", GroupBasic, func(r *contracts.Record) *string { return r.Description }),
		cat(FieldExchange, "exchange", "exchange", "Exchange", GroupBasic, func(r *contracts.Record) *string { return r.Exchange }),
		cat(FieldType, "type", "type", "Type", GroupBasic, func(r *contracts.Record) *string { return r.Type }),
		num(FieldClose, "close", "close", "Price", GroupBasic, FormatPrice, func(r *contracts.Record) *float64 { return r.Close }),
		num(FieldOpen, "open", "open", "Open", GroupBasic, FormatPrice, func(r *contracts.Record) *float64 { return r.Open }),
		num(FieldHigh, "high", "high", "High", GroupBasic, FormatPrice, func(r *contracts.Record) *float64 { return r.High }),
		num(FieldLow, "low", "low", "Low", GroupBasic, FormatPrice, func(r *contracts.Record) *float64 { return r.Low }),
		num(FieldVolume, "volume", "volume", "Volume", GroupBasic, FormatMagnitude, func(r *contracts.Record) *float64 { return r.Volume }),
		num(FieldChange, "change", "change", "Change %", GroupBasic, FormatPercent, func(r *contracts.Record) *float64 { return r.Change }),
		num(FieldChangeAbs, "change_abs", "change_abs", "Change", GroupBasic, FormatNumber, func(r *contracts.Record) *float64 { return r.ChangeAbs }),

		// Performance
		num(FieldPerfW, "perf_w", "Perf.W", "Perf 1W", GroupPerformance, FormatPercent, func(r *contracts.Record) *float64 { return r.PerfW }),
		num(FieldPerf1M, "perf_1m", "Perf.1M", "Perf 1M", GroupPerformance, FormatPercent, func(r *contracts.Record) *float64 { return r.Perf1M }),
		num(FieldPerf3M, "perf_3m", "Perf.3M", "Perf 3M", GroupPerformance, FormatPercent, func(r *contracts.Record) *float64 { return r.Perf3M }),
		num(FieldPerf6M, "perf_6m", "Perf.6M", "Perf 6M", GroupPerformance, FormatPercent, func(r *contracts.Record) *float64 { return r.Perf6M }),
		num(FieldPerfY, "perf_y", "Perf.Y", "Perf 1Y", GroupPerformance, FormatPercent, func(r *contracts.Record) *float64 { return r.PerfY }),
		num(FieldPerfYTD, "perf_ytd", "Perf.YTD", "Perf YTD", GroupPerformance, FormatPercent, func(r *contracts.Record) *float64 { return r.PerfYTD }),
		num(FieldPerf5Y, "perf_5y", "Perf.5Y", "Perf 5Y", GroupPerformance, FormatPercent, func(r *contracts.Record) *float64 { return r.Perf5Y }),
		num(FieldPerfAll, "perf_all", "Perf.All", "Perf All", GroupPerformance, FormatPercent, func(r *contracts.Record) *float64 { return r.PerfAll }),
		num(FieldHigh1M, "high_1m", "High.1M", "High 1M", GroupPerformance, FormatPrice, func(r *contracts.Record) *float64 { return r.High1M }),
		num(FieldLow1M, "low_1m", "Low.1M", "Low 1M", GroupPerformance, FormatPrice, func(r *contracts.Record) *float64 { return r.Low1M }),
		num(FieldHigh3M, "high_3m", "High.3M", "High 3M", GroupPerformance, FormatPrice, func(r *contracts.Record) *float64 { return r.High3M }),
		num(FieldLow3M, "low_3m", "Low.3M", "Low 3M", GroupPerformance, FormatPrice, func(r *contracts.Record) *float64 { return r.Low3M }),
		num(FieldHigh6M, "high_6m", "High.6M", "High 6M", GroupPerformance, FormatPrice, func(r *contracts.Record) *float64 { return r.High6M }),
		num(FieldLow6M, "low_6m", "Low.6M", "Low 6M", GroupPerformance, FormatPrice, func(r *contracts.Record) *float64 { return r.Low6M }),
		num(FieldHigh52W, "high_52w", "price_52_week_high", "52W High", GroupPerformance, FormatPrice, func(r *contracts.Record) *float64 { return r.High52W }),
		num(FieldLow52W, "low_52w", "price_52_week_low", "52W Low", GroupPerformance, FormatPrice, func(r *contracts.Record) *float64 { return r.Low52W }),
		num(FieldHighAll, "high_all", "High.All", "All-Time High", GroupPerformance, FormatPrice, func(r *contracts.Record) *float64 { return r.HighAll }),
		num(FieldLowAll, "low_all", "Low.All", "All-Time Low", GroupPerformance, FormatPrice, func(r *contracts.Record) *float64 { return r.LowAll }),

		// Technical
		num(FieldRSI, "rsi", "RSI", "RSI (14)", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.RSI }),
		num(FieldRSI7, "rsi7", "RSI7", "RSI (7)", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.RSI7 }),
		num(FieldStochK, "stoch_k", "Stoch.K", "Stoch %K", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.StochK }),
		num(FieldStochD, "stoch_d", "Stoch.D", "Stoch %D", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.StochD }),
		num(FieldCCI20, "cci20", "CCI20", "CCI (20)", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.CCI20 }),
		num(FieldADX, "adx", "ADX", "ADX", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.ADX }),
		num(FieldADXPlusDI, "adx_plus_di", "ADX+DI", "+DI", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.ADXPlusDI }),
		num(FieldADXMinusDI, "adx_minus_di", "ADX-DI", "-DI", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.ADXMinusDI }),
		num(FieldMACD, "macd", "MACD.macd", "MACD", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.MACD }),
		num(FieldMACDSignal, "macd_signal", "MACD.signal", "MACD Signal", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.MACDSignal }),
		num(FieldMomentum, "momentum", "Mom", "Momentum", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.Momentum }),
		num(FieldAO, "ao", "AO", "Awesome Osc.", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.AO }),
		num(FieldWilliamsR, "williams_r", "W.R", "Williams %R", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.WilliamsR }),
		num(FieldBBLower, "bb_lower", "BB.lower", "BB Lower", GroupTechnical, FormatPrice, func(r *contracts.Record) *float64 { return r.BBLower }),
		num(FieldBBUpper, "bb_upper", "BB.upper", "BB Upper", GroupTechnical, FormatPrice, func(r *contracts.Record) *float64 { return r.BBUpper }),
		num(FieldATR, "atr", "ATR", "ATR (14)", GroupTechnical, FormatNumber, func(r *contracts.Record) *float64 { return r.ATR }),
		num(FieldVolatilityD, "volatility_d", "Volatility.D", "Volatility D", GroupTechnical, FormatPercent, func(r *contracts.Record) *float64 { return r.VolatilityD }),
		num(FieldVolatilityW, "volatility_w", "Volatility.W", "Volatility W", GroupTechnical, FormatPercent, func(r *contracts.Record) *float64 { return r.VolatilityW }),
		num(FieldVolatilityM, "volatility_m", "Volatility.M", "Volatility M", GroupTechnical, FormatPercent, func(r *contracts.Record) *float64 { return r.VolatilityM }),

		// Moving averages
		num(FieldSMA5, "sma5", "SMA5", "SMA 5", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.SMA5 }),
		num(FieldSMA10, "sma10", "SMA10", "SMA 10", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.SMA10 }),
		num(FieldSMA20, "sma20", "SMA20", "SMA 20", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.SMA20 }),
		num(FieldSMA30, "sma30", "SMA30", "SMA 30", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.SMA30 }),
		num(FieldSMA50, "sma50", "SMA50", "SMA 50", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.SMA50 }),
		num(FieldSMA100, "sma100", "SMA100", "SMA 100", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.SMA100 }),
		num(FieldSMA200, "sma200", "SMA200", "SMA 200", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.SMA200 }),
		num(FieldEMA5, "ema5", "EMA5", "EMA 5", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.EMA5 }),
		num(FieldEMA10, "ema10", "EMA10", "EMA 10", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.EMA10 }),
		num(FieldEMA20, "ema20", "EMA20", "EMA 20", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.EMA20 }),
		num(FieldEMA30, "ema30", "EMA30", "EMA 30", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.EMA30 }),
		num(FieldEMA50, "ema50", "EMA50", "EMA 50", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.EMA50 }),
		num(FieldEMA100, "ema100", "EMA100", "EMA 100", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.EMA100 }),
		num(FieldEMA200, "ema200", "EMA200", "EMA 200", GroupMovingAverages, FormatPrice, func(r *contracts.Record) *float64 { return r.EMA200 }),

		// Ratings
		num(FieldRecommendAll, "rating", "Recommend.All", "Technical Rating", GroupRatings, FormatRating, func(r *contracts.Record) *float64 { return r.RecommendAll }),
		num(FieldRecommendMA, "rating_ma", "Recommend.MA", "MA Rating", GroupRatings, FormatRating, func(r *contracts.Record) *float64 { return r.RecommendMA }),
		num(FieldRecommendOther, "rating_osc", "Recommend.Other", "Oscillators Rating", GroupRatings, FormatRating, func(r *contracts.Record) *float64 { return r.RecommendOther }),

		// Fundamentals
		num(FieldMarketCap, "market_cap", "market_cap_basic", "Market Cap", GroupFundamentals, FormatMagnitude, func(r *contracts.Record) *float64 { return r.MarketCap }),
		num(FieldPE, "pe", "price_earnings_ttm", "P/E", GroupFundamentals, FormatNumber, func(r *contracts.Record) *float64 { return r.PE }),
		num(FieldPS, "ps", "price_sales_ratio", "P/S", GroupFundamentals, FormatNumber, func(r *contracts.Record) *float64 { return r.PS }),
		num(FieldPB, "pb", "price_book_ratio", "P/B", GroupFundamentals, FormatNumber, func(r *contracts.Record) *float64 { return r.PB }),
		num(FieldDividendYield, "dividend_yield", "dividend_yield_recent", "Div Yield", GroupFundamentals, FormatPercent, func(r *contracts.Record) *float64 { return r.DividendYield }),
		num(FieldEPS, "eps", "earnings_per_share_basic_ttm", "EPS (TTM)", GroupFundamentals, FormatPrice, func(r *contracts.Record) *float64 { return r.EPS }),
		num(FieldBeta, "beta", "beta_1_year", "Beta (1Y)", GroupFundamentals, FormatNumber, func(r *contracts.Record) *float64 { return r.Beta }),
		num(FieldEnterpriseValue, "enterprise_value", "enterprise_value_fq", "Enterprise Value", GroupFundamentals, FormatMagnitude, func(r *contracts.Record) *float64 { return r.EnterpriseValue }),
		num(FieldRevenue, "revenue", "total_revenue_ttm", "Revenue (TTM)", GroupFundamentals, FormatMagnitude, func(r *contracts.Record) *float64 { return r.Revenue }),
		num(FieldGrossProfit, "gross_profit", "gross_profit_fq", "Gross Profit", GroupFundamentals, FormatMagnitude, func(r *contracts.Record) *float64 { return r.GrossProfit }),
		num(FieldNetIncome, "net_income", "net_income_fq", "Net Income", GroupFundamentals, FormatMagnitude, func(r *contracts.Record) *float64 { return r.NetIncome }),
		num(FieldTotalDebt, "total_debt", "total_debt_fq", "Total Debt", GroupFundamentals, FormatMagnitude, func(r *contracts.Record) *float64 { return r.TotalDebt }),

		// Volume
		num(FieldAvgVolume10D, "avg_volume_10d", "average_volume_10d_calc", "Avg Vol 10D", GroupVolume, FormatMagnitude, func(r *contracts.Record) *float64 { return r.AvgVolume10D }),
		num(FieldAvgVolume30D, "avg_volume_30d", "average_volume_30d_calc", "Avg Vol 30D", GroupVolume, FormatMagnitude, func(r *contracts.Record) *float64 { return r.AvgVolume30D }),
		num(FieldAvgVolume60D, "avg_volume_60d", "average_volume_60d_calc", "Avg Vol 60D", GroupVolume, FormatMagnitude, func(r *contracts.Record) *float64 { return r.AvgVolume60D }),
		num(FieldAvgVolume90D, "avg_volume_90d", "average_volume_90d_calc", "Avg Vol 90D", GroupVolume, FormatMagnitude, func(r *contracts.Record) *float64 { return r.AvgVolume90D }),
		num(FieldRelativeVolume, "relative_volume", "relative_volume_10d_calc", "Rel Volume", GroupVolume, FormatNumber, func(r *contracts.Record) *float64 { return r.RelativeVolume }),
		num(FieldVWAP, "vwap", "VWAP", "VWAP", GroupVolume, FormatPrice, func(r *contracts.Record) *float64 { return r.VWAP }),

		// Info
		cat(FieldSector, "sector", "sector", "Sector", GroupInfo, func(r *contracts.Record) *string { return r.Sector }),
		cat(FieldIndustry, "industry", "industry", "Industry", GroupInfo, func(r *contracts.Record) *string { return r.Industry }),
		cat(FieldCountry, "country", "country", "Country", GroupInfo, func(r *contracts.Record) *string { return r.Country }),
		num(FieldEarningsReleaseDate, "earnings_date", "earnings_release_date", "Earnings Date", GroupInfo, FormatDate, func(r *contracts.Record) *float64 { return r.EarningsReleaseDate }),
	}

	for i := range defs {
		f := defs[i].Field
		defs[i].DefaultVisible = defaultVisible[f]
		if signedNumbers[f] {
			defs[i].Signed = true
		}
		if h, ok := highlights[f]; ok {
			defs[i].Highlight = h
		}
	}

	// Long free text is searchable, not sortable
	defs[index0(defs, FieldDescription)].Sortable = false

	return defs
}

func index0(defs []Definition, f Field) int {
	for i := range defs {
		if defs[i].Field == f {
			return i
		}
	}
	panic("columns: field missing from registry")
}

// All returns every column definition in display order
func All() []Definition {
	out := make([]Definition, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the definition of a field
func Lookup(f Field) (Definition, bool) {
	if f <= FieldNone || f >= fieldCount {
		return Definition{}, false
	}
	i := index[f]
	if i < 0 {
		return Definition{}, false
	}
	return registry[i], true
}

// ByGroup returns the columns of one group in display order
func ByGroup(g Group) []Definition {
	out := make([]Definition, 0)
	for _, def := range registry {
		if def.Group == g {
			out = append(out, def)
		}
	}
	return out
}

// ScannerKeys returns the scanner column keys of every stored attribute, in
// registry order. The derived ticker column is not a scanner column.
func ScannerKeys() []string {
	keys := make([]string, 0, len(registry))
	for _, def := range registry {
		if def.Field == FieldTicker {
			continue
		}
		keys = append(keys, def.Key)
	}
	return keys
}
