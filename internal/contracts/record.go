package contracts

import "strings"

// Record is one screenable instrument from a snapshot.
// ⭐ SSOT: Snapshot → Screener 레코드 형식
//
// Numeric metrics are nil when the scanner had no value, which is distinct
// from zero. JSON tags are the scanner column keys so a raw scanner row can be
// decoded straight into a Record.
type Record struct {
	Symbol string `json:"symbol"` // unique, e.g. "ASX:BHP"

	// Basic
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Exchange    *string  `json:"exchange,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Close       *float64 `json:"close,omitempty"`
	Open        *float64 `json:"open,omitempty"`
	High        *float64 `json:"high,omitempty"`
	Low         *float64 `json:"low,omitempty"`
	Volume      *float64 `json:"volume,omitempty"`
	Change      *float64 `json:"change,omitempty"`
	ChangeAbs   *float64 `json:"change_abs,omitempty"`

	// Performance
	PerfW   *float64 `json:"Perf.W,omitempty"`
	Perf1M  *float64 `json:"Perf.1M,omitempty"`
	Perf3M  *float64 `json:"Perf.3M,omitempty"`
	Perf6M  *float64 `json:"Perf.6M,omitempty"`
	PerfY   *float64 `json:"Perf.Y,omitempty"`
	PerfYTD *float64 `json:"Perf.YTD,omitempty"`
	Perf5Y  *float64 `json:"Perf.5Y,omitempty"`
	PerfAll *float64 `json:"Perf.All,omitempty"`
	High1M  *float64 `json:"High.1M,omitempty"`
	Low1M   *float64 `json:"Low.1M,omitempty"`
	High3M  *float64 `json:"High.3M,omitempty"`
	Low3M   *float64 `json:"Low.3M,omitempty"`
	High6M  *float64 `json:"High.6M,omitempty"`
	Low6M   *float64 `json:"Low.6M,omitempty"`
	High52W *float64 `json:"price_52_week_high,omitempty"`
	Low52W  *float64 `json:"price_52_week_low,omitempty"`
	HighAll *float64 `json:"High.All,omitempty"`
	LowAll  *float64 `json:"Low.All,omitempty"`

	// Technical
	RSI         *float64 `json:"RSI,omitempty"`
	RSI7        *float64 `json:"RSI7,omitempty"`
	StochK      *float64 `json:"Stoch.K,omitempty"`
	StochD      *float64 `json:"Stoch.D,omitempty"`
	CCI20       *float64 `json:"CCI20,omitempty"`
	ADX         *float64 `json:"ADX,omitempty"`
	ADXPlusDI   *float64 `json:"ADX+DI,omitempty"`
	ADXMinusDI  *float64 `json:"ADX-DI,omitempty"`
	MACD        *float64 `json:"MACD.macd,omitempty"`
	MACDSignal  *float64 `json:"MACD.signal,omitempty"`
	Momentum    *float64 `json:"Mom,omitempty"`
	AO          *float64 `json:"AO,omitempty"`
	WilliamsR   *float64 `json:"W.R,omitempty"`
	BBLower     *float64 `json:"BB.lower,omitempty"`
	BBUpper     *float64 `json:"BB.upper,omitempty"`
	ATR         *float64 `json:"ATR,omitempty"`
	VolatilityD *float64 `json:"Volatility.D,omitempty"`
	VolatilityW *float64 `json:"Volatility.W,omitempty"`
	VolatilityM *float64 `json:"Volatility.M,omitempty"`

	// Moving averages
	SMA5   *float64 `json:"SMA5,omitempty"`
	SMA10  *float64 `json:"SMA10,omitempty"`
	SMA20  *float64 `json:"SMA20,omitempty"`
	SMA30  *float64 `json:"SMA30,omitempty"`
	SMA50  *float64 `json:"SMA50,omitempty"`
	SMA100 *float64 `json:"SMA100,omitempty"`
	SMA200 *float64 `json:"SMA200,omitempty"`
	EMA5   *float64 `json:"EMA5,omitempty"`
	EMA10  *float64 `json:"EMA10,omitempty"`
	EMA20  *float64 `json:"EMA20,omitempty"`
	EMA30  *float64 `json:"EMA30,omitempty"`
	EMA50  *float64 `json:"EMA50,omitempty"`
	EMA100 *float64 `json:"EMA100,omitempty"`
	EMA200 *float64 `json:"EMA200,omitempty"`

	// Ratings, -1 (strong sell) .. 1 (strong buy)
	RecommendAll   *float64 `json:"Recommend.All,omitempty"`
	RecommendMA    *float64 `json:"Recommend.MA,omitempty"`
	RecommendOther *float64 `json:"Recommend.Other,omitempty"`

	// Fundamentals
	MarketCap       *float64 `json:"market_cap_basic,omitempty"`
	PE              *float64 `json:"price_earnings_ttm,omitempty"`
	PS              *float64 `json:"price_sales_ratio,omitempty"`
	PB              *float64 `json:"price_book_ratio,omitempty"`
	DividendYield   *float64 `json:"dividend_yield_recent,omitempty"`
	EPS             *float64 `json:"earnings_per_share_basic_ttm,omitempty"`
	Beta            *float64 `json:"beta_1_year,omitempty"`
	EnterpriseValue *float64 `json:"enterprise_value_fq,omitempty"`
	Revenue         *float64 `json:"total_revenue_ttm,omitempty"`
	GrossProfit     *float64 `json:"gross_profit_fq,omitempty"`
	NetIncome       *float64 `json:"net_income_fq,omitempty"`
	TotalDebt       *float64 `json:"total_debt_fq,omitempty"`

	// Volume
	AvgVolume10D   *float64 `json:"average_volume_10d_calc,omitempty"`
	AvgVolume30D   *float64 `json:"average_volume_30d_calc,omitempty"`
	AvgVolume60D   *float64 `json:"average_volume_60d_calc,omitempty"`
	AvgVolume90D   *float64 `json:"average_volume_90d_calc,omitempty"`
	RelativeVolume *float64 `json:"relative_volume_10d_calc,omitempty"`
	VWAP           *float64 `json:"VWAP,omitempty"`

	// Info
	Sector              *string  `json:"sector,omitempty"`
	Industry            *string  `json:"industry,omitempty"`
	Country             *string  `json:"country,omitempty"`
	EarningsReleaseDate *float64 `json:"earnings_release_date,omitempty"` // unix seconds
}

// Ticker returns the identifier without its exchange prefix ("ASX:BHP" → "BHP")
func (r *Record) Ticker() string {
	if _, ticker, found := strings.Cut(r.Symbol, ":"); found {
		return ticker
	}
	return r.Symbol
}

// Float is a helper for building records in code and tests
func Float(v float64) *float64 {
	return &v
}

// String is a helper for building records in code and tests
func String(s string) *string {
	return &s
}
