package tradingview

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/wonny/asx-screener/internal/contracts"
)

// Columns is the full column list requested for a snapshot, in scanner order.
// logoid and typespecs are requested for parity with the raw files but are
// not screenable.
var Columns = []string{
	// Basic
	"name", "description", "logoid", "exchange", "type", "typespecs",
	"close", "open", "high", "low", "volume", "change", "change_abs",

	// Performance
	"Perf.W", "Perf.1M", "Perf.3M", "Perf.6M", "Perf.Y", "Perf.YTD", "Perf.5Y", "Perf.All",
	"High.1M", "Low.1M", "High.3M", "Low.3M", "High.6M", "Low.6M",
	"price_52_week_high", "price_52_week_low", "High.All", "Low.All",

	// Technical
	"RSI", "RSI7", "Stoch.K", "Stoch.D", "CCI20", "ADX", "ADX+DI", "ADX-DI",
	"MACD.macd", "MACD.signal", "Mom", "AO", "W.R", "BB.lower", "BB.upper",
	"ATR", "Volatility.D", "Volatility.W", "Volatility.M",

	// Moving averages
	"SMA5", "SMA10", "SMA20", "SMA30", "SMA50", "SMA100", "SMA200",
	"EMA5", "EMA10", "EMA20", "EMA30", "EMA50", "EMA100", "EMA200",

	// Ratings
	"Recommend.All", "Recommend.MA", "Recommend.Other",

	// Fundamentals
	"market_cap_basic", "price_earnings_ttm", "price_sales_ratio",
	"price_book_ratio", "dividend_yield_recent", "earnings_per_share_basic_ttm",
	"beta_1_year", "enterprise_value_fq", "total_revenue_ttm",
	"gross_profit_fq", "net_income_fq", "total_debt_fq",

	// Volume
	"average_volume_10d_calc", "average_volume_30d_calc",
	"average_volume_60d_calc", "average_volume_90d_calc",
	"relative_volume_10d_calc", "VWAP",

	// Info
	"sector", "industry", "country", "earnings_release_date",
}

// Row is one scanner result: symbol plus values positional to the request
// columns
type Row struct {
	Symbol string            `json:"s"`
	Values []json.RawMessage `json:"d"`
}

// ScanResponse is the scanner reply and the on-disk raw snapshot format
type ScanResponse struct {
	TotalCount int   `json:"totalCount"`
	Data       []Row `json:"data"`

	// Columns the Values of each row are positional to (not on the wire)
	Columns []string `json:"-"`
}

var jsonNull = []byte("null")

// Decode maps a positional row onto a Record. JSON null becomes nil; values
// beyond the column list are ignored.
func Decode(columns []string, row Row) (contracts.Record, error) {
	fields := make(map[string]json.RawMessage, len(columns)+1)
	for i, col := range columns {
		if i >= len(row.Values) {
			break
		}
		v := row.Values[i]
		if len(v) == 0 || bytes.Equal(bytes.TrimSpace(v), jsonNull) {
			continue
		}
		fields[col] = v
	}

	symbol, err := json.Marshal(row.Symbol)
	if err != nil {
		return contracts.Record{}, err
	}
	fields["symbol"] = symbol

	data, err := json.Marshal(fields)
	if err != nil {
		return contracts.Record{}, fmt.Errorf("encode row %s: %w", row.Symbol, err)
	}

	var rec contracts.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return contracts.Record{}, fmt.Errorf("decode row %s: %w", row.Symbol, err)
	}
	return rec, nil
}

// Records decodes every row of a response in order
func (r *ScanResponse) Records() ([]contracts.Record, error) {
	columns := r.Columns
	if len(columns) == 0 {
		columns = Columns
	}

	out := make([]contracts.Record, 0, len(r.Data))
	for _, row := range r.Data {
		rec, err := Decode(columns, row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
