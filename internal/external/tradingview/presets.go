package tradingview

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrUnknownPreset is returned for a preset name not in Presets
var ErrUnknownPreset = errors.New("unknown scanner preset")

// ScanPreset is a server-side scan: sort plus optional filter
type ScanPreset struct {
	SortBy    string
	SortOrder string
	Filter    []Condition
}

// Presets are the scanner-side shortlists saved with every daily snapshot
var Presets = map[string]ScanPreset{
	"most_capitalized": {SortBy: "market_cap_basic", SortOrder: "desc"},
	"volume_leaders":   {SortBy: "volume", SortOrder: "desc"},
	"top_gainers": {SortBy: "change", SortOrder: "desc",
		Filter: []Condition{{Left: "change", Operation: "greater", Right: 0}}},
	"top_losers": {SortBy: "change", SortOrder: "asc",
		Filter: []Condition{{Left: "change", Operation: "less", Right: 0}}},
	"most_volatile":  {SortBy: "Volatility.D", SortOrder: "desc"},
	"overbought":     {Filter: []Condition{{Left: "RSI", Operation: "greater", Right: 70}}},
	"oversold":       {Filter: []Condition{{Left: "RSI", Operation: "less", Right: 30}}},
	"high_dividend":  {SortBy: "dividend_yield_recent", SortOrder: "desc"},
	"unusual_volume": {SortBy: "relative_volume_10d_calc", SortOrder: "desc"},
}

// PresetNames returns the preset names, sorted
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset runs one named scan, returning at most limit rows
func (c *Client) Preset(ctx context.Context, name string, limit int) (*ScanResponse, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownPreset)
	}
	if limit <= 0 {
		limit = 100
	}

	return c.Scan(ctx, Query{
		Filter:    p.Filter,
		SortBy:    p.SortBy,
		SortOrder: p.SortOrder,
		Limit:     limit,
	})
}

// ColumnResult is the outcome of probing one column
type ColumnResult struct {
	Column string `json:"column"`
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
}

// knownGood columns are assumed valid and sent alongside the column under test
var knownGood = []string{"name", "close", "volume"}

// ValidateColumns tries each column with a one-row request and reports
// which ones the scanner accepts. delay spaces the requests.
func (c *Client) ValidateColumns(ctx context.Context, columns []string, delay time.Duration) ([]ColumnResult, error) {
	if len(columns) == 0 {
		columns = Columns
	}

	results := make([]ColumnResult, 0, len(columns))
	for _, col := range columns {
		if contains(knownGood, col) {
			results = append(results, ColumnResult{Column: col, Valid: true})
			continue
		}

		_, err := c.Scan(ctx, Query{
			Columns:   []string{"name", col},
			SortBy:    "name",
			SortOrder: "desc",
			Limit:     1,
		})
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		res := ColumnResult{Column: col, Valid: err == nil}
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)

		if delay > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	c.logger.WithField("columns", len(results)).Info("Column validation completed")
	return results, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
