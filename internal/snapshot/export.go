package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/asx-screener/internal/external/tradingview"
)

var keyReplacer = strings.NewReplacer(".", "_", "+", "_plus_", "-", "_minus_")

// SanitizeKey makes a scanner column key safe as a flat JS property name
// ("Perf.1M" → "Perf_1M", "ADX+DI" → "ADX_plus_DI")
func SanitizeKey(key string) string {
	return keyReplacer.Replace(key)
}

// Flatten turns a raw scanner reply into one object per row keyed by
// sanitized column name. Every column is present; missing values are null.
func Flatten(resp *tradingview.ScanResponse) []map[string]json.RawMessage {
	columns := resp.Columns
	if len(columns) == 0 {
		columns = tradingview.Columns
	}

	keys := make([]string, len(columns))
	for i, col := range columns {
		keys[i] = SanitizeKey(col)
	}

	out := make([]map[string]json.RawMessage, 0, len(resp.Data))
	for _, row := range resp.Data {
		symbol, _ := json.Marshal(row.Symbol)
		item := make(map[string]json.RawMessage, len(columns)+1)
		item["symbol"] = symbol
		for i, key := range keys {
			if i < len(row.Values) && len(row.Values[i]) > 0 {
				item[key] = row.Values[i]
			} else {
				item[key] = jsonNull
			}
		}
		out = append(out, item)
	}
	return out
}

var jsonNull = json.RawMessage("null")

// Export writes the flattened reply as indented JSON and returns the row count
func Export(w io.Writer, resp *tradingview.ScanResponse) (int, error) {
	rows := Flatten(resp)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return 0, fmt.Errorf("encode export: %w", err)
	}
	return len(rows), nil
}

// DeployResult reports the files written by Deploy
type DeployResult struct {
	Source  string
	Output  string
	RawCopy string
	Rows    int
}

// Deploy exports the latest stored snapshot to outPath and copies the raw
// file next to it as data-raw.json
func (s *Store) Deploy(outPath string) (*DeployResult, error) {
	date, err := s.LatestDate()
	if err != nil {
		return nil, err
	}
	resp, err := s.LoadRaw(date)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", outPath, err)
	}
	rows, err := Export(f, resp)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	source := s.Path(date)
	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, err
	}
	rawCopy := filepath.Join(filepath.Dir(outPath), "data-raw.json")
	if err := os.WriteFile(rawCopy, raw, 0o644); err != nil {
		return nil, fmt.Errorf("copy raw snapshot: %w", err)
	}

	return &DeployResult{Source: source, Output: outPath, RawCopy: rawCopy, Rows: rows}, nil
}
