package snapshot

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/internal/external/tradingview"
)

// ErrNoSnapshot is returned when no stored snapshot matches the request
var ErrNoSnapshot = errors.New("no snapshot found")

const dateLayout = "2006-01-02"

// Store keeps daily snapshots on disk as DIR/YYYY/MM/YYYY-MM-DD.json (raw
// scanner reply) with a CSV copy, a -summary.json and a presets/ directory.
// ⭐ SSOT: 스냅샷 파일 레이아웃은 여기서만
type Store struct {
	dir string
}

// NewStore creates a file store rooted at dir
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store root
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) monthDir(date time.Time) string {
	return filepath.Join(s.dir, date.Format("2006"), date.Format("01"))
}

// Path returns the raw snapshot file for date
func (s *Store) Path(date time.Time) string {
	return filepath.Join(s.monthDir(date), date.Format(dateLayout)+".json")
}

// SaveRaw writes the scanner reply for date and returns the file path
func (s *Store) SaveRaw(date time.Time, resp *tradingview.ScanResponse) (string, error) {
	path := s.Path(date)
	if err := writeJSON(path, resp); err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	return path, nil
}

// SaveCSV writes one CSV row per scanner row: symbol, then the columns in
// request order. Missing values are empty cells.
func (s *Store) SaveCSV(date time.Time, resp *tradingview.ScanResponse) (string, error) {
	path := filepath.Join(s.monthDir(date), date.Format(dateLayout)+".csv")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	columns := resp.Columns
	if len(columns) == 0 {
		columns = tradingview.Columns
	}

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"symbol"}, columns...)); err != nil {
		return "", err
	}
	for _, row := range resp.Data {
		record := make([]string, 0, len(columns)+1)
		record = append(record, row.Symbol)
		for i := range columns {
			var raw json.RawMessage
			if i < len(row.Values) {
				raw = row.Values[i]
			}
			record = append(record, csvCell(raw))
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return path, nil
}

// csvCell renders a raw JSON value: strings unquoted, null empty, anything
// else verbatim
func csvCell(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// SaveSummary writes DIR/YYYY/MM/YYYY-MM-DD-summary.json
func (s *Store) SaveSummary(date time.Time, summary contracts.Summary) (string, error) {
	path := filepath.Join(s.monthDir(date), date.Format(dateLayout)+"-summary.json")
	if err := writeJSON(path, summary); err != nil {
		return "", fmt.Errorf("save summary: %w", err)
	}
	return path, nil
}

// LoadSummary reads the summary written for date
func (s *Store) LoadSummary(date time.Time) (*contracts.Summary, error) {
	path := filepath.Join(s.monthDir(date), date.Format(dateLayout)+"-summary.json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("summary %s: %w", date.Format(dateLayout), ErrNoSnapshot)
	}
	if err != nil {
		return nil, err
	}

	var summary contracts.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &summary, nil
}

// SavePreset writes DIR/YYYY/MM/presets/YYYY-MM-DD-<name>.json
func (s *Store) SavePreset(date time.Time, name string, resp *tradingview.ScanResponse) (string, error) {
	path := filepath.Join(s.monthDir(date), "presets", date.Format(dateLayout)+"-"+name+".json")
	if err := writeJSON(path, resp); err != nil {
		return "", fmt.Errorf("save preset %s: %w", name, err)
	}
	return path, nil
}

// Dates lists the dates of every raw snapshot file, newest first.
// Summary files, preset files and names that are not a date are skipped.
func (s *Store) Dates() ([]time.Time, error) {
	var dates []time.Time

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "presets" {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if filepath.Ext(name) != ".json" || strings.Contains(name, "-summary") {
			return nil
		}
		date, perr := time.Parse(dateLayout, strings.TrimSuffix(name, ".json"))
		if perr != nil {
			return nil
		}
		dates = append(dates, date)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.dir, err)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates, nil
}

// LatestDate returns the most recent snapshot date
func (s *Store) LatestDate() (time.Time, error) {
	dates, err := s.Dates()
	if err != nil {
		return time.Time{}, err
	}
	if len(dates) == 0 {
		return time.Time{}, ErrNoSnapshot
	}
	return dates[0], nil
}

// LoadRaw reads the raw scanner reply stored for date
func (s *Store) LoadRaw(date time.Time) (*tradingview.ScanResponse, error) {
	data, err := os.ReadFile(s.Path(date))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("snapshot %s: %w", date.Format(dateLayout), ErrNoSnapshot)
	}
	if err != nil {
		return nil, err
	}

	var resp tradingview.ScanResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", date.Format(dateLayout), err)
	}
	resp.Columns = tradingview.Columns
	return &resp, nil
}

// Load reads and validates the snapshot stored for date
func (s *Store) Load(date time.Time) (*contracts.Snapshot, error) {
	resp, err := s.LoadRaw(date)
	if err != nil {
		return nil, err
	}
	return FromResponse(date, resp)
}

// Latest loads the most recent snapshot
func (s *Store) Latest() (*contracts.Snapshot, error) {
	date, err := s.LatestDate()
	if err != nil {
		return nil, err
	}
	return s.Load(date)
}

// FromResponse decodes a scanner reply into a validated snapshot
func FromResponse(date time.Time, resp *tradingview.ScanResponse) (*contracts.Snapshot, error) {
	records, err := resp.Records()
	if err != nil {
		return nil, err
	}

	snap := &contracts.Snapshot{Date: date, Records: records}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", date.Format(dateLayout), err)
	}
	return snap, nil
}

// ParseDate parses YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	date, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return date, nil
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
