package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/internal/external/tradingview"
	"github.com/wonny/asx-screener/pkg/logger"
)

// ErrEmptyFetch is returned when the scanner returns no rows
var ErrEmptyFetch = errors.New("scanner returned no rows")

// presetLimit is the row count saved per scanner preset
const presetLimit = 50

// Scanner is the part of the scanner client the collector needs
type Scanner interface {
	FetchAll(ctx context.Context) (*tradingview.ScanResponse, error)
	Preset(ctx context.Context, name string, limit int) (*tradingview.ScanResponse, error)
}

// Writer is the write side of the snapshot repository
type Writer interface {
	InsertSnapshot(ctx context.Context, snap *contracts.Snapshot, summary contracts.Summary) (int, error)
}

// Collector runs the daily snapshot: fetch, validate, save files, insert
// into the database, summarize, save presets
// ⭐ SSOT: 일일 스냅샷 수집 오케스트레이션은 여기서만
type Collector struct {
	scanner Scanner
	store   *Store
	repo    Writer
	cache   *Cache
	quality QualityConfig
	logger  *logger.Logger
}

// NewCollector creates a new Collector
func NewCollector(scanner Scanner, store *Store, log *logger.Logger) *Collector {
	return &Collector{
		scanner: scanner,
		store:   store,
		quality: DefaultQualityConfig,
		logger:  log.WithField("module", "collector"),
	}
}

// WithQuality replaces the coverage thresholds
func (c *Collector) WithQuality(cfg QualityConfig) *Collector {
	c.quality = cfg
	return c
}

// WithRepository enables the database insert step
func (c *Collector) WithRepository(repo Writer) *Collector {
	c.repo = repo
	return c
}

// WithCache refreshes the latest-snapshot cache after a fetch
func (c *Collector) WithCache(cache *Cache) *Collector {
	c.cache = cache
	return c
}

// Result reports what one run produced
type Result struct {
	Date         time.Time         `json:"date"`
	Summary      contracts.Summary `json:"summary"`
	JSONPath     string            `json:"json_path"`
	CSVPath      string            `json:"csv_path"`
	SummaryPath  string            `json:"summary_path"`
	RowsInserted int               `json:"rows_inserted"`
	Presets      []string          `json:"presets"`
	PresetErrors map[string]string `json:"preset_errors,omitempty"`
	Quality      *QualityReport    `json:"quality"`
}

// Run fetches and stores the snapshot for date. Database, cache and preset
// failures are logged and reported but do not fail the run.
func (c *Collector) Run(ctx context.Context, date time.Time) (*Result, error) {
	start := time.Now()
	log := c.logger.WithField("date", date.Format(dateLayout))
	log.Info("Starting daily snapshot")

	// 1. Fetch
	resp, err := c.scanner.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyFetch
	}
	log.WithField("rows", len(resp.Data)).Info("Fetched scanner rows")

	// 2. Validate before anything is written
	snap, err := FromResponse(date, resp)
	if err != nil {
		return nil, err
	}

	result := &Result{Date: date, Summary: snap.Summarize()}

	// Coverage problems are reported, the snapshot is still stored
	result.Quality = CheckQuality(snap, c.quality)
	qlog := log.WithFields(map[string]interface{}{
		"score":  result.Quality.QualityScore,
		"passed": result.Quality.Passed,
	})
	if result.Quality.Passed {
		qlog.Info("Snapshot quality check passed")
	} else {
		qlog.WithField("failures", result.Quality.Failures).Warn("Snapshot quality below thresholds")
	}

	// 3. Files
	if result.JSONPath, err = c.store.SaveRaw(date, resp); err != nil {
		return nil, err
	}
	if result.CSVPath, err = c.store.SaveCSV(date, resp); err != nil {
		return nil, err
	}
	if result.SummaryPath, err = c.store.SaveSummary(date, result.Summary); err != nil {
		return nil, err
	}
	log.WithField("path", result.JSONPath).Info("Saved snapshot files")

	// 4. Database
	if c.repo != nil {
		n, err := c.repo.InsertSnapshot(ctx, snap, result.Summary)
		if err != nil {
			log.WithError(err).Warn("Database insert failed")
		} else {
			result.RowsInserted = n
			log.WithField("rows", n).Info("Saved snapshot to database")
		}
	}

	// 5. Cache
	if c.cache != nil {
		if err := c.cache.Put(ctx, snap); err != nil {
			log.WithError(err).Warn("Snapshot cache refresh failed")
		}
	}

	// 6. Presets
	for _, name := range tradingview.PresetNames() {
		presetResp, err := c.scanner.Preset(ctx, name, presetLimit)
		if err == nil {
			_, err = c.store.SavePreset(date, name, presetResp)
		}
		if err != nil {
			if result.PresetErrors == nil {
				result.PresetErrors = make(map[string]string)
			}
			result.PresetErrors[name] = err.Error()
			log.WithError(err).WithField("preset", name).Warn("Could not fetch preset")
			continue
		}
		result.Presets = append(result.Presets, name)
	}

	fields := map[string]interface{}{
		"total":    result.Summary.TotalStocks,
		"gainers":  result.Summary.Gainers,
		"losers":   result.Summary.Losers,
		"presets":  len(result.Presets),
		"duration": time.Since(start).String(),
	}
	if result.Summary.AvgChange != nil {
		fields["avg_change"] = *result.Summary.AvgChange
	}
	log.WithFields(fields).Info("Daily snapshot complete")

	return result, nil
}
