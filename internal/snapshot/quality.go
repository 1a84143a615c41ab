package snapshot

import (
	"fmt"
	"sort"
	"time"

	"github.com/wonny/asx-screener/internal/contracts"
)

// QualityConfig holds the coverage thresholds of a fetched snapshot. ASX
// carries many illiquid listings, so volume and fundamentals stay lenient.
type QualityConfig struct {
	MinStocks               int     `yaml:"min_stocks"`
	MinPriceCoverage        float64 `yaml:"min_price_coverage"`
	MinVolumeCoverage       float64 `yaml:"min_volume_coverage"`
	MinMarketCapCoverage    float64 `yaml:"min_market_cap_coverage"`
	MinTechnicalCoverage    float64 `yaml:"min_technical_coverage"`
	MinFundamentalsCoverage float64 `yaml:"min_fundamentals_coverage"`
	MinSectorCoverage       float64 `yaml:"min_sector_coverage"`
}

// DefaultQualityConfig is applied by the collector
var DefaultQualityConfig = QualityConfig{
	MinStocks:               1000,
	MinPriceCoverage:        0.99,
	MinVolumeCoverage:       0.50,
	MinMarketCapCoverage:    0.80,
	MinTechnicalCoverage:    0.70,
	MinFundamentalsCoverage: 0.30,
	MinSectorCoverage:       0.80,
}

// QualityReport is the coverage check of one snapshot
type QualityReport struct {
	Date         time.Time          `json:"date"`
	TotalStocks  int                `json:"total_stocks"`
	Coverage     map[string]float64 `json:"coverage"`
	QualityScore float64            `json:"quality_score"`
	Passed       bool               `json:"passed"`
	Failures     []string           `json:"failures,omitempty"`
}

// coverageRule is one measured attribute with its weight (weights sum to 1)
type coverageRule struct {
	name    string
	weight  float64
	present func(r *contracts.Record) bool
	min     func(c QualityConfig) float64
}

// ⭐ SSOT: 스냅샷 품질 커버리지 기준은 여기서만
var coverageRules = []coverageRule{
	{"price", 0.30, func(r *contracts.Record) bool { return r.Close != nil },
		func(c QualityConfig) float64 { return c.MinPriceCoverage }},
	{"volume", 0.25, func(r *contracts.Record) bool { return r.Volume != nil && *r.Volume > 0 },
		func(c QualityConfig) float64 { return c.MinVolumeCoverage }},
	{"market_cap", 0.15, func(r *contracts.Record) bool { return r.MarketCap != nil },
		func(c QualityConfig) float64 { return c.MinMarketCapCoverage }},
	{"technicals", 0.10, func(r *contracts.Record) bool { return r.RSI != nil },
		func(c QualityConfig) float64 { return c.MinTechnicalCoverage }},
	{"fundamentals", 0.10, func(r *contracts.Record) bool { return r.PE != nil || r.EPS != nil },
		func(c QualityConfig) float64 { return c.MinFundamentalsCoverage }},
	{"sector", 0.10, func(r *contracts.Record) bool { return r.Sector != nil && *r.Sector != "" },
		func(c QualityConfig) float64 { return c.MinSectorCoverage }},
}

// CheckQuality measures attribute coverage of snap against cfg
func CheckQuality(snap *contracts.Snapshot, cfg QualityConfig) *QualityReport {
	report := &QualityReport{
		Date:        snap.Date,
		TotalStocks: len(snap.Records),
		Coverage:    make(map[string]float64, len(coverageRules)),
	}

	if report.TotalStocks < cfg.MinStocks {
		report.Failures = append(report.Failures,
			fmt.Sprintf("stocks: %d < %d", report.TotalStocks, cfg.MinStocks))
	}

	for _, rule := range coverageRules {
		cov := 0.0
		if report.TotalStocks > 0 {
			n := 0
			for i := range snap.Records {
				if rule.present(&snap.Records[i]) {
					n++
				}
			}
			cov = float64(n) / float64(report.TotalStocks)
		}
		report.Coverage[rule.name] = cov
		report.QualityScore += cov * rule.weight

		if min := rule.min(cfg); cov < min {
			report.Failures = append(report.Failures,
				fmt.Sprintf("%s coverage: %.2f < %.2f", rule.name, cov, min))
		}
	}

	sort.Strings(report.Failures)
	report.Passed = len(report.Failures) == 0
	return report
}
