package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/asx-screener/internal/contracts"
)

func TestCheckQuality(t *testing.T) {
	snap := &contracts.Snapshot{Date: day("2026-02-18"), Records: []contracts.Record{
		{Symbol: "ASX:A", Close: contracts.Float(1), Volume: contracts.Float(100), MarketCap: contracts.Float(1e9),
			RSI: contracts.Float(50), PE: contracts.Float(12), Sector: contracts.String("Finance")},
		{Symbol: "ASX:B", Close: contracts.Float(2), Volume: contracts.Float(0), Sector: contracts.String("")},
	}}

	report := CheckQuality(snap, QualityConfig{MinPriceCoverage: 1, MinVolumeCoverage: 0.5})
	assert.True(t, report.Passed)
	assert.Equal(t, 2, report.TotalStocks)
	assert.Equal(t, 1.0, report.Coverage["price"])
	assert.Equal(t, 0.5, report.Coverage["volume"], "zero volume does not count")
	assert.Equal(t, 0.5, report.Coverage["sector"], "empty sector does not count")
	// 0.30 + 0.5 * (0.25 + 0.15 + 0.10 + 0.10 + 0.10)
	assert.InDelta(t, 0.65, report.QualityScore, 1e-9)
}

func TestCheckQuality_Failures(t *testing.T) {
	snap := &contracts.Snapshot{Date: day("2026-02-18"), Records: []contracts.Record{
		{Symbol: "ASX:A"},
	}}

	report := CheckQuality(snap, DefaultQualityConfig)
	assert.False(t, report.Passed)
	assert.Len(t, report.Failures, 1+len(coverageRules))
	assert.Zero(t, report.QualityScore)
}

func TestCheckQuality_Empty(t *testing.T) {
	report := CheckQuality(&contracts.Snapshot{}, QualityConfig{})
	assert.True(t, report.Passed)
	assert.Zero(t, report.Coverage["price"])
}
