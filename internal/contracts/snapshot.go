package contracts

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingSymbol rejects a snapshot containing a record without identifier
	ErrMissingSymbol = errors.New("record has no symbol")

	// ErrDuplicateSymbol rejects a snapshot containing the same identifier twice
	ErrDuplicateSymbol = errors.New("duplicate symbol")
)

// Snapshot is the immutable, session-scoped record collection
// ⭐ SSOT: Loader → Screener 전달 형식
type Snapshot struct {
	Date    time.Time `json:"date"`
	Records []Record  `json:"records"`
}

// Validate enforces the loader contract: every record has a unique,
// non-empty symbol. One bad record rejects the whole snapshot.
func (s *Snapshot) Validate() error {
	seen := make(map[string]int, len(s.Records))
	for i := range s.Records {
		symbol := s.Records[i].Symbol
		if symbol == "" {
			return fmt.Errorf("record %d: %w", i, ErrMissingSymbol)
		}
		if first, dup := seen[symbol]; dup {
			return fmt.Errorf("records %d and %d (%s): %w", first, i, symbol, ErrDuplicateSymbol)
		}
		seen[symbol] = i
	}
	return nil
}

// Count returns the number of records
func (s *Snapshot) Count() int {
	return len(s.Records)
}

// Mover identifies a stand-out record in a summary
type Mover struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
}

// Summary is the daily headline computed for each fetched snapshot
type Summary struct {
	Date           string   `json:"date"`
	TotalStocks    int      `json:"total_stocks"`
	MarketCapTotal *float64 `json:"market_cap_total"`
	AvgChange      *float64 `json:"avg_change"`
	Gainers        int      `json:"gainers"`
	Losers         int      `json:"losers"`
	Unchanged      int      `json:"unchanged"`
	TopGainer      *Mover   `json:"top_gainer,omitempty"`
	TopLoser       *Mover   `json:"top_loser,omitempty"`
	MostVolume     *Mover   `json:"most_volume,omitempty"`
}

// Summarize computes headline statistics. Records with a nil metric are
// skipped for that metric only.
func (s *Snapshot) Summarize() Summary {
	summary := Summary{
		Date:        s.Date.Format("2006-01-02"),
		TotalStocks: len(s.Records),
	}

	var capTotal, changeTotal float64
	var capCount, changeCount int

	for i := range s.Records {
		r := &s.Records[i]

		if r.MarketCap != nil {
			capTotal += *r.MarketCap
			capCount++
		}

		if r.Change != nil {
			change := *r.Change
			changeTotal += change
			changeCount++

			switch {
			case change > 0:
				summary.Gainers++
			case change < 0:
				summary.Losers++
			default:
				summary.Unchanged++
			}

			if summary.TopGainer == nil || change > summary.TopGainer.Value {
				summary.TopGainer = newMover(r, change)
			}
			if summary.TopLoser == nil || change < summary.TopLoser.Value {
				summary.TopLoser = newMover(r, change)
			}
		}

		if r.Volume != nil {
			if summary.MostVolume == nil || *r.Volume > summary.MostVolume.Value {
				summary.MostVolume = newMover(r, *r.Volume)
			}
		}
	}

	if capCount > 0 {
		summary.MarketCapTotal = &capTotal
	}
	if changeCount > 0 {
		avg := changeTotal / float64(changeCount)
		summary.AvgChange = &avg
	}

	return summary
}

func newMover(r *Record, value float64) *Mover {
	m := &Mover{Symbol: r.Symbol, Value: value}
	if r.Name != nil {
		m.Name = *r.Name
	}
	return m
}
