package screener

import (
	"strings"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/contracts"
)

// Matches reports whether a record satisfies every constraint in c.
// Predicates are independent and joined by AND:
//   - categorical: Any passes, otherwise exact string equality
//   - numeric range: a missing value passes, otherwise inclusive bounds
//   - query: case-insensitive substring of ticker or company name
func Matches(r *contracts.Record, c Criteria) bool {
	for _, s := range categorySlots {
		want := *s.get(&c)
		if IsAny(want) {
			continue
		}
		got := categoryValue(r, s.field)
		if got == nil || *got != want {
			return false
		}
	}

	if !matchesQuery(r, c.Query) {
		return false
	}

	for _, s := range rangeSlots {
		rng := s.get(&c)
		if !rng.Active() {
			continue
		}
		def, _ := columns.Lookup(s.field)
		if !rng.Contains(def.Number(r)) {
			return false
		}
	}
	return true
}

func matchesQuery(r *contracts.Record, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Ticker()), q) {
		return true
	}
	if r.Description != nil && strings.Contains(strings.ToLower(*r.Description), q) {
		return true
	}
	return false
}

// Filter returns the records matching c, preserving input order. The input
// slice and the records are never modified.
func Filter(records []*contracts.Record, c Criteria) []*contracts.Record {
	out := make([]*contracts.Record, 0, len(records))
	for _, r := range records {
		if Matches(r, c) {
			out = append(out, r)
		}
	}
	return out
}
