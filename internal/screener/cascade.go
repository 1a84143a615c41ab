package screener

import (
	"sort"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/contracts"
)

// CategoryOptions returns the distinct non-empty values of a categorical column,
// sorted. Non-categorical fields yield nil.
func CategoryOptions(records []*contracts.Record, f columns.Field) []string {
	def, ok := columns.Lookup(f)
	if !ok || def.Kind == columns.KindNumeric {
		return nil
	}
	return distinct(records, func(r *contracts.Record) *string { return def.Text(r) })
}

// IndustryOptions returns the industries legal under the given sector: the
// distinct industries observed on records of that sector, or every industry
// when sector is Any.
func IndustryOptions(records []*contracts.Record, sector string) []string {
	if IsAny(sector) {
		return CategoryOptions(records, columns.FieldIndustry)
	}
	return distinct(records, func(r *contracts.Record) *string {
		if r.Sector == nil || *r.Sector != sector {
			return nil
		}
		return r.Industry
	})
}

func distinct(records []*contracts.Record, get func(*contracts.Record) *string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		v := get(r)
		if v == nil || *v == "" {
			continue
		}
		if _, ok := seen[*v]; ok {
			continue
		}
		seen[*v] = struct{}{}
		out = append(out, *v)
	}
	sort.Strings(out)
	return out
}

// FilterOptions holds the dropdown choices for every categorical selector
type FilterOptions struct {
	Sectors    []string `json:"sectors"`
	Industries []string `json:"industries"` // scoped by the selected sector
	Exchanges  []string `json:"exchanges"`
	Types      []string `json:"types"`
}

// BuildOptions derives the dropdown choices for the current criteria
func BuildOptions(records []*contracts.Record, c Criteria) FilterOptions {
	return FilterOptions{
		Sectors:    CategoryOptions(records, columns.FieldSector),
		Industries: IndustryOptions(records, c.Sector),
		Exchanges:  CategoryOptions(records, columns.FieldExchange),
		Types:      CategoryOptions(records, columns.FieldType),
	}
}
