package screener

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/contracts"
)

// Direction is the sort order of the active column
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// MarshalText encodes a direction as "asc" or "desc"
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes "asc"/"desc" (and the long forms)
func (d *Direction) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "asc", "ascending":
		*d = Ascending
	case "desc", "descending":
		*d = Descending
	default:
		return fmt.Errorf("unknown sort direction %q", string(text))
	}
	return nil
}

// SortSpec is the single active sort. The zero value means unsorted, which
// keeps the filter-stage order.
type SortSpec struct {
	Field     columns.Field `json:"field" yaml:"field"`
	Direction Direction     `json:"direction" yaml:"direction"`
}

// Unsorted is the zero spec
var Unsorted = SortSpec{}

// Active reports whether a sort is in force
func (s SortSpec) Active() bool {
	return s.Field != columns.FieldNone
}

// Sortable reports whether f can be sorted on
func Sortable(f columns.Field) bool {
	def, ok := columns.Lookup(f)
	return ok && def.Sortable
}

// Toggle returns the spec after a header click on f.
// Cycle: new column → ascending → descending → unsorted.
// Unknown or non-sortable columns leave the spec unchanged.
func (s SortSpec) Toggle(f columns.Field) SortSpec {
	if !Sortable(f) {
		return s
	}
	if s.Field != f {
		return SortSpec{Field: f, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortSpec{Field: f, Direction: Descending}
	}
	return Unsorted
}

// Compare orders a and b on column f: -1, 0 or +1. Missing values (nil,
// NaN, empty text) come after every present value in both directions;
// direction only reverses the order of present values.
func Compare(a, b *contracts.Record, f columns.Field, dir Direction) int {
	def, ok := columns.Lookup(f)
	if !ok {
		return 0
	}

	var c int
	if def.Kind == columns.KindNumeric {
		av, bv := def.Number(a), def.Number(b)
		am, bm := missingNumber(av), missingNumber(bv)
		switch {
		case am && bm:
			return 0
		case am:
			return 1
		case bm:
			return -1
		}
		c = compareFloat(*av, *bv)
	} else {
		av, bv := def.Text(a), def.Text(b)
		am, bm := missingText(av), missingText(bv)
		switch {
		case am && bm:
			return 0
		case am:
			return 1
		case bm:
			return -1
		}
		c = strings.Compare(*av, *bv)
	}

	if dir == Descending {
		return -c
	}
	return c
}

func missingNumber(v *float64) bool {
	return v == nil || math.IsNaN(*v)
}

func missingText(v *string) bool {
	return v == nil || *v == ""
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Sort returns a new slice ordered by spec. The sort is stable, so ties keep
// their filter-stage order. An inactive, unknown or non-sortable spec
// returns the input order.
func Sort(records []*contracts.Record, spec SortSpec) []*contracts.Record {
	out := make([]*contracts.Record, len(records))
	copy(out, records)
	if !spec.Active() || !Sortable(spec.Field) {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return Compare(out[i], out[j], spec.Field, spec.Direction) < 0
	})
	return out
}
