package handlers

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/screener"
)

// ParseScreenQuery translates one-shot screen query parameters into the
// actions that reproduce them on a fresh session:
//
//	preset=overbought sector=Finance industry=... exchange=ASX type=stock
//	q=bhp min.rsi=70 max.pe=15 sort=change dir=desc
//
// Bounds must be finite numbers. An unknown sort column is ignored.
//	columns=close,change,rsi page_size=25 page=2
//
// Actions come back in a fixed order (preset, selectors, query, ranges,
// sort, columns, page size, page) so later parameters refine earlier ones.
func ParseScreenQuery(values url.Values) ([]screener.Action, error) {
	var actions []screener.Action

	if name := values.Get("preset"); name != "" {
		actions = append(actions, screener.Action{Type: screener.ActionApplyPreset, Preset: name})
	}

	for _, f := range screener.CategoryFields() {
		if v, ok := values[f.String()]; ok && len(v) > 0 {
			actions = append(actions, screener.Action{Type: screener.ActionSetCategory, Field: f, Value: v[0]})
		}
	}

	if q := values.Get("q"); q != "" {
		actions = append(actions, screener.Action{Type: screener.ActionSetQuery, Value: q})
	}

	ranges, err := parseRanges(values)
	if err != nil {
		return nil, err
	}
	actions = append(actions, ranges...)

	// an unknown sort column is a no-op, like a click on a missing header
	if f, ok := columns.ParseField(values.Get("sort")); ok {
		var dir screener.Direction
		if err := dir.UnmarshalText([]byte(values.Get("dir"))); err != nil {
			return nil, err
		}
		actions = append(actions, screener.Action{
			Type: screener.ActionSetSort,
			Sort: &screener.SortSpec{Field: f, Direction: dir},
		})
	}

	if cols := values.Get("columns"); cols != "" {
		actions = append(actions, screener.Action{Type: screener.ActionHideAllColumns})
		for _, id := range strings.Split(cols, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			f, ok := columns.ParseField(id)
			if !ok {
				return nil, fmt.Errorf("unknown column %q", id)
			}
			actions = append(actions, screener.Action{Type: screener.ActionToggleColumn, Field: f, Visible: true})
		}
	}

	if s := values.Get("page_size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid page_size %q", s)
		}
		actions = append(actions, screener.Action{Type: screener.ActionSetPageSize, PageSize: n})
	}

	if s := values.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid page %q", s)
		}
		actions = append(actions, screener.Action{Type: screener.ActionSetPage, Page: n})
	}

	return actions, nil
}

// parseRanges collects min.<field> and max.<field> pairs, one set_range
// action per field in field-name order
func parseRanges(values url.Values) ([]screener.Action, error) {
	bounds := make(map[columns.Field]*screener.Range)

	for key, vals := range values {
		side, name, found := strings.Cut(key, ".")
		if !found || (side != "min" && side != "max") || len(vals) == 0 {
			continue
		}

		f, ok := columns.ParseField(name)
		if !ok {
			return nil, fmt.Errorf("unknown range field %q", name)
		}
		if _, ok := screener.NewCriteria().Range(f); !ok {
			return nil, fmt.Errorf("%s is not a range filter", name)
		}

		v, err := strconv.ParseFloat(vals[0], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid %s value %q", key, vals[0])
		}

		r := bounds[f]
		if r == nil {
			r = &screener.Range{}
			bounds[f] = r
		}
		if side == "min" {
			r.Min = &v
		} else {
			r.Max = &v
		}
	}

	fields := make([]columns.Field, 0, len(bounds))
	for f := range bounds {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].String() < fields[j].String() })

	actions := make([]screener.Action, 0, len(fields))
	for _, f := range fields {
		actions = append(actions, screener.Action{Type: screener.ActionSetRange, Field: f, Range: *bounds[f]})
	}
	return actions, nil
}
