package screener

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/contracts"
)

func newController(t *testing.T, snap *contracts.Snapshot, opts Options) *Controller {
	t.Helper()
	c, err := NewController(snap, opts)
	require.NoError(t, err)
	return c
}

func tickers(v View) []string {
	out := make([]string, len(v.Records))
	for i, r := range v.Records {
		out[i] = r.Ticker()
	}
	return out
}

func TestController_EndToEndScenario(t *testing.T) {
	c := newController(t, scenario(), Options{})

	view := c.View()
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, tickers(view), "initial order is snapshot order")

	view = c.SetSector("Tech")
	assert.Equal(t, []string{"AAA", "BBB"}, tickers(view))

	view = c.SetRange(columns.FieldRSI, Range{Min: f(70)})
	assert.Equal(t, []string{"AAA"}, tickers(view), "BBB has RSI 20")

	view = c.SetSector(Any)
	assert.Equal(t, []string{"AAA", "CCC"}, tickers(view), "CCC passes with missing RSI")

	c.ResetFilters()
	view = c.SetSort(SortSpec{Field: columns.FieldMarketCap, Direction: Descending})
	assert.Equal(t, []string{"BBB", "CCC", "AAA"}, tickers(view))
	assert.Equal(t, 3, view.Matched)
	assert.Equal(t, 3, view.Total)
}

func TestController_RejectsMissingSymbol(t *testing.T) {
	snap := &contracts.Snapshot{Records: []contracts.Record{{Symbol: "ASX:AAA"}, {}}}

	_, err := NewController(snap, Options{})
	assert.True(t, errors.Is(err, contracts.ErrMissingSymbol))

	_, err = NewController(nil, Options{})
	assert.Error(t, err)
}

func TestController_CascadeResetInSameTransition(t *testing.T) {
	snap := &contracts.Snapshot{Records: []contracts.Record{
		{Symbol: "ASX:A", Sector: s("Finance"), Industry: s("Banks")},
		{Symbol: "ASX:B", Sector: s("Energy"), Industry: s("Coal")},
	}}
	c := newController(t, snap, Options{})

	c.SetSector("Finance")
	view := c.SetIndustry("Banks")
	assert.Equal(t, []string{"Banks"}, view.Options.Industries)
	assert.Equal(t, []string{"A"}, tickers(view))

	view = c.SetSector("Energy")
	assert.Equal(t, Any, view.Criteria.Industry)
	assert.Equal(t, []string{"Coal"}, view.Options.Industries)
	assert.Equal(t, []string{"B"}, tickers(view))
}

func TestController_SetCriteriaResetsIndustryOnSectorChange(t *testing.T) {
	snap := &contracts.Snapshot{Records: []contracts.Record{
		{Symbol: "ASX:A", Sector: s("Finance"), Industry: s("Banks")},
		{Symbol: "ASX:B", Sector: s("Energy"), Industry: s("Coal")},
		{Symbol: "ASX:C", Sector: s("Energy"), Industry: s("Banks")},
	}}
	c := newController(t, snap, Options{})

	c.SetSector("Finance")
	view := c.SetIndustry("Banks")
	assert.Equal(t, []string{"A"}, tickers(view))

	// Banks is still legal under Energy but the sector changed
	next := view.Criteria
	next.Sector = "Energy"
	view = c.SetCriteria(next)
	assert.Equal(t, Any, view.Criteria.Industry)
	assert.Equal(t, []string{"B", "C"}, tickers(view))

	// same sector keeps the industry
	next = view.Criteria
	next.Industry = "Coal"
	view = c.SetCriteria(next)
	assert.Equal(t, "Coal", view.Criteria.Industry)
	assert.Equal(t, []string{"B"}, tickers(view))

	// Any to a sector is a change too
	c.ResetFilters()
	next = NewCriteria()
	next.Sector = "Energy"
	next.Industry = "Coal"
	view = c.SetCriteria(next)
	assert.Equal(t, Any, view.Criteria.Industry)
}

func TestController_PageReclampsWhenFilterShrinks(t *testing.T) {
	snap := &contracts.Snapshot{}
	for _, r := range universe(120) {
		snap.Records = append(snap.Records, *r)
	}
	c := newController(t, snap, Options{PageSize: 25})

	view := c.SetPage(4)
	assert.Equal(t, 4, view.Page.Index)
	assert.Len(t, view.Rows, 20)

	view = c.SetSector("Energy")
	assert.Equal(t, 40, view.Matched)
	assert.Equal(t, 1, view.Page.Index)
	assert.NotEmpty(t, view.Rows)

	view = c.SetPageSize(100)
	assert.Equal(t, 0, view.Page.Index)
	assert.Len(t, view.Rows, 40)

	view = c.SetPageSize(30)
	assert.Equal(t, 100, view.Page.Size, "invalid size ignored")

	view = c.NextPage()
	assert.Equal(t, 0, view.Page.Index, "single page")
	view = c.PrevPage()
	assert.Equal(t, 0, view.Page.Index)
}

func TestController_ToggleSortCycle(t *testing.T) {
	c := newController(t, scenario(), Options{})

	view := c.ToggleSort(columns.FieldChange)
	assert.Equal(t, []string{"BBB", "CCC", "AAA"}, tickers(view))

	view = c.ToggleSort(columns.FieldChange)
	assert.Equal(t, []string{"AAA", "CCC", "BBB"}, tickers(view))

	view = c.ToggleSort(columns.FieldChange)
	assert.False(t, view.Sort.Active())
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, tickers(view))

	c.SetSort(SortSpec{Field: columns.FieldChange, Direction: Descending})
	view = c.SetSort(SortSpec{Field: columns.Field(999)})
	assert.Equal(t, columns.FieldChange, view.Sort.Field, "unknown field keeps the previous sort")
	assert.Equal(t, []string{"AAA", "CCC", "BBB"}, tickers(view))
}

func TestController_Columns(t *testing.T) {
	c := newController(t, scenario(), Options{})

	view := c.View()
	require.NotEmpty(t, view.Columns)
	assert.Equal(t, columns.FieldTicker, view.Columns[0].Field)
	assert.True(t, view.Columns[0].Pinned)
	for _, row := range view.Rows {
		assert.Len(t, row.Cells, len(view.Columns))
	}

	view = c.HideAllColumns()
	require.Len(t, view.Columns, 1)
	assert.Equal(t, "AAA", view.Rows[0].Cells[0].Text)

	view = c.ToggleColumn(columns.FieldTicker, false)
	assert.Len(t, view.Columns, 1, "pinned column cannot be hidden")

	view = c.ShowGroup(columns.GroupRatings)
	assert.Len(t, view.Columns, 4)

	view = c.HideGroup(columns.GroupRatings)
	assert.Len(t, view.Columns, 1)

	view = c.ShowAllColumns()
	assert.Len(t, view.Columns, len(columns.All()))

	c.ToggleSort(columns.FieldRSI)
	view = c.ToggleColumn(columns.FieldRSI, true)
	for _, col := range view.Columns {
		if col.Field == columns.FieldRSI {
			assert.Equal(t, "asc", col.Sort)
		} else {
			assert.Empty(t, col.Sort)
		}
	}
}

func TestController_FilterDoesNotTouchVisibility(t *testing.T) {
	c := newController(t, scenario(), Options{})
	before := c.State().Visibility.Fields()

	c.SetSector("Energy")
	c.ToggleSort(columns.FieldClose)
	c.SetRange(columns.FieldRSI, Range{Max: f(10)})

	assert.Equal(t, before, c.State().Visibility.Fields())
}

func TestController_ApplyPreset(t *testing.T) {
	overbought := Preset{
		Name:     "overbought",
		Criteria: NewCriteria().WithRange(columns.FieldRSI, Range{Min: f(70)}),
		Sort:     SortSpec{Field: columns.FieldRSI, Direction: Descending},
		Columns:  []columns.Field{columns.FieldRSI7},
	}
	c := newController(t, scenario(), Options{Presets: []Preset{overbought}})
	c.SetSector("Energy")

	view, ok := c.ApplyPresetByName("overbought")
	require.True(t, ok)
	assert.Equal(t, []string{"AAA", "CCC"}, tickers(view))
	assert.Equal(t, Any, view.Criteria.Sector, "preset replaces criteria wholesale")
	assert.True(t, c.State().Visibility.IsVisible(columns.FieldRSI7))

	_, ok = c.ApplyPresetByName("nope")
	assert.False(t, ok)
}

func TestController_Apply(t *testing.T) {
	c := newController(t, scenario(), Options{})

	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"type":"set_range","field":"rsi","range":{"min":70}}`), &a))
	view, err := c.Apply(a)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "CCC"}, tickers(view))

	require.NoError(t, json.Unmarshal([]byte(`{"type":"set_sort","sort":{"field":"market_cap","direction":"desc"}}`), &a))
	view, err = c.Apply(a)
	require.NoError(t, err)
	assert.Equal(t, []string{"CCC", "AAA"}, tickers(view))

	_, err = c.Apply(Action{Type: "explode"})
	assert.True(t, errors.Is(err, ErrUnknownAction))

	_, err = c.Apply(Action{Type: ActionApplyPreset, Preset: "missing"})
	assert.True(t, errors.Is(err, ErrUnknownPreset))

	_, err = c.Apply(Action{Type: ActionSetCriteria})
	assert.Error(t, err)
}

func TestAction_UnknownSortColumnIsNoOp(t *testing.T) {
	c := newController(t, scenario(), Options{})
	c.SetSort(SortSpec{Field: columns.FieldChange, Direction: Descending})

	for _, data := range []string{
		`{"type":"toggle_sort","field":"nope"}`,
		`{"type":"set_sort","sort":{"field":"nope","direction":"asc"}}`,
	} {
		var a Action
		require.NoError(t, json.Unmarshal([]byte(data), &a), data)
		view, err := c.Apply(a)
		require.NoError(t, err, data)
		assert.Equal(t, columns.FieldChange, view.Sort.Field, data)
		assert.Equal(t, []string{"AAA", "CCC", "BBB"}, tickers(view), data)
	}

	// unknown columns elsewhere stay errors
	var a Action
	assert.Error(t, json.Unmarshal([]byte(`{"type":"set_range","field":"nope"}`), &a))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"set_sort","sort":{"field":"rsi","direction":"sideways"}}`), &a))
}

func TestView_JSON(t *testing.T) {
	snap := scenario()
	snap.Date = time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC)
	c := newController(t, snap, Options{})

	view := c.ToggleSort(columns.FieldChange)
	data, err := json.Marshal(view)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2026-02-18", decoded["date"])
	assert.Equal(t, map[string]any{"field": "change", "direction": "asc"}, decoded["sort"])
	assert.NotContains(t, decoded, "Records")
}
