package screener

import (
	"fmt"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/contracts"
)

// Preset is a named, ready-made screen
type Preset struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Criteria    Criteria        `json:"criteria" yaml:"criteria"`
	Sort        SortSpec        `json:"sort" yaml:"sort"`
	Columns     []columns.Field `json:"columns,omitempty" yaml:"columns,omitempty"` // shown on apply
}

// State is the complete user-controlled state of one screening session
type State struct {
	Criteria   Criteria
	Sort       SortSpec
	Visibility *columns.Visibility
	PageSize   int
	PageIndex  int
}

// Options configures a new controller
type Options struct {
	PageSize int      // DefaultPageSize when invalid
	Presets  []Preset // resolvable by ApplyPresetByName
}

// Controller owns the state of one screening session over an immutable
// snapshot. Every transition is total and returns the freshly derived View.
// A Controller is not safe for concurrent use.
// ⭐ SSOT: 필터 → 정렬 → 페이지 → 컬럼 투영 파이프라인
type Controller struct {
	date    string
	records []*contracts.Record
	presets map[string]Preset
	state   State

	// memoized derivations
	filterKey string
	filtered  []*contracts.Record
	sortKey   string
	sorted    []*contracts.Record
	optionKey string
	options   FilterOptions
	computed  bool
}

// NewController creates a session over snap. A record without identifier
// rejects the whole snapshot.
func NewController(snap *contracts.Snapshot, opts Options) (*Controller, error) {
	if snap == nil {
		return nil, fmt.Errorf("nil snapshot")
	}

	records := make([]*contracts.Record, len(snap.Records))
	for i := range snap.Records {
		if snap.Records[i].Symbol == "" {
			return nil, fmt.Errorf("record %d: %w", i, contracts.ErrMissingSymbol)
		}
		records[i] = &snap.Records[i]
	}

	pageSize := opts.PageSize
	if !ValidPageSize(pageSize) {
		pageSize = DefaultPageSize
	}

	presets := make(map[string]Preset, len(opts.Presets))
	for _, p := range opts.Presets {
		presets[p.Name] = p
	}

	c := &Controller{
		records: records,
		presets: presets,
		state: State{
			Criteria:   NewCriteria(),
			Sort:       Unsorted,
			Visibility: columns.NewVisibility(),
			PageSize:   pageSize,
		},
	}
	if !snap.Date.IsZero() {
		c.date = snap.Date.Format("2006-01-02")
	}
	return c, nil
}

// State returns a copy of the current state
func (c *Controller) State() State {
	s := c.state
	s.Visibility = c.state.Visibility.Clone()
	return s
}

// Total returns the snapshot size
func (c *Controller) Total() int {
	return len(c.records)
}

// View derives the current renderable view
func (c *Controller) View() View {
	sorted := c.derive()

	page, meta := PageOf(sorted, c.state.PageSize, c.state.PageIndex)
	c.state.PageIndex = meta.Index

	cols, rows := project(page, c.state.Visibility.Visible(), c.state.Sort)
	return View{
		Date:     c.date,
		Columns:  cols,
		Rows:     rows,
		Page:     meta,
		Matched:  len(sorted),
		Total:    len(c.records),
		Sort:     c.state.Sort,
		Criteria: c.state.Criteria,
		Options:  c.options,
		Records:  page,
	}
}

// Matched returns the full filtered and sorted sequence
func (c *Controller) Matched() []*contracts.Record {
	sorted := c.derive()
	out := make([]*contracts.Record, len(sorted))
	copy(out, sorted)
	return out
}

// derive refreshes the memoized stages whose inputs changed
func (c *Controller) derive() []*contracts.Record {
	fk := c.state.Criteria.key()
	if !c.computed || fk != c.filterKey {
		c.filtered = Filter(c.records, c.state.Criteria)
		c.filterKey = fk
		c.sortKey = "" // force re-sort
	}

	sk := fk + "|" + c.state.Sort.Field.String() + ":" + c.state.Sort.Direction.String()
	if !c.state.Sort.Active() {
		sk = fk + "|"
	}
	if !c.computed || sk != c.sortKey {
		c.sorted = Sort(c.filtered, c.state.Sort)
		c.sortKey = sk
	}

	ok := normalize(c.state.Criteria.Sector)
	if !c.computed || ok != c.optionKey {
		c.options = BuildOptions(c.records, c.state.Criteria)
		c.optionKey = ok
	}

	c.computed = true
	return c.sorted
}

// SetCriteria replaces the whole criteria set. When the sector changes the
// industry resets to Any in the same transition.
func (c *Controller) SetCriteria(next Criteria) View {
	if normalize(next.Sector) != normalize(c.state.Criteria.Sector) {
		next.Industry = Any
	}
	c.state.Criteria = next
	return c.View()
}

// SetSector changes the primary classification; the industry resets to Any
// when the sector actually changes
func (c *Controller) SetSector(sector string) View {
	c.state.Criteria = c.state.Criteria.WithSector(sector)
	return c.View()
}

// SetIndustry changes the secondary classification
func (c *Controller) SetIndustry(industry string) View {
	return c.SetCategory(columns.FieldIndustry, industry)
}

// SetCategory changes one categorical selector. Non-categorical fields are
// ignored.
func (c *Controller) SetCategory(f columns.Field, value string) View {
	c.state.Criteria = c.state.Criteria.WithCategory(f, value)
	return c.View()
}

// SetRange changes one numeric range. Bounds are applied literally, so an
// inverted range can yield no rows.
func (c *Controller) SetRange(f columns.Field, r Range) View {
	c.state.Criteria = c.state.Criteria.WithRange(f, r)
	return c.View()
}

// SetQuery changes the ticker/company search text
func (c *Controller) SetQuery(q string) View {
	c.state.Criteria.Query = q
	return c.View()
}

// ResetFilters clears every constraint
func (c *Controller) ResetFilters() View {
	c.state.Criteria = NewCriteria()
	return c.View()
}

// ToggleSort advances the sort cycle for a header click on f
func (c *Controller) ToggleSort(f columns.Field) View {
	c.state.Sort = c.state.Sort.Toggle(f)
	return c.View()
}

// SetSort replaces the sort. Unknown or non-sortable fields keep the
// previous sort.
func (c *Controller) SetSort(spec SortSpec) View {
	if !spec.Active() {
		c.state.Sort = Unsorted
	} else if Sortable(spec.Field) {
		c.state.Sort = spec
	}
	return c.View()
}

// ClearSort returns to the filter-stage order
func (c *Controller) ClearSort() View {
	c.state.Sort = Unsorted
	return c.View()
}

// ToggleColumn shows or hides one column; the pinned column ignores it
func (c *Controller) ToggleColumn(f columns.Field, visible bool) View {
	c.state.Visibility.Toggle(f, visible)
	return c.View()
}

// ShowAllColumns shows every column
func (c *Controller) ShowAllColumns() View {
	c.state.Visibility.ShowAll()
	return c.View()
}

// HideAllColumns hides every column except the pinned one
func (c *Controller) HideAllColumns() View {
	c.state.Visibility.HideAll()
	return c.View()
}

// ShowGroup shows every column of a group
func (c *Controller) ShowGroup(g columns.Group) View {
	c.state.Visibility.ShowGroup(g)
	return c.View()
}

// HideGroup hides every non-pinned column of a group
func (c *Controller) HideGroup(g columns.Group) View {
	c.state.Visibility.HideGroup(g)
	return c.View()
}

// SetPageSize changes the page size; sizes outside PageSizes are ignored
func (c *Controller) SetPageSize(size int) View {
	if ValidPageSize(size) {
		c.state.PageSize = size
	}
	return c.View()
}

// SetPage jumps to a page; the index is clamped
func (c *Controller) SetPage(index int) View {
	c.state.PageIndex = index
	return c.View()
}

// NextPage advances one page, stopping at the last
func (c *Controller) NextPage() View {
	return c.SetPage(c.state.PageIndex + 1)
}

// PrevPage goes back one page, stopping at the first
func (c *Controller) PrevPage() View {
	return c.SetPage(c.state.PageIndex - 1)
}

// ApplyPreset replaces criteria and sort with the preset's, shows its
// columns and returns to the first page
func (c *Controller) ApplyPreset(p Preset) View {
	crit := NewCriteria()
	if p.Criteria != (Criteria{}) {
		crit = p.Criteria
	}
	c.state.Criteria = crit
	c.state.Sort = Unsorted
	if p.Sort.Active() && Sortable(p.Sort.Field) {
		c.state.Sort = p.Sort
	}
	for _, f := range p.Columns {
		c.state.Visibility.Toggle(f, true)
	}
	c.state.PageIndex = 0
	return c.View()
}

// ApplyPresetByName applies a configured preset. Unknown names leave the
// state unchanged and report false.
func (c *Controller) ApplyPresetByName(name string) (View, bool) {
	p, ok := c.presets[name]
	if !ok {
		return c.View(), false
	}
	return c.ApplyPreset(p), true
}
