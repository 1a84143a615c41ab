package screener

import (
	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/internal/format"
)

// Column is one visible column header
type Column struct {
	Field    columns.Field  `json:"id"`
	Label    string         `json:"label"`
	Group    columns.Group  `json:"group"`
	Format   columns.Format `json:"format"`
	Sortable bool           `json:"sortable"`
	Pinned   bool           `json:"pinned"`
	Sort     string         `json:"sort,omitempty"` // "asc"/"desc" on the active sort column
}

// Row is one rendered record; Cells align with View.Columns
type Row struct {
	Symbol string        `json:"symbol"`
	Cells  []format.Cell `json:"cells"`
}

// View is the renderable result of the current state
type View struct {
	Date     string        `json:"date,omitempty"`
	Columns  []Column      `json:"columns"`
	Rows     []Row         `json:"rows"`
	Page     Page          `json:"page"`
	Matched  int           `json:"matched"` // records passing the filter
	Total    int           `json:"total"`   // records in the snapshot
	Sort     SortSpec      `json:"sort"`
	Criteria Criteria      `json:"criteria"`
	Options  FilterOptions `json:"options"`

	// Records are the raw records of the current page, in row order
	Records []*contracts.Record `json:"-"`
}

// Symbols returns the identifiers of the visible rows
func (v View) Symbols() []string {
	out := make([]string, len(v.Rows))
	for i, row := range v.Rows {
		out[i] = row.Symbol
	}
	return out
}

// project renders records through the visible column definitions
func project(records []*contracts.Record, defs []columns.Definition, sort SortSpec) ([]Column, []Row) {
	cols := make([]Column, len(defs))
	for i, def := range defs {
		cols[i] = Column{
			Field:    def.Field,
			Label:    def.Label,
			Group:    def.Group,
			Format:   def.Format,
			Sortable: def.Sortable,
			Pinned:   def.Pinned(),
		}
		if sort.Active() && sort.Field == def.Field {
			cols[i].Sort = sort.Direction.String()
		}
	}

	rows := make([]Row, len(records))
	for i, r := range records {
		cells := make([]format.Cell, len(defs))
		for j, def := range defs {
			cells[j] = format.CellOf(def, r)
		}
		rows[i] = Row{Symbol: r.Symbol, Cells: cells}
	}
	return cols, rows
}
