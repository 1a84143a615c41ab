package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/wonny/asx-screener/internal/format"
	"github.com/wonny/asx-screener/internal/screener"
)

// bandClass maps rating labels onto CSS class suffixes
var bandClass = map[format.Band]string{
	format.BandStrongBuy:  "strong-buy",
	format.BandBuy:        "buy",
	format.BandNeutral:    "neutral",
	format.BandSell:       "sell",
	format.BandStrongSell: "strong-sell",
}

// CellClass returns the CSS classes of a cell: sign-*, band-*, flag-*
func CellClass(c format.Cell) string {
	var classes []string
	if c.Sign != "" {
		classes = append(classes, "sign-"+string(c.Sign))
	}
	if suffix, ok := bandClass[c.Band]; ok {
		classes = append(classes, "band-"+suffix)
	}
	if c.Highlight != format.FlagNone {
		classes = append(classes, "flag-"+string(c.Highlight))
	}
	return strings.Join(classes, " ")
}

// headerClass marks pinned and sorted headers
func headerClass(col screener.Column) string {
	var classes []string
	if col.Pinned {
		classes = append(classes, "pinned")
	}
	if col.Sortable {
		classes = append(classes, "sortable")
	}
	if col.Sort != "" {
		classes = append(classes, "sorted-"+col.Sort)
	}
	return strings.Join(classes, " ")
}

func sortArrow(dir string) string {
	switch dir {
	case "asc":
		return " ▲"
	case "desc":
		return " ▼"
	}
	return ""
}

// pageLabel renders "Page 1 of 3 (51-100 of 120)" with one-based numbers
func pageLabel(v screener.View) string {
	if v.Matched == 0 {
		return "No matching stocks"
	}
	return fmt.Sprintf("Page %d of %d (%d-%d of %d)",
		v.Page.Index+1, v.Page.Count, v.Page.Start+1, v.Page.End, v.Matched)
}

var funcs = template.FuncMap{
	"cellClass":   CellClass,
	"headerClass": headerClass,
	"sortArrow":   sortArrow,
	"pageLabel":   pageLabel,
}

const tableHTML = `{{define "table"}}<table class="screener">
<thead><tr>{{range .Columns}}<th data-field="{{.Field}}"{{with headerClass .}} class="{{.}}"{{end}}>{{.Label}}{{sortArrow .Sort}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr data-symbol="{{.Symbol}}">{{range .Cells}}<td{{with cellClass .}} class="{{.}}"{{end}}>{{.Text}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
<p class="pager">{{pageLabel .}}</p>{{end}}`

const documentHTML = `{{define "document"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
table.screener { border-collapse: collapse; font: 13px sans-serif; }
table.screener th, table.screener td { padding: 4px 8px; border-bottom: 1px solid #ddd; text-align: right; }
table.screener th.pinned, table.screener td:first-child { text-align: left; position: sticky; left: 0; background: #fff; }
.sign-positive { color: #089981; } .sign-negative { color: #f23645; }
.band-strong-buy, .band-buy { color: #089981; } .band-sell, .band-strong-sell { color: #f23645; }
.flag-overbought { background: #fde2e2; } .flag-oversold { background: #def7ec; }
.flag-strong, .flag-elevated { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .View.Date}}<p class="date">Snapshot {{.View.Date}}</p>{{end}}
{{template "table" .View}}
</body>
</html>
{{end}}`

var templates = template.Must(template.New("render").Funcs(funcs).Parse(tableHTML + documentHTML))

// Table writes the visible page of v as an HTML table fragment
func Table(w io.Writer, v screener.View) error {
	return templates.ExecuteTemplate(w, "table", v)
}

// Document writes v as a standalone HTML page
func Document(w io.Writer, title string, v screener.View) error {
	if title == "" {
		title = "ASX Screener"
	}
	return templates.ExecuteTemplate(w, "document", struct {
		Title string
		View  screener.View
	}{title, v})
}
