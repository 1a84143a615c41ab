package commands

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/internal/format"
	"github.com/wonny/asx-screener/internal/screener"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// maxCellWidth truncates long text cells (company names) in tables
const maxCellWidth = 32

// PrintHeader prints a framed command header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Print(pad(val, widths[i]))
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Printf("   • %s\n", item)
	}
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// pad left-aligns s in width runes; fmt's %-*s counts bytes
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// truncate shortens s to width runes with a trailing ellipsis
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-1]) + "…"
}

// PrintView prints the visible columns and rows of a view as a table
func PrintView(v screener.View) {
	headers := make([]string, len(v.Columns))
	widths := make([]int, len(v.Columns))
	for i, col := range v.Columns {
		label := col.Label
		switch col.Sort {
		case "asc":
			label += " ▲"
		case "desc":
			label += " ▼"
		}
		headers[i] = label
		widths[i] = utf8.RuneCountInString(label)
	}

	rows := make([][]string, len(v.Rows))
	for r, row := range v.Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = truncate(cell.Text, maxCellWidth)
			if n := utf8.RuneCountInString(cells[i]); n > widths[i] {
				widths[i] = n
			}
		}
		rows[r] = cells
	}

	PrintTableHeader(headers, widths)
	for _, cells := range rows {
		PrintTableRow(cells, widths)
	}
	PrintSeparator()

	if v.Matched == 0 {
		fmt.Println("No matching stocks")
		return
	}
	fmt.Printf("Page %d of %d (%d-%d of %d matched, %d total)\n",
		v.Page.Index+1, v.Page.Count, v.Page.Start+1, v.Page.End, v.Matched, v.Total)
}

// PrintSummary prints the headline statistics of a snapshot
func PrintSummary(s contracts.Summary) {
	PrintKeyValue("Date", s.Date, 14)
	PrintKeyValue("Stocks", fmt.Sprintf("%d", s.TotalStocks), 14)
	PrintKeyValue("Market cap", format.Magnitude(s.MarketCapTotal), 14)
	PrintKeyValue("Avg change", format.Percent(s.AvgChange), 14)
	PrintKeyValue("Gainers", fmt.Sprintf("%d", s.Gainers), 14)
	PrintKeyValue("Losers", fmt.Sprintf("%d", s.Losers), 14)
	PrintKeyValue("Unchanged", fmt.Sprintf("%d", s.Unchanged), 14)
	if s.TopGainer != nil {
		PrintKeyValue("Top gainer", moverLine(s.TopGainer, format.Percent), 14)
	}
	if s.TopLoser != nil {
		PrintKeyValue("Top loser", moverLine(s.TopLoser, format.Percent), 14)
	}
	if s.MostVolume != nil {
		PrintKeyValue("Most volume", moverLine(s.MostVolume, format.Magnitude), 14)
	}
}

func moverLine(m *contracts.Mover, render func(*float64) string) string {
	v := m.Value
	if m.Name == "" {
		return fmt.Sprintf("%s %s", m.Symbol, render(&v))
	}
	return fmt.Sprintf("%s %s (%s)", m.Symbol, render(&v), truncate(m.Name, maxCellWidth))
}
