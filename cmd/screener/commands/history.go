package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/asx-screener/internal/format"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [symbol]",
	Short: "종목별 일자 이력 (DB)",
	Long: `DB에 저장된 종목의 일자별 가격/등락률 이력을 출력합니다.
DATABASE_URL 설정이 필요합니다.

Example:
  go run ./cmd/screener history BHP
  go run ./cmd/screener history ASX:CBA --days 60`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

// datesCmd represents the dates command
var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "저장된 스냅샷 일자 목록",
	Long: `파일 저장소(기본) 또는 DB(--db)에 저장된 스냅샷 일자를 최신순으로 출력합니다.

Example:
  go run ./cmd/screener dates
  go run ./cmd/screener dates --db --symbols`,
	RunE: runDates,
}

var (
	historyDays  int
	datesFromDB  bool
	datesSymbols bool
)

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(datesCmd)

	historyCmd.Flags().IntVar(&historyDays, "days", 30, "number of snapshots")
	datesCmd.Flags().BoolVar(&datesFromDB, "db", false, "list dates stored in the database")
	datesCmd.Flags().BoolVar(&datesSymbols, "symbols", false, "also count stored symbols (database)")
}

// qualify prefixes a bare ticker with the ASX exchange
func qualify(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if strings.Contains(symbol, ":") {
		return symbol
	}
	return "ASX:" + symbol
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.repo == nil {
		return fmt.Errorf("history needs DATABASE_URL")
	}

	symbol := qualify(args[0])
	points, err := a.repo.History(ctx, symbol, historyDays)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		PrintWarning(fmt.Sprintf("No history for %s", symbol))
		return nil
	}

	PrintHeader(fmt.Sprintf("%s - last %d snapshots", symbol, len(points)))
	widths := []int{10, 10, 9, 10, 6}
	PrintTableHeader([]string{"Date", "Price", "Change", "Volume", "RSI"}, widths)
	for _, p := range points {
		r := p.Record
		PrintTableRow([]string{
			p.Date.Format("2006-01-02"),
			format.Price(r.Close),
			format.Percent(r.Change),
			format.Magnitude(r.Volume),
			format.Number(r.RSI),
		}, widths)
	}
	return nil
}

func runDates(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var dates []time.Time
	source := a.store.Dir()
	if datesFromDB {
		if a.repo == nil {
			return fmt.Errorf("--db needs DATABASE_URL")
		}
		source = "database"
		dates, err = a.repo.Dates(ctx)
	} else {
		dates, err = a.store.Dates()
	}
	if err != nil {
		return err
	}

	PrintHeader(fmt.Sprintf("%d snapshots in %s", len(dates), source))
	for _, d := range dates {
		fmt.Printf("   %s\n", d.Format("2006-01-02 (Mon)"))
	}

	if datesSymbols && a.repo != nil {
		symbols, err := a.repo.Symbols(ctx)
		if err != nil {
			return err
		}
		PrintSeparator()
		PrintKeyValue("Symbols", fmt.Sprintf("%d", len(symbols)), 8)
	}
	return nil
}
