package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/asx-screener/internal/columns"
	"github.com/wonny/asx-screener/internal/external/tradingview"
	"github.com/wonny/asx-screener/internal/screener"
)

// columnsCmd represents the columns command
var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "컬럼 목록",
	Long: `스크리너 컬럼 레지스트리를 그룹별로 출력합니다.

Subcommands:
  validate - 스캐너가 각 컬럼을 지원하는지 확인

Example:
  go run ./cmd/screener columns
  go run ./cmd/screener columns validate --delay 200ms`,
	RunE: runColumns,
}

var columnsValidateCmd = &cobra.Command{
	Use:   "validate [column...]",
	Short: "스캐너 컬럼 검증",
	Long: `각 스캐너 컬럼을 1행 요청으로 조회하여 유효성을 확인합니다.
인자가 없으면 수집 대상 전체 컬럼을 검증합니다.`,
	RunE: runColumnsValidate,
}

var (
	validateDelay time.Duration
)

func init() {
	rootCmd.AddCommand(columnsCmd)
	columnsCmd.AddCommand(columnsValidateCmd)

	columnsValidateCmd.Flags().DurationVar(&validateDelay, "delay", 100*time.Millisecond, "pause between column checks")
}

func runColumns(cmd *cobra.Command, args []string) error {
	widths := []int{20, 28, 26, 10, 8, 7}

	for _, g := range columns.Groups() {
		PrintHeader(g.String())
		PrintTableHeader([]string{"ID", "Label", "Scanner key", "Format", "Sort", "Filter"}, widths)

		for _, def := range columns.ByGroup(g) {
			_, rangeable := screener.NewCriteria().Range(def.Field)
			_, category := screener.NewCriteria().Category(def.Field)

			filter := ""
			switch {
			case rangeable:
				filter = "range"
			case category:
				filter = "select"
			}

			flags := ""
			if def.Sortable {
				flags = "yes"
			}
			if def.Pinned() {
				flags += " (pinned)"
			}

			PrintTableRow([]string{def.ID, def.Label, def.Key, def.Format.String(), flags, filter}, widths)
		}
	}
	fmt.Println()
	return nil
}

func runColumnsValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	target := args
	if len(target) == 0 {
		target = tradingview.Columns
	}

	PrintHeader(fmt.Sprintf("Validating %d scanner columns", len(target)))

	results, err := a.scanner().ValidateColumns(ctx, target, validateDelay)
	if err != nil {
		return err
	}

	invalid := 0
	for _, res := range results {
		if res.Valid {
			PrintSuccess(res.Column)
			continue
		}
		invalid++
		PrintError(fmt.Sprintf("%s: %s", res.Column, res.Error))
	}

	PrintSeparator()
	fmt.Printf("%d valid, %d invalid\n", len(results)-invalid, invalid)
	if invalid > 0 {
		return fmt.Errorf("%d invalid columns", invalid)
	}
	return nil
}
