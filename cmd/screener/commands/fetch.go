package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/asx-screener/internal/snapshot"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "일일 스냅샷 수집",
	Long: `TradingView 스캐너에서 ASX 전 종목 스냅샷을 수집합니다.

이 명령어는:
- 전 종목을 배치 단위로 수집
- JSON / CSV / summary 파일 저장 (SNAPSHOT_DIR/YYYY/MM)
- 프리셋 결과 저장 (presets/)
- DATABASE_URL 설정 시 DB 저장
- Redis 활성화 시 최신 스냅샷 캐시 갱신

Example:
  go run ./cmd/screener fetch
  go run ./cmd/screener fetch --date 2026-02-18`,
	RunE: runFetch,
}

var (
	fetchDate    string
	fetchTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchDate, "date", "", "snapshot date YYYY-MM-DD (default today)")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 10*time.Minute, "overall fetch timeout")
}

func runFetch(cmd *cobra.Command, args []string) error {
	date := time.Now()
	if fetchDate != "" {
		d, err := snapshot.ParseDate(fetchDate)
		if err != nil {
			return err
		}
		date = d
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader("ASX Snapshot Fetch")
	PrintKeyValue("Date", date.Format("2006-01-02"), 10)
	PrintKeyValue("Scanner", a.cfg.Snapshot.ScannerURL, 10)
	PrintKeyValue("Dir", a.cfg.Snapshot.Dir, 10)
	PrintSeparator()

	col, err := a.collector(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := col.Run(ctx, date)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	fmt.Println()
	PrintSummary(result.Summary)
	fmt.Println()
	PrintKeyValue("JSON", result.JSONPath, 10)
	PrintKeyValue("CSV", result.CSVPath, 10)
	PrintKeyValue("Summary", result.SummaryPath, 10)
	if a.repo != nil {
		PrintKeyValue("DB rows", fmt.Sprintf("%d", result.RowsInserted), 10)
	}
	PrintKeyValue("Presets", fmt.Sprintf("%d saved", len(result.Presets)), 10)
	if q := result.Quality; q != nil {
		PrintKeyValue("Quality", fmt.Sprintf("%.2f", q.QualityScore), 10)
		if !q.Passed {
			PrintWarning("Snapshot quality below thresholds")
			PrintList(q.Failures)
		}
	}

	if len(result.PresetErrors) > 0 {
		names := make([]string, 0, len(result.PresetErrors))
		for name, msg := range result.PresetErrors {
			names = append(names, name+": "+msg)
		}
		sort.Strings(names)
		PrintWarning("Some presets failed")
		PrintList(names)
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("Snapshot fetched in %.2fs", time.Since(start).Seconds()))
	return nil
}
