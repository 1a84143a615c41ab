package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// deployCmd represents the deploy command
var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "프론트엔드용 스냅샷 내보내기",
	Long: `최신 스냅샷을 프론트엔드가 읽는 평탄화된 JSON으로 내보냅니다.
원본 응답은 같은 디렉터리의 data-raw.json으로 복사됩니다.

Example:
  go run ./cmd/screener deploy
  go run ./cmd/screener deploy --out public/data.json`,
	RunE: runDeploy,
}

var (
	deployOut string
)

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().StringVar(&deployOut, "out", "", "output path (default SNAPSHOT_EXPORT_PATH)")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	out := deployOut
	if out == "" {
		out = a.cfg.Snapshot.ExportPath
	}

	result, err := a.store.Deploy(out)
	if err != nil {
		return fmt.Errorf("deploy: %w", err)
	}

	a.log.WithFields(map[string]interface{}{
		"source": result.Source,
		"output": result.Output,
		"rows":   result.Rows,
	}).Info("Snapshot deployed")

	PrintHeader("Snapshot Deploy")
	PrintKeyValue("Source", result.Source, 8)
	PrintKeyValue("Output", result.Output, 8)
	PrintKeyValue("Raw", result.RawCopy, 8)
	PrintKeyValue("Rows", fmt.Sprintf("%d", result.Rows), 8)
	PrintSuccess("Deployed")
	return nil
}
