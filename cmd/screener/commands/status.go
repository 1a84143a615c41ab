package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/asx-screener/internal/snapshot"
	"github.com/wonny/asx-screener/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "시스템 상태 확인",
	Long: `설정, 최신 스냅샷, DB / Redis 연결 상태를 출력합니다.

Example:
  go run ./cmd/screener status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader("ASX Screener Status")
	PrintKeyValue("Env", a.cfg.Env, 12)
	PrintKeyValue("Snapshots", a.cfg.Snapshot.Dir, 12)
	PrintKeyValue("Schedule", a.cfg.Snapshot.Cron, 12)
	PrintKeyValue("Page size", fmt.Sprintf("%d", a.cfg.Screener.DefaultPageSize), 12)
	PrintSeparator()

	// 📸 Snapshot
	date, err := a.store.LatestDate()
	switch {
	case errors.Is(err, snapshot.ErrNoSnapshot):
		PrintWarning("No snapshot yet: run `screener fetch`")
	case err != nil:
		PrintError(fmt.Sprintf("Snapshot store: %v", err))
	default:
		age := time.Since(date).Truncate(time.Hour)
		PrintSuccess(fmt.Sprintf("Latest snapshot %s (%s old)", date.Format("2006-01-02"), age))
		if summary, err := a.store.LoadSummary(date); err == nil {
			PrintSummary(*summary)
		}
	}
	PrintSeparator()

	// 🗄️ Database
	if a.db == nil {
		PrintInfo("Database: not connected")
	} else {
		health, err := a.db.HealthCheck(ctx)
		if err != nil {
			PrintError(fmt.Sprintf("Database: %v", err))
		} else {
			PrintSuccess(fmt.Sprintf("Database: %s (%d/%d conns)",
				health.ResponseTime.Round(time.Millisecond), health.Stats.TotalConns, health.Stats.MaxConns))
		}
		if latest, err := a.repo.LatestDate(ctx); err == nil {
			PrintKeyValue("DB latest", latest.Format("2006-01-02"), 12)
		}
	}

	// ⚡ Redis
	switch err := a.redis.Ping(ctx); {
	case errors.Is(err, redis.ErrDisabled):
		PrintInfo("Redis: disabled")
	case err != nil:
		PrintError(fmt.Sprintf("Redis: %v", err))
	default:
		PrintSuccess("Redis: ok")
	}

	return nil
}
