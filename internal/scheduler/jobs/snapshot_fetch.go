package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/asx-screener/internal/scheduler"
	"github.com/wonny/asx-screener/internal/snapshot"
	"github.com/wonny/asx-screener/pkg/logger"
)

// DefaultSnapshotSchedule is weekdays at 18:30, after the ASX close
const DefaultSnapshotSchedule = "0 30 18 * * 1-5"

// SnapshotRunner produces one daily snapshot
type SnapshotRunner interface {
	Run(ctx context.Context, date time.Time) (*snapshot.Result, error)
}

// SnapshotFetchJob fetches and stores the daily snapshot
// ⭐ SSOT: 스냅샷 수집 스케줄은 이 Job에서만
type SnapshotFetchJob struct {
	collector SnapshotRunner
	schedule  string
	now       func() time.Time
	logger    *logger.Logger
}

// NewSnapshotFetchJob creates a new snapshot fetch job. An empty schedule
// uses DefaultSnapshotSchedule.
func NewSnapshotFetchJob(col SnapshotRunner, schedule string, log *logger.Logger) *SnapshotFetchJob {
	if schedule == "" {
		schedule = DefaultSnapshotSchedule
	}
	return &SnapshotFetchJob{
		collector: col,
		schedule:  schedule,
		now:       time.Now,
		logger:    log,
	}
}

// Name returns the job name
func (j *SnapshotFetchJob) Name() string {
	return "snapshot_fetch"
}

// Schedule returns the cron schedule
func (j *SnapshotFetchJob) Schedule() string {
	return j.schedule
}

// Run executes the snapshot fetch for today
func (j *SnapshotFetchJob) Run(ctx context.Context) (scheduler.Outcome, error) {
	j.logger.Info("Starting scheduled snapshot fetch")

	result, err := j.collector.Run(ctx, j.now())
	if err != nil {
		return scheduler.Outcome{}, fmt.Errorf("snapshot fetch: %w", err)
	}

	out := scheduler.Outcome{
		SnapshotDate: result.Date.Format("2006-01-02"),
		Records:      result.Summary.TotalStocks,
		RowsInserted: result.RowsInserted,
	}
	if result.Quality != nil {
		passed := result.Quality.Passed
		out.QualityPassed = &passed
	}

	j.logger.WithFields(map[string]interface{}{
		"date":          out.SnapshotDate,
		"stocks":        out.Records,
		"rows_inserted": out.RowsInserted,
		"presets":       len(result.Presets),
	}).Info("Scheduled snapshot fetch completed successfully")

	return out, nil
}
