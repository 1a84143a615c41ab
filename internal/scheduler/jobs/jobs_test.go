package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/internal/scheduler"
	"github.com/wonny/asx-screener/internal/snapshot"
	"github.com/wonny/asx-screener/pkg/logger"
)

type fakeRunner struct {
	dates []time.Time
	err   error
}

func (f *fakeRunner) Run(ctx context.Context, date time.Time) (*snapshot.Result, error) {
	f.dates = append(f.dates, date)
	if f.err != nil {
		return nil, f.err
	}
	return &snapshot.Result{
		Date:         date,
		Summary:      contracts.Summary{TotalStocks: 3},
		RowsInserted: 3,
		Quality:      &snapshot.QualityReport{Passed: false},
	}, nil
}

func TestSnapshotFetchJob(t *testing.T) {
	runner := &fakeRunner{}
	job := NewSnapshotFetchJob(runner, "", logger.NewNop())
	day := time.Date(2026, 2, 18, 18, 30, 0, 0, time.UTC)
	job.now = func() time.Time { return day }

	assert.Equal(t, "snapshot_fetch", job.Name())
	assert.Equal(t, DefaultSnapshotSchedule, job.Schedule())

	out, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day}, runner.dates)
	assert.Equal(t, "2026-02-18", out.SnapshotDate)
	assert.Equal(t, 3, out.Records)
	assert.Equal(t, 3, out.RowsInserted)
	require.NotNil(t, out.QualityPassed)
	assert.False(t, *out.QualityPassed)
}

func TestSnapshotFetchJob_Error(t *testing.T) {
	job := NewSnapshotFetchJob(&fakeRunner{err: snapshot.ErrEmptyFetch}, "0 0 19 * * *", logger.NewNop())
	assert.Equal(t, "0 0 19 * * *", job.Schedule())

	out, err := job.Run(context.Background())
	assert.True(t, errors.Is(err, snapshot.ErrEmptyFetch))
	assert.Zero(t, out)
}

// compile-time checks
var (
	_ scheduler.Job = (*SnapshotFetchJob)(nil)
	_ scheduler.Job = (*SessionCleanupJob)(nil)
)

type fakeCleaner struct{ removed int }

func (f *fakeCleaner) CleanupExpired() int { return f.removed }

func TestSessionCleanupJob(t *testing.T) {
	job := NewSessionCleanupJob(&fakeCleaner{removed: 2}, logger.NewNop())
	assert.Equal(t, "session_cleanup", job.Name())
	assert.Equal(t, "0 */5 * * * *", job.Schedule())
	out, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, out.SessionsRemoved)
}
