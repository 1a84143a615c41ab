package scheduler

import (
	"context"
	"time"
)

// Job is a unit of scheduled work
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run executes the job once and reports what it produced
	Run(ctx context.Context) (Outcome, error)

	// Schedule returns the cron expression (with seconds), e.g.
	// "0 30 18 * * 1-5", "CRON_TZ=Australia/Sydney 0 30 18 * * 1-5" or "@every 5m"
	Schedule() string
}

// Outcome is what a run produced. Snapshot jobs fill the snapshot fields,
// cleanup jobs the removal count.
type Outcome struct {
	SnapshotDate    string `json:"snapshot_date,omitempty"`
	Records         int    `json:"records,omitempty"`
	RowsInserted    int    `json:"rows_inserted,omitempty"`
	QualityPassed   *bool  `json:"quality_passed,omitempty"`
	SessionsRemoved int    `json:"sessions_removed,omitempty"`
}

// JobResult is one recorded run, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Attempts  int           `json:"attempts"`
	Error     string        `json:"error,omitempty"`
	Outcome   Outcome       `json:"outcome"`
}

const historyLimit = 100

// JobHistory keeps the most recent runs of one job, oldest first
type JobHistory struct {
	Results []JobResult
}

// AddResult records a run, dropping the oldest beyond historyLimit
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Latest returns up to n most recent runs
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n <= 0 {
		return []JobResult{}
	}
	return h.Results[len(h.Results)-n:]
}

// Failures counts the failed runs
func (h *JobHistory) Failures() int {
	n := 0
	for _, r := range h.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate returns the share of successful runs (0 when empty)
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	return float64(len(h.Results)-h.Failures()) / float64(len(h.Results))
}

// LastSuccess returns the most recent successful run
func (h *JobHistory) LastSuccess() (JobResult, bool) {
	for i := len(h.Results) - 1; i >= 0; i-- {
		if h.Results[i].Success {
			return h.Results[i], true
		}
	}
	return JobResult{}, false
}
