package jobs

import (
	"context"

	"github.com/wonny/asx-screener/internal/scheduler"
	"github.com/wonny/asx-screener/pkg/logger"
)

// SessionCleaner drops idle screening sessions
type SessionCleaner interface {
	CleanupExpired() int
}

// SessionCleanupJob expires idle sessions
type SessionCleanupJob struct {
	sessions SessionCleaner
	logger   *logger.Logger
}

// NewSessionCleanupJob creates a new session cleanup job
func NewSessionCleanupJob(sessions SessionCleaner, log *logger.Logger) *SessionCleanupJob {
	return &SessionCleanupJob{
		sessions: sessions,
		logger:   log,
	}
}

// Name returns the job name
func (j *SessionCleanupJob) Name() string {
	return "session_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *SessionCleanupJob) Schedule() string {
	return "0 */5 * * * *" // Every 5 minutes
}

// Run executes the session cleanup
func (j *SessionCleanupJob) Run(ctx context.Context) (scheduler.Outcome, error) {
	j.logger.Debug("Starting scheduled session cleanup")

	count := j.sessions.CleanupExpired()
	if count > 0 {
		j.logger.WithField("removed", count).Info("Session cleanup completed")
	}

	return scheduler.Outcome{SessionsRemoved: count}, nil
}
