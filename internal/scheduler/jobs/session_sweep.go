package jobs

import (
	"context"

	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// Sweeper closes idle view sessions
type Sweeper interface {
	Sweep() int
}

// SessionSweepJob closes view sessions nobody has touched for a while
type SessionSweepJob struct {
	registry Sweeper
	logger   *logger.Logger
}

// NewSessionSweepJob creates a new session sweep job
func NewSessionSweepJob(registry Sweeper, log *logger.Logger) *SessionSweepJob {
	return &SessionSweepJob{
		registry: registry,
		logger:   log,
	}
}

func (j *SessionSweepJob) Name() string {
	return "session_sweep"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *SessionSweepJob) Schedule() string {
	return "0 */5 * * * *"
}

func (j *SessionSweepJob) Run(ctx context.Context) error {
	if n := j.registry.Sweep(); n > 0 {
		j.logger.WithField("closed", n).Info("Idle view sessions closed")
	}
	return nil
}
