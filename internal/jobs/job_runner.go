package jobs

import (
	"time"

	"clubhub-backend/internal/config"
	"clubhub-backend/internal/logger"
	"clubhub-backend/internal/repository"
	"clubhub-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store    repository.Store
	channels []service.DeliveryChannel
	config   *config.Config
	now      func() time.Time
}

// NewJobRunner creates a new job runner. channels may be empty, in which case
// notifications stay in the in-app inbox only.
func NewJobRunner(store repository.Store, channels []service.DeliveryChannel, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:    store,
		channels: channels,
		config:   cfg,
		now:      time.Now,
	}
}

// Config returns the configuration the scheduler reads cron specs from.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.SendEventReminders()
	jr.DeliverPendingNotifications()
}
