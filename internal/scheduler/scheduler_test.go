package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clubhub-backend/internal/config"
	"clubhub-backend/internal/jobs"
	"clubhub-backend/internal/repository/memory"
)

func TestNewScheduler_RegistersJobs(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.DeliverNotifications = "0 */1 * * * *"
	cfg.Scheduler.SendEventReminders = "0 0 * * * *"

	s := NewScheduler(jobs.NewJobRunner(memory.NewStore(), nil, cfg))
	assert.Len(t, s.cron.Entries(), 2)
	assert.True(t, s.IsRunning())

	s.Start()
	s.Stop()
}

func TestNewScheduler_SkipsInvalidSpec(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scheduler.DeliverNotifications = "not a cron spec"
	cfg.Scheduler.SendEventReminders = "0 0 * * * *"

	s := NewScheduler(jobs.NewJobRunner(memory.NewStore(), nil, cfg))
	assert.Len(t, s.cron.Entries(), 1)
}
