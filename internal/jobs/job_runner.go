package jobs

import (
	"equiplend-backend/internal/config"
	"equiplend-backend/internal/logger"
	"equiplend-backend/internal/notify"
	"equiplend-backend/internal/repository"
	"equiplend-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store    repository.Store
	policy   service.Policy
	notifier notify.Publisher
	config   *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store repository.Store, policy service.Policy, notifier notify.Publisher, cfg *config.Config) *JobRunner {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &JobRunner{
		store:    store,
		policy:   policy,
		notifier: notifier,
		config:   cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
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

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.ProcessPenaltyRefunds()
	jr.MarkOverdueLoans()
}
