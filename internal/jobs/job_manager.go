package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// Config holds the cron schedules (with seconds) of the sweeps. An empty
// schedule disables its job.
type Config struct {
	ExpiredFilesSchedule string
	FailedOrdersSchedule string
	Parallelism          int
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	expiredFilesJob *ExpiredFilesJob
	failedOrdersJob *FailedOrdersJob
}

// NewJobManager creates the configured jobs. Schedules are parsed up front so
// that a typo fails at startup.
func NewJobManager(
	uowFactory ports.UnitOfWorkFactory,
	deleter BatchFilesDeleter,
	settings services.FulfillmentSettings,
	cfg Config,
	logger *slog.Logger,
) (*JobManager, error) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

	jm := &JobManager{}
	if cfg.ExpiredFilesSchedule != "" {
		if _, err := parser.Parse(cfg.ExpiredFilesSchedule); err != nil {
			return nil, fmt.Errorf("invalid expired files schedule: %w", err)
		}
		jm.expiredFilesJob = NewExpiredFilesJob(uowFactory, deleter, settings, cfg.ExpiredFilesSchedule, cfg.Parallelism, logger)
	}
	if cfg.FailedOrdersSchedule != "" {
		if _, err := parser.Parse(cfg.FailedOrdersSchedule); err != nil {
			return nil, fmt.Errorf("invalid failed orders schedule: %w", err)
		}
		jm.failedOrdersJob = NewFailedOrdersJob(uowFactory, deleter, cfg.FailedOrdersSchedule, cfg.Parallelism, logger)
	}
	return jm, nil
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if jm.expiredFilesJob != nil {
		if err := jm.expiredFilesJob.Start(); err != nil {
			return fmt.Errorf("failed to start expired files job: %w", err)
		}
	}

	if jm.failedOrdersJob != nil {
		if err := jm.failedOrdersJob.Start(); err != nil {
			// Stop already started jobs if this one fails
			if jm.expiredFilesJob != nil {
				jm.expiredFilesJob.Stop(context.Background())
			}
			return fmt.Errorf("failed to start failed orders job: %w", err)
		}
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll(ctx context.Context) {
	if jm.expiredFilesJob != nil {
		jm.expiredFilesJob.Stop(ctx)
	}
	if jm.failedOrdersJob != nil {
		jm.failedOrdersJob.Stop(ctx)
	}
}
