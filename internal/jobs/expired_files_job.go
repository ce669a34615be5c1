package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// ExpiredFilesJob periodically deletes the expired files of every enabled
// order type.
type ExpiredFilesJob struct {
	uowFactory  ports.UnitOfWorkFactory
	deleter     BatchFilesDeleter
	settings    services.FulfillmentSettings
	schedule    string
	parallelism int
	cron        *cron.Cron
	logger      *slog.Logger
}

func NewExpiredFilesJob(
	uowFactory ports.UnitOfWorkFactory,
	deleter BatchFilesDeleter,
	settings services.FulfillmentSettings,
	schedule string,
	parallelism int,
	logger *slog.Logger,
) *ExpiredFilesJob {
	return &ExpiredFilesJob{
		uowFactory:  uowFactory,
		deleter:     deleter,
		settings:    settings,
		schedule:    schedule,
		parallelism: parallelism,
		cron:        newCron(),
		logger:      logger.With("component", "expired_files_job"),
	}
}

// Run performs one sweep. Batches are listed without a transaction; each
// batch is then deleted in its own.
func (j *ExpiredFilesJob) Run(ctx context.Context) (SweepResult, error) {
	uow := j.uowFactory.Create()

	var batchIDs []kernel.UUID
	for _, t := range j.settings.EnabledTypes() {
		batches, err := uow.BatchRepository().ListWithAvailableFiles(ctx, t)
		if err != nil {
			return SweepResult{}, err
		}
		for _, b := range batches {
			batchIDs = append(batchIDs, b.ID())
		}
	}

	return sweepBatches(ctx, j.deleter, batchIDs, true, j.parallelism, j.logger)
}

// Start schedules the sweep.
func (j *ExpiredFilesJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		result, err := j.Run(ctx)
		if err != nil {
			j.logger.ErrorContext(ctx, "Expired files sweep finished with failures",
				"batches", result.Batches, "failed", result.Failed, "error", err)
			return
		}
		if result.Deleted > 0 {
			j.logger.InfoContext(ctx, "Expired files sweep finished", "batches", result.Batches, "deleted", result.Deleted)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Expired files job started", "schedule", j.schedule)
	return nil
}

// Stop unschedules the sweep and waits for a running one to finish or for
// ctx to be done.
func (j *ExpiredFilesJob) Stop(ctx context.Context) {
	stopCron(ctx, j.cron)
	j.logger.InfoContext(ctx, "Expired files job stopped")
}

func newCron() *cron.Cron {
	return cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
}

func stopCron(ctx context.Context, c *cron.Cron) {
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}
