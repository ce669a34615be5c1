package jobs

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// FailedOrdersJob periodically deletes every file of failed product orders.
// A failed order is never delivered, so its partial results are not kept
// until they expire.
type FailedOrdersJob struct {
	uowFactory  ports.UnitOfWorkFactory
	deleter     BatchFilesDeleter
	schedule    string
	parallelism int
	cron        *cron.Cron
	logger      *slog.Logger
}

func NewFailedOrdersJob(
	uowFactory ports.UnitOfWorkFactory,
	deleter BatchFilesDeleter,
	schedule string,
	parallelism int,
	logger *slog.Logger,
) *FailedOrdersJob {
	return &FailedOrdersJob{
		uowFactory:  uowFactory,
		deleter:     deleter,
		schedule:    schedule,
		parallelism: parallelism,
		cron:        newCron(),
		logger:      logger.With("component", "failed_orders_job"),
	}
}

// Run performs one sweep.
func (j *FailedOrdersJob) Run(ctx context.Context) (SweepResult, error) {
	uow := j.uowFactory.Create()

	orders, err := uow.OrderRepository().FindByStatusAndType(ctx, kernel.Failed, order.ProductOrder)
	if err != nil {
		return SweepResult{}, err
	}

	var batchIDs []kernel.UUID
	for _, o := range orders {
		batches, err := uow.BatchRepository().ListByOrder(ctx, o.ID())
		if err != nil {
			return SweepResult{}, err
		}
		for _, b := range batches {
			batchIDs = append(batchIDs, b.ID())
		}
	}

	return sweepBatches(ctx, j.deleter, batchIDs, false, j.parallelism, j.logger)
}

// Start schedules the sweep.
func (j *FailedOrdersJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		result, err := j.Run(ctx)
		if err != nil {
			j.logger.ErrorContext(ctx, "Failed orders sweep finished with failures",
				"batches", result.Batches, "failed", result.Failed, "error", err)
			return
		}
		if result.Deleted > 0 {
			j.logger.InfoContext(ctx, "Failed orders sweep finished", "batches", result.Batches, "deleted", result.Deleted)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Failed orders job started", "schedule", j.schedule)
	return nil
}

// Stop unschedules the sweep and waits for a running one to finish or for
// ctx to be done.
func (j *FailedOrdersJob) Stop(ctx context.Context) {
	stopCron(ctx, j.cron)
	j.logger.InfoContext(ctx, "Failed orders job stopped")
}
