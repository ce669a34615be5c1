package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"

	"golang.org/x/sync/errgroup"
)

// DefaultParallelism bounds the batches deleted concurrently by one sweep.
const DefaultParallelism = 4

// BatchFilesDeleter runs the deletion step of the file lifecycle for one batch.
type BatchFilesDeleter interface {
	Handle(ctx context.Context, command commands.DeleteBatchFilesCommand) (int, error)
}

// SweepResult summarizes one sweep run.
type SweepResult struct {
	Batches int
	Deleted int
	Failed  int
}

// sweepBatches deletes the files of every batch, at most parallelism at a
// time. Every batch is attempted; the failures are joined into the returned
// error.
func sweepBatches(
	ctx context.Context,
	deleter BatchFilesDeleter,
	batchIDs []kernel.UUID,
	expiredOnly bool,
	parallelism int,
	logger *slog.Logger,
) (SweepResult, error) {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	var (
		mu     sync.Mutex
		result = SweepResult{Batches: len(batchIDs)}
		failed []error
	)

	var g errgroup.Group
	g.SetLimit(parallelism)
	for _, batchID := range batchIDs {
		g.Go(func() error {
			cmd, err := commands.NewDeleteBatchFilesCommand(batchID, expiredOnly)
			if err == nil {
				var deleted int
				deleted, err = deleter.Handle(ctx, cmd)
				mu.Lock()
				result.Deleted += deleted
				mu.Unlock()
			}
			if err != nil {
				logger.ErrorContext(ctx, "batch cleanup failed", "batch_id", batchID.String(), "error", err)
				mu.Lock()
				result.Failed++
				failed = append(failed, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return result, errors.Join(failed...)
}
