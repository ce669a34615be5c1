package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// BatchDispatcher schedules the production of a batch's items. Dispatch
// returns once the jobs are queued; fan-in happens asynchronously.
type BatchDispatcher interface {
	// DispatchBatch queues one job per pending item of the batch.
	DispatchBatch(ctx context.Context, batchID kernel.UUID) error

	// DispatchItems queues jobs for the given items of one batch only.
	DispatchItems(ctx context.Context, batchID kernel.UUID, itemIDs []kernel.UUID) error

	// RecomputeBatch runs the fan-in for a batch whose items changed outside
	// of a job, e.g. on their first download.
	RecomputeBatch(ctx context.Context, batchID kernel.UUID) error
}
