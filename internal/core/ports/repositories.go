// Package ports defines the contracts between the fulfillment core and its
// infrastructure: the entity store, the pluggable item processor and the
// notification boundary.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/file"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order, including its default delivery option.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the mutable state of an existing order.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by its identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order and locks its row until the surrounding
	// transaction ends, so that read-modify-write status transitions are never
	// based on stale state.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// FindByStatusAndType lists orders of one type currently in one status.
	FindByStatusAndType(ctx context.Context, status kernel.Status, orderType order.Type) ([]*order.Order, error)
}

// BatchRepository defines the persistence contract for batches.
type BatchRepository interface {
	Add(ctx context.Context, batch *order.Batch) error
	Update(ctx context.Context, batch *order.Batch) error
	Get(ctx context.Context, id kernel.UUID) (*order.Batch, error)

	// GetForUpdate retrieves a batch and locks its row for the transaction.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Batch, error)

	// ListByOrder returns an order's batches, oldest first.
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*order.Batch, error)

	// ListWithAvailableFiles returns the batches of orders of the given type
	// that still have at least one available file.
	ListWithAvailableFiles(ctx context.Context, orderType order.Type) ([]*order.Batch, error)
}

// OrderItemRepository defines the persistence contract for order items.
type OrderItemRepository interface {
	Add(ctx context.Context, items ...*item.OrderItem) error
	Update(ctx context.Context, it *item.OrderItem) error
	Get(ctx context.Context, id kernel.UUID) (*item.OrderItem, error)

	// GetForUpdate retrieves an item and locks its row for the transaction.
	// Callers lock the item's batch first.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*item.OrderItem, error)

	// ListByBatch returns the items of a batch in creation order.
	ListByBatch(ctx context.Context, batchID kernel.UUID) ([]*item.OrderItem, error)
}

// FileRepository defines the persistence contract for produced files.
type FileRepository interface {
	Add(ctx context.Context, files ...*file.File) error
	Update(ctx context.Context, f *file.File) error
	Get(ctx context.Context, id kernel.UUID) (*file.File, error)

	// GetForUpdate retrieves a file and locks its row for the transaction.
	// Callers lock the file's batch first.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*file.File, error)

	// Delete removes file records. Used when per-item files are replaced by
	// a package.
	Delete(ctx context.Context, ids ...kernel.UUID) error

	// ListByBatch returns every file of a batch, available or not.
	ListByBatch(ctx context.Context, batchID kernel.UUID) ([]*file.File, error)
}
