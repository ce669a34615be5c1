// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// BatchRepoFactory provides access to batch repository within a transaction.
	BatchRepoFactory interface {
		BatchRepository() ports.BatchRepository
	}

	// OrderItemRepoFactory provides access to order item repository within a transaction.
	OrderItemRepoFactory interface {
		OrderItemRepository() ports.OrderItemRepository
	}

	// FileRepoFactory provides access to file repository within a transaction.
	FileRepoFactory interface {
		FileRepository() ports.FileRepository
	}

	// ModerationUoW manages transactions for moderation decisions, which
	// only touch an order and look up its batches.
	ModerationUoW interface {
		TxManager
		OrderRepoFactory
		BatchRepoFactory
	}

	// ModerationUoWFactory creates new moderation unit of work instances.
	ModerationUoWFactory interface {
		Create() ModerationUoW
	}

	// UoW manages transactions across orders, batches, items and files.
	// Used by the production pipeline, where one item change recomputes its
	// batch and order in the same transaction.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   batch, err := uow.BatchRepository().GetForUpdate(ctx, batchID)
	//   items, err := uow.OrderItemRepository().ListByBatch(ctx, batchID)
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		BatchRepoFactory
		OrderItemRepoFactory
		FileRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)

// UoWFactoryFunc adapts a function to UoWFactory.
type UoWFactoryFunc func() UoW

func (f UoWFactoryFunc) Create() UoW {
	return f()
}

// ModerationUoWFactoryFunc adapts a function to ModerationUoWFactory.
type ModerationUoWFactoryFunc func() ModerationUoW

func (f ModerationUoWFactoryFunc) Create() ModerationUoW {
	return f()
}
