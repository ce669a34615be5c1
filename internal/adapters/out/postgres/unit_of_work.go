// Package postgres provides the GORM-based entity store of the fulfillment
// service: repositories for orders, batches, order items and files, and the
// Unit of Work that runs them inside one database transaction.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db, logger)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	b, err := uow.BatchRepository().GetForUpdate(ctx, batchID)
//	if err != nil {
//	    return err
//	}
//	// ... recompute the batch
//	if err := uow.BatchRepository().Update(ctx, b); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance provides an isolated transaction
//   - Multiple goroutines must use separate UnitOfWork instances
//   - GetForUpdate reads lock rows until Commit or Rollback, which is how
//     concurrent fan-ins of one batch are serialized
package postgres

import (
	"context"
	"log/slog"

	"fulfillment/internal/adapters/out/postgres/batchrepo"
	"fulfillment/internal/adapters/out/postgres/filerepo"
	"fulfillment/internal/adapters/out/postgres/itemrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate represents an entity written during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one GORM connection pool.
type GormUnitOfWorkFactory struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work
// instances. Committed writes are logged at debug level.
func NewGormUnitOfWorkFactory(db *gorm.DB, logger *slog.Logger) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, logger: logger.With("component", "unit_of_work")}
}

// Create produces a new UnitOfWork instance. Each instance maintains its
// own transaction state and aggregate tracking.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		logger:            f.logger,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction across the
// repositories and tracks the entities written through them.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	logger            *slog.Logger
	trackedAggregates []trackedAggregate
}

// Begin initiates a new database transaction. Calling Begin on a unit of
// work that already holds a transaction is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit finalizes all changes made within the current transaction and
// logs the entities written through it.
// Returns gorm.ErrInvalidTransaction if no transaction is active.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err == nil && len(uow.trackedAggregates) > 0 {
		uow.logger.DebugContext(ctx, "transaction committed", "written", uow.writtenIDs())
	}
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// Rollback discards all changes made within the current transaction.
// Handlers defer it right after Begin, so after a successful Commit it
// returns gorm.ErrInvalidTransaction, which they ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) BatchRepository() ports.BatchRepository {
	return batchrepo.NewGormBatchRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) OrderItemRepository() ports.OrderItemRepository {
	return itemrepo.NewGormOrderItemRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) FileRepository() ports.FileRepository {
	return filerepo.NewGormFileRepository(uow.conn(), uow)
}

// TrackAggregate registers an entity as written within this unit of work.
// Repository implementations call it after every successful write.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// writtenIDs lists the identifiers of the entities written so far, in write order.
func (uow *GormUnitOfWork) writtenIDs() []string {
	ids := make([]string, 0, len(uow.trackedAggregates))
	for _, tracked := range uow.trackedAggregates {
		ids = append(ids, tracked.ID.String())
	}
	return ids
}

// conn returns the active transaction, or the plain connection when none is
// active.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
