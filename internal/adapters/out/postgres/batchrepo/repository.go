package batchrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBatchRepository implements BatchRepository using GORM.
type GormBatchRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormBatchRepository(db *gorm.DB, tracker aggregateTracker) *GormBatchRepository {
	return &GormBatchRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormBatchRepository) Add(ctx context.Context, batch *order.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}

	dto := fromDomain(batch)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(batch.ID(), batch)
	return nil
}

func (r *GormBatchRepository) Update(ctx context.Context, batch *order.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}

	dto := fromDomain(batch)
	result := r.db.WithContext(ctx).Model(&BatchDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("batch", batch.ID().String())
	}

	r.tracker.TrackAggregate(batch.ID(), batch)
	return nil
}

func (r *GormBatchRepository) Get(ctx context.Context, id kernel.UUID) (*order.Batch, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate locks the batch row until the transaction ends. Fan-in of
// concurrent item jobs serializes on this lock.
func (r *GormBatchRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Batch, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormBatchRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*order.Batch, error) {
	var dtos []BatchDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("created_on, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

// ListWithAvailableFiles returns the batches of orders of the given type
// that still reference at least one available file.
func (r *GormBatchRepository) ListWithAvailableFiles(ctx context.Context, orderType order.Type) ([]*order.Batch, error) {
	db := r.db.WithContext(ctx)

	var dtos []BatchDTO
	err := db.
		Where("order_id IN (?)", db.Table("orders").Select("id").Where("order_type = ?", string(orderType))).
		Where("EXISTS (SELECT 1 FROM files WHERE files.batch_id = batches.id AND files.available = ?)", true).
		Order("created_on, id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormBatchRepository) get(db *gorm.DB, id kernel.UUID) (*order.Batch, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BatchDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("batch", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func toDomainList(dtos []BatchDTO) ([]*order.Batch, error) {
	batches := make([]*order.Batch, 0, len(dtos))
	for _, dto := range dtos {
		b, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}
