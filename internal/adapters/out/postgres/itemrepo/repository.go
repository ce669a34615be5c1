package itemrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderItemRepository implements OrderItemRepository using GORM.
type GormOrderItemRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormOrderItemRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderItemRepository {
	return &GormOrderItemRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the items in one statement, keeping their argument order.
func (r *GormOrderItemRepository) Add(ctx context.Context, items ...*item.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	dtos := make([]OrderItemDTO, 0, len(items))
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, fromDomain(it, i))
	}

	if err := r.db.WithContext(ctx).Create(&dtos).Error; err != nil {
		return err
	}

	for _, it := range items {
		r.tracker.TrackAggregate(it.ID(), it)
	}
	return nil
}

// Update saves the item's state. Position and request columns never change.
func (r *GormOrderItemRepository) Update(ctx context.Context, it *item.OrderItem) error {
	if err := it.Validate(); err != nil {
		return err
	}

	dto := fromDomain(it, 0)
	result := r.db.WithContext(ctx).
		Model(&OrderItemDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("position", "created_on").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order item", it.ID().String())
	}

	r.tracker.TrackAggregate(it.ID(), it)
	return nil
}

func (r *GormOrderItemRepository) Get(ctx context.Context, id kernel.UUID) (*item.OrderItem, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate locks the item row until the transaction ends.
func (r *GormOrderItemRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*item.OrderItem, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormOrderItemRepository) get(db *gorm.DB, id kernel.UUID) (*item.OrderItem, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderItemDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order item", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormOrderItemRepository) ListByBatch(ctx context.Context, batchID kernel.UUID) ([]*item.OrderItem, error) {
	var dtos []OrderItemDTO
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID.Bytes()).
		Order("created_on, position").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	items := make([]*item.OrderItem, 0, len(dtos))
	for _, dto := range dtos {
		it, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}
