// Package batchrepo persists the batches of an order.
package batchrepo

import (
	"time"

	"fulfillment/internal/adapters/out/postgres/columns"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// BatchDTO is the row of one batch.
type BatchDTO struct {
	ID              uuid.UUID `gorm:"type:char(36);primaryKey"`
	OrderID         uuid.UUID `gorm:"type:char(36);index"`
	Kind            string    `gorm:"type:varchar(16)"`
	Timeslot        *time.Time
	Status          string `gorm:"type:varchar(32)"`
	CreatedOn       time.Time
	UpdatedOn       time.Time
	CompletedOn     *time.Time
	PackagingFailed bool
}

func (BatchDTO) TableName() string {
	return "batches"
}

func fromDomain(b *order.Batch) BatchDTO {
	state := b.State()
	return BatchDTO{
		ID:              b.ID().Bytes(),
		OrderID:         b.OrderID().Bytes(),
		Kind:            string(b.Kind()),
		Timeslot:        b.Timeslot(),
		Status:          state.Status.String(),
		CreatedOn:       state.CreatedOn,
		UpdatedOn:       state.UpdatedOn,
		CompletedOn:     state.CompletedOn,
		PackagingFailed: state.PackagingFailed,
	}
}

func toDomain(dto BatchDTO) (*order.Batch, error) {
	id, err := columns.ID(dto.ID)
	if err != nil {
		return nil, err
	}
	orderID, err := columns.ID(dto.OrderID)
	if err != nil {
		return nil, err
	}
	status, err := kernel.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return order.RestoreBatch(id, orderID, order.BatchKind(dto.Kind), dto.Timeslot, order.BatchState{
		Status:          status,
		CreatedOn:       dto.CreatedOn,
		UpdatedOn:       dto.UpdatedOn,
		CompletedOn:     dto.CompletedOn,
		PackagingFailed: dto.PackagingFailed,
	})
}
