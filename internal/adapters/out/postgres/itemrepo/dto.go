// Package itemrepo persists order items.
package itemrepo

import (
	"time"

	"fulfillment/internal/adapters/out/postgres/columns"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OrderItemDTO is the row of one order item. Position keeps the request
// order of items created together.
type OrderItemDTO struct {
	ID                   uuid.UUID `gorm:"type:char(36);primaryKey"`
	BatchID              uuid.UUID `gorm:"type:char(36);index"`
	Position             int
	ItemID               string `gorm:"type:varchar(255)"`
	Identifier           string `gorm:"type:varchar(255)"`
	Collection           string `gorm:"type:varchar(255)"`
	Remark               string `gorm:"type:text"`
	Options              datatypes.JSONMap
	SceneSelection       datatypes.JSONMap
	Delivery             columns.DeliveryDTO `gorm:"embedded;embeddedPrefix:delivery_"`
	Status               string              `gorm:"type:varchar(32)"`
	AdditionalStatusInfo string              `gorm:"type:text"`
	StatusChangedOn      time.Time
	CompletedOn          *time.Time
	ExpiresOn            *time.Time
	URL                  string `gorm:"type:text"`
	Available            bool
	Downloads            int
	LastDownloadedAt     *time.Time
	CreatedOn            time.Time
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(it *item.OrderItem, position int) OrderItemDTO {
	request := it.Request()
	state := it.State()

	return OrderItemDTO{
		ID:                   it.ID().Bytes(),
		BatchID:              it.BatchID().Bytes(),
		Position:             position,
		ItemID:               request.ItemID,
		Identifier:           request.Identifier,
		Collection:           request.Collection,
		Remark:               request.Remark,
		Options:              columns.FromStrings(request.Options),
		SceneSelection:       columns.FromStrings(request.SceneSelection),
		Delivery:             columns.FromDelivery(request.Delivery),
		Status:               state.Status.String(),
		AdditionalStatusInfo: state.AdditionalStatusInfo,
		StatusChangedOn:      state.StatusChangedOn,
		CompletedOn:          state.CompletedOn,
		ExpiresOn:            state.ExpiresOn,
		URL:                  state.URL,
		Available:            state.Available,
		Downloads:            state.Downloads,
		LastDownloadedAt:     state.LastDownloadedAt,
		CreatedOn:            state.CreatedOn,
	}
}

func toDomain(dto OrderItemDTO) (*item.OrderItem, error) {
	id, err := columns.ID(dto.ID)
	if err != nil {
		return nil, err
	}
	batchID, err := columns.ID(dto.BatchID)
	if err != nil {
		return nil, err
	}
	status, err := kernel.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	opt, err := dto.Delivery.ToDomain()
	if err != nil {
		return nil, err
	}

	return item.RestoreOrderItem(id, batchID, item.Request{
		ItemID:         dto.ItemID,
		Identifier:     dto.Identifier,
		Collection:     dto.Collection,
		Remark:         dto.Remark,
		Options:        columns.ToStrings(dto.Options),
		SceneSelection: columns.ToStrings(dto.SceneSelection),
		Delivery:       opt,
	}, item.State{
		Status:               status,
		AdditionalStatusInfo: dto.AdditionalStatusInfo,
		StatusChangedOn:      dto.StatusChangedOn,
		CompletedOn:          dto.CompletedOn,
		ExpiresOn:            dto.ExpiresOn,
		URL:                  dto.URL,
		Available:            dto.Available,
		Downloads:            dto.Downloads,
		LastDownloadedAt:     dto.LastDownloadedAt,
		CreatedOn:            dto.CreatedOn,
	})
}
