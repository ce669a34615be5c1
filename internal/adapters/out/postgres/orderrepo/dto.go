// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"fulfillment/internal/adapters/out/postgres/columns"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Type and status share an index for the sweeps that list orders by both.
type OrderDTO struct {
	ID                       uuid.UUID           `gorm:"type:char(36);primaryKey"`
	OrderType                string              `gorm:"type:varchar(32);index:idx_orders_type_status"`
	UserName                 string              `gorm:"type:varchar(255)"`
	Reference                string              `gorm:"type:varchar(255)"`
	Remark                   string              `gorm:"type:text"`
	Packaging                string              `gorm:"type:varchar(16)"`
	Priority                 string              `gorm:"type:varchar(16)"`
	StatusNotification       string              `gorm:"type:varchar(16)"`
	DeleteDownloadedFiles    bool
	Options                  datatypes.JSONMap
	Delivery                 columns.DeliveryDTO `gorm:"embedded;embeddedPrefix:delivery_"`
	Status                   string              `gorm:"type:varchar(32);index:idx_orders_type_status"`
	StatusChangedOn          time.Time
	CompletedOn              *time.Time
	AdditionalStatusInfo     string `gorm:"type:text"`
	LastDescribeResultAccess *time.Time
	CreatedOn                time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(o *order.Order) OrderDTO {
	details := o.Details()
	state := o.State()

	return OrderDTO{
		ID:                       o.ID().Bytes(),
		OrderType:                string(details.Type),
		UserName:                 details.UserName,
		Reference:                details.Reference,
		Remark:                   details.Remark,
		Packaging:                string(details.Packaging),
		Priority:                 string(details.Priority),
		StatusNotification:       string(details.StatusNotification),
		DeleteDownloadedFiles:    details.DeleteDownloadedFiles,
		Options:                  columns.FromStrings(details.Options),
		Delivery:                 columns.FromDelivery(details.Delivery),
		Status:                   state.Status.String(),
		StatusChangedOn:          state.StatusChangedOn,
		CompletedOn:              state.CompletedOn,
		AdditionalStatusInfo:     state.AdditionalStatusInfo,
		LastDescribeResultAccess: state.LastDescribeResultAccess,
		CreatedOn:                state.CreatedOn,
	}
}

// toDomain converts a database DTO to an order domain aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := columns.ID(dto.ID)
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

	return order.RestoreOrder(id, order.Details{
		Type:                  order.Type(dto.OrderType),
		UserName:              dto.UserName,
		Reference:             dto.Reference,
		Remark:                dto.Remark,
		Packaging:             order.Packaging(dto.Packaging),
		Priority:              order.Priority(dto.Priority),
		StatusNotification:    order.StatusNotification(dto.StatusNotification),
		DeleteDownloadedFiles: dto.DeleteDownloadedFiles,
		Options:               columns.ToStrings(dto.Options),
		Delivery:              opt,
	}, order.State{
		Status:                   status,
		StatusChangedOn:          dto.StatusChangedOn,
		CompletedOn:              dto.CompletedOn,
		AdditionalStatusInfo:     dto.AdditionalStatusInfo,
		LastDescribeResultAccess: dto.LastDescribeResultAccess,
		CreatedOn:                dto.CreatedOn,
	})
}
