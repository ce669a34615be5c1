package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetOrderStatusQueryIsNotConstructed = errors.New(
	"GetOrderStatusQuery must be created via NewGetOrderStatusQuery constructor",
)

// GetOrderStatusQuery describes an order together with its batches and items.
//
// Example:
//
//	query, err := NewGetOrderStatusQuery(orderID)
//	if err != nil {
//	    return err
//	}
//	status, err := handler.Handle(ctx, query)
type GetOrderStatusQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderStatusQuery(orderID kernel.UUID) (GetOrderStatusQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderStatusQuery{}, err
	}
	return GetOrderStatusQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStatusQueryIsNotConstructed)
}

func (q GetOrderStatusQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderStatusQueryResponse is the status tree of one order. Batches are
// listed oldest first, items in creation order.
type GetOrderStatusQueryResponse struct {
	ID                   kernel.UUID
	Type                 string
	Status               string
	AdditionalStatusInfo string
	StatusChangedOn      time.Time
	CompletedOn          *time.Time
	Batches              []BatchStatus
}

type BatchStatus struct {
	ID          kernel.UUID
	Kind        string
	Timeslot    *time.Time
	Status      string
	CompletedOn *time.Time
	Items       []ItemStatus
}

type ItemStatus struct {
	ID                   kernel.UUID
	ItemID               string
	Identifier           string
	Collection           string
	Status               string
	AdditionalStatusInfo string
	URL                  string
	ExpiresOn            *time.Time
	Available            bool
}
