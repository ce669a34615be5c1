package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrSubmitOrderCommandIsNotConstructed = errors.New(
		"SubmitOrderCommand must be created via NewSubmitOrderCommand constructor",
	)
	ErrItemsAreRequired = errs.NewValueIsRequiredError("order items")
)

// SubmitOrderCommand carries a new order and the items of its initial batch.
// For a subscription the items are templates: one per subscribed collection.
//
// Example:
//
//	cmd, err := NewSubmitOrderCommand(order.Details{
//	    Type:     order.ProductOrder,
//	    UserName: "alice",
//	    Delivery: &opt,
//	}, []item.Request{{ItemID: "1", Identifier: "S2A_1", Collection: "sentinel2"}})
//	orderID, err := handler.Handle(ctx, cmd)
type SubmitOrderCommand struct {
	details order.Details
	items   []item.Request

	guard guard.ConstructorGuard
}

// NewSubmitOrderCommand validates the shape of a submission. Option values
// and collections are checked by the handler, which knows the configuration.
func NewSubmitOrderCommand(details order.Details, items []item.Request) (SubmitOrderCommand, error) {
	var itemErrs []error
	for _, r := range items {
		if r.ItemID == "" {
			itemErrs = append(itemErrs, item.ErrItemIDIsRequired)
		}
		if r.Collection == "" {
			itemErrs = append(itemErrs, item.ErrCollectionIsRequired)
		}
	}
	if len(items) == 0 {
		itemErrs = append(itemErrs, ErrItemsAreRequired)
	}
	if details.UserName == "" {
		itemErrs = append(itemErrs, order.ErrUserNameIsRequired)
	}

	if err := errors.Join(append([]error{details.Type.Validate()}, itemErrs...)...); err != nil {
		return SubmitOrderCommand{}, err
	}

	return SubmitOrderCommand{
		details: details,
		items:   items,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c SubmitOrderCommand) Validate() error {
	return c.guard.Validate(ErrSubmitOrderCommandIsNotConstructed)
}

func (c SubmitOrderCommand) Details() order.Details {
	return c.details
}

func (c SubmitOrderCommand) Items() []item.Request {
	return c.items
}
