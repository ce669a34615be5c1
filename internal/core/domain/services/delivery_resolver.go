package services

import (
	"fmt"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// DeliveryResolver determines the effective delivery option of an order item.
//
// Business rules:
//   - An item's own delivery option always wins
//   - An item without one inherits its order's option exactly
//   - An item with neither cannot be produced (ConfigurationError)
type DeliveryResolver struct{}

func NewDeliveryResolver() DeliveryResolver {
	return DeliveryResolver{}
}

// Resolve returns the delivery option that applies to the item.
func (DeliveryResolver) Resolve(it *item.OrderItem, o *order.Order) (delivery.Option, error) {
	if err := it.Validate(); err != nil {
		return delivery.Option{}, err
	}
	if opt, ok := it.DeliveryOption(); ok {
		return opt, nil
	}
	if o != nil {
		if opt, ok := o.DeliveryOption(); ok {
			return opt, nil
		}
	}
	return delivery.Option{}, errs.NewConfigurationErrorWithCause(
		"delivery option",
		fmt.Errorf("order item %s has no delivery option and neither has its order", it.ID()),
	)
}

// ExportParameters projects the effective delivery option into the flat
// mapping consumed by the item processor.
func (r DeliveryResolver) ExportParameters(it *item.OrderItem, o *order.Order) (map[string]string, error) {
	opt, err := r.Resolve(it, o)
	if err != nil {
		return nil, err
	}
	return opt.Parameters(), nil
}
