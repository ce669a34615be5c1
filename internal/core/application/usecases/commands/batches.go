package commands

import (
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

func initialBatch(orderID kernel.UUID, batches []*order.Batch) (*order.Batch, error) {
	for _, b := range batches {
		if b.Kind() == order.InitialBatch {
			return b, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("initial batch of order", orderID.String())
}

// rolledUpBatches returns the batches whose statuses make up the order's:
// every batch, except the template batch of a subscription.
func rolledUpBatches(o *order.Order, batches []*order.Batch) []*order.Batch {
	if o.Type() != order.SubscriptionOrder {
		return batches
	}
	out := make([]*order.Batch, 0, len(batches))
	for _, b := range batches {
		if b.Kind() != order.InitialBatch {
			out = append(out, b)
		}
	}
	return out
}
