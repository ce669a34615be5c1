// Package delivery provides the DeliveryOption value object that tells the
// item processor how a produced item reaches its requester.
//
// The package includes:
//   - Type: the delivery channel (online data access, online data delivery, media)
//   - Option: the channel plus its type-specific details and requester extras
//
// An Option is attached either to an order, where it acts as the default for
// every item, or to a single order item, where it overrides the order's.
package delivery
