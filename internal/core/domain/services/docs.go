// Package services provides domain services that apply fulfillment rules
// spanning several entities.
//
// The package includes:
//   - FulfillmentSettings: immutable per-order-type configuration
//   - DeliveryResolver: effective delivery option of an order item
//   - FileLifecycle: file expiry and deletion eligibility
//   - CollectionAdmission: collection checks run before a batch is scheduled
package services
