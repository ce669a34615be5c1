// Package order provides the Order aggregate root and its Batch entities.
//
// The package includes:
//   - Order: a user's request, tagged with its type (product, subscription,
//     massive, tasking), packaging mode and moderation decision
//   - Batch: a unit of co-scheduled production within an order
//
// Key business rules:
//   - A batch's status is the rollup of its items' statuses
//   - An order's status is the rollup of its batches' statuses; subscription
//     orders leave their initial template batch out of the rollup
//   - Moderation (approve/reject) bypasses the rollup and is idempotent
//   - A failed order carries a report naming every failed item
package order
