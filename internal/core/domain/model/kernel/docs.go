// Package kernel provides the primitives shared by every fulfillment aggregate.
//
// The package includes:
//   - UUID: a value object identifying orders, batches, items and files
//   - Status: the fulfillment status vocabulary shared by orders, batches and items
//   - Rollup: the rule deriving a parent status from its children's statuses
//
// Status names are persisted verbatim and are read by the ordering protocol
// front-end, so they must not be renamed.
package kernel
