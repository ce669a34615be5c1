// Package item provides the OrderItem entity: one requested product within a
// batch, with its own status, selected options and optional delivery
// override.
package item
