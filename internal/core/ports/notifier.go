package ports

import (
	"context"
	"time"
)

// EventKind names a notification or operational alert.
type EventKind string

const (
	OrderCompleted       EventKind = "OrderCompleted"
	OrderFailed          EventKind = "OrderFailed"
	BatchReady           EventKind = "BatchReady"
	BatchPackagingFailed EventKind = "BatchPackagingFailed"
	CleanupFailed        EventKind = "CleanupFailed"
)

// Event is the payload handed to the notification boundary.
type Event struct {
	Kind       EventKind         `json:"kind"`
	OrderID    string            `json:"order_id,omitempty"`
	BatchID    string            `json:"batch_id,omitempty"`
	UserName   string            `json:"user_name,omitempty"`
	OrderType  string            `json:"order_type,omitempty"`
	Message    string            `json:"message,omitempty"`
	URLs       []string          `json:"urls,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Notifier delivers events. Delivery is fire-and-forget: callers log a
// returned error and never roll back the transition that raised the event.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}
