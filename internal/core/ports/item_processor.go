package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"
)

// ProcessItemRequest carries everything the processor needs to produce one
// order item. Options holds the item's exported options merged with its
// exported delivery parameters.
type ProcessItemRequest struct {
	Identifier string
	ItemID     string
	OrderID    string
	UserName   string
	Packaging  order.Packaging
	Options    map[string]string
}

// ProcessItemResult lists the produced locations and a free-text report.
type ProcessItemResult struct {
	URLs    []string
	Details string
}

// ItemProcessor is the pluggable component that produces, packages and
// deletes files. The concrete implementation is chosen at startup.
//
// Implementations may be called concurrently for different items, but never
// concurrently for the same packaging or deletion target.
type ItemProcessor interface {
	// ProcessItemOnlineAccess produces the files of one online-data-access
	// item. Any returned error fails the item.
	ProcessItemOnlineAccess(ctx context.Context, req ProcessItemRequest) (ProcessItemResult, error)

	// PackageFiles bundles the given files into one and returns its location.
	PackageFiles(ctx context.Context, packaging order.Packaging, domain string, fileURLs []string) (string, error)

	// CleanFiles deletes the given files. It must not fail for files that
	// are already gone.
	CleanFiles(ctx context.Context, fileURLs []string) error

	// GetSubscriptionBatchIdentifiers lists the catalog identifiers a
	// subscription delivers for one collection and timeslot.
	GetSubscriptionBatchIdentifiers(ctx context.Context, timeslot time.Time, collection string) ([]string, error)

	// ParseOption validates a requested option and returns its normalized value.
	ParseOption(name, value string) (string, error)
}
