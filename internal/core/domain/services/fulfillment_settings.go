package services

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// DefaultItemAvailabilityDays applies to order types configured without an
// availability window.
const DefaultItemAvailabilityDays = 1

// OrderTypeSettings configures the fulfillment of one order type.
type OrderTypeSettings struct {
	Enabled bool
	// ItemAvailabilityDays is how long produced files stay downloadable.
	ItemAvailabilityDays int
	// AutoApprove skips moderation for submitted orders.
	AutoApprove bool
	// NotifyBatchReady announces every completed batch to the requester.
	NotifyBatchReady bool
}

// AvailabilityWindow returns the configured window, falling back to
// DefaultItemAvailabilityDays.
func (s OrderTypeSettings) AvailabilityWindow() time.Duration {
	days := s.ItemAvailabilityDays
	if days <= 0 {
		days = DefaultItemAvailabilityDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// FulfillmentSettings is the immutable configuration shared by the
// orchestrator, the command handlers and the file lifecycle manager. It is
// built once at startup and never mutated afterwards.
type FulfillmentSettings struct {
	orderTypes  map[order.Type]OrderTypeSettings
	collections []string
	siteDomain  string
}

// NewFulfillmentSettings validates and freezes the settings. Order types
// missing from orderTypes are disabled.
func NewFulfillmentSettings(
	orderTypes map[order.Type]OrderTypeSettings,
	collections []string,
	siteDomain string,
) (FulfillmentSettings, error) {
	for t, s := range orderTypes {
		if err := t.Validate(); err != nil {
			return FulfillmentSettings{}, errs.NewConfigurationErrorWithCause("order types", err)
		}
		if s.ItemAvailabilityDays < 0 {
			return FulfillmentSettings{}, errs.NewConfigurationErrorWithCause(
				"item availability days",
				fmt.Errorf("%s has a negative window of %d days", t, s.ItemAvailabilityDays),
			)
		}
	}

	seen := make(map[string]struct{}, len(collections))
	for _, c := range collections {
		if _, dup := seen[c]; dup {
			return FulfillmentSettings{}, errs.NewConfigurationErrorWithCause("collections", fmt.Errorf("%q is listed twice", c))
		}
		seen[c] = struct{}{}
	}

	return FulfillmentSettings{
		orderTypes:  maps.Clone(orderTypes),
		collections: slices.Clone(collections),
		siteDomain:  siteDomain,
	}, nil
}

// ForType returns the settings of an order type. Unconfigured types are
// disabled and use the default availability window.
func (s FulfillmentSettings) ForType(t order.Type) OrderTypeSettings {
	return s.orderTypes[t]
}

// EnabledTypes lists the enabled order types in a stable order.
func (s FulfillmentSettings) EnabledTypes() []order.Type {
	var enabled []order.Type
	for _, t := range order.Types {
		if s.orderTypes[t].Enabled {
			enabled = append(enabled, t)
		}
	}
	return enabled
}

func (s FulfillmentSettings) Collections() []string {
	return slices.Clone(s.collections)
}

// HasCollection reports whether a collection is configured. With no
// collections configured every collection is accepted.
func (s FulfillmentSettings) HasCollection(name string) bool {
	return len(s.collections) == 0 || slices.Contains(s.collections, name)
}

// SiteDomain is handed to the item processor when packaging files.
func (s FulfillmentSettings) SiteDomain() string {
	return s.siteDomain
}
