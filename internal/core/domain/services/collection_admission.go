package services

import (
	"fmt"

	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// CollectionAdmission gates the items of a batch before any of them is
// scheduled.
//
// Business rules:
//   - Every collection must be configured (ConfigurationError otherwise)
//   - Within one subscription batch no collection may appear twice
//     (DuplicateCollectionError); other order types may repeat collections
type CollectionAdmission struct {
	settings FulfillmentSettings
}

func NewCollectionAdmission(settings FulfillmentSettings) CollectionAdmission {
	return CollectionAdmission{settings: settings}
}

// Admit checks the requested items of one batch.
func (a CollectionAdmission) Admit(orderType order.Type, requests []item.Request) error {
	seen := make(map[string]struct{}, len(requests))
	for _, r := range requests {
		if !a.settings.HasCollection(r.Collection) {
			return errs.NewConfigurationErrorWithCause("collection", fmt.Errorf("%q is not configured", r.Collection))
		}
		if orderType != order.SubscriptionOrder {
			continue
		}
		if _, dup := seen[r.Collection]; dup {
			return errs.NewDuplicateCollectionError(r.Collection)
		}
		seen[r.Collection] = struct{}{}
	}
	return nil
}
