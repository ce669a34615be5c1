package portstest

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"

	"github.com/stretchr/testify/require"
)

// Collections configured by Settings.
const (
	Sentinel2 = "sentinel2"
	Landsat8  = "landsat8"
)

// Settings enables every order type with a two day availability window.
func Settings(t *testing.T) services.FulfillmentSettings {
	t.Helper()
	types := map[order.Type]services.OrderTypeSettings{}
	for _, ot := range order.Types {
		types[ot] = services.OrderTypeSettings{Enabled: true, ItemAvailabilityDays: 2}
	}
	settings, err := services.NewFulfillmentSettings(types, []string{Sentinel2, Landsat8}, "example.org")
	require.NoError(t, err)
	return settings
}

// OnlineAccess is an online-data-access delivery option over https.
func OnlineAccess(t *testing.T) *delivery.Option {
	t.Helper()
	opt, err := delivery.NewOnlineDataAccess("https", delivery.Extras{Copies: 1})
	require.NoError(t, err)
	return &opt
}

// Fixture is an order with its initial batch and items, seeded in a Store.
type Fixture struct {
	Order *order.Order
	Batch *order.Batch
	Items []*item.OrderItem
}

// SeedOrder stores an order of the given type and packaging whose initial
// batch holds one item per collection. The order is already in production
// unless it is a subscription, which is only accepted.
func SeedOrder(
	t *testing.T,
	store *Store,
	orderType order.Type,
	packaging order.Packaging,
	now time.Time,
	collections ...string,
) Fixture {
	t.Helper()

	o, err := order.NewOrder(kernel.NewUUID(), order.Details{
		Type:      orderType,
		UserName:  "alice",
		Packaging: packaging,
		Options:   map[string]string{"format": "GeoTIFF"},
		Delivery:  OnlineAccess(t),
	}, now)
	require.NoError(t, err)
	_, err = o.Approve(now)
	require.NoError(t, err)
	if orderType != order.SubscriptionOrder {
		require.NoError(t, o.StartProduction(now))
	}

	batch, err := order.NewBatch(kernel.NewUUID(), o.ID(), order.InitialBatch, nil, now)
	require.NoError(t, err)

	fx := Fixture{Order: o, Batch: batch}
	for n, c := range collections {
		req := item.Request{
			ItemID:     string(rune('a' + n)),
			Collection: c,
		}
		if orderType != order.SubscriptionOrder {
			req.Identifier = c + "_product"
		}
		it, err := item.NewOrderItem(kernel.NewUUID(), batch.ID(), req, now)
		require.NoError(t, err)
		fx.Items = append(fx.Items, it)
	}

	entities := []any{o, batch}
	for _, it := range fx.Items {
		entities = append(entities, it)
	}
	store.Seed(entities...)
	return fx
}
