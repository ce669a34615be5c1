package services_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/file"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

func mustSettings(t *testing.T) services.FulfillmentSettings {
	t.Helper()
	s, err := services.NewFulfillmentSettings(map[order.Type]services.OrderTypeSettings{
		order.ProductOrder:      {Enabled: true, ItemAvailabilityDays: 3},
		order.SubscriptionOrder: {Enabled: true},
		order.TaskingOrder:      {Enabled: false, ItemAvailabilityDays: 10},
	}, []string{"sentinel-1", "sentinel-2", "landsat-8"}, "eo.example.org")
	require.NoError(t, err)
	return s
}

func mustOrder(t *testing.T, opt *delivery.Option) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), order.Details{
		Type:     order.ProductOrder,
		UserName: "jdoe",
		Delivery: opt,
	}, now)
	require.NoError(t, err)
	return o
}

func mustItem(t *testing.T, opt *delivery.Option) *item.OrderItem {
	t.Helper()
	it, err := item.NewOrderItem(kernel.NewUUID(), kernel.NewUUID(), item.Request{
		ItemID:     "1",
		Collection: "sentinel-2",
		Delivery:   opt,
	}, now)
	require.NoError(t, err)
	return it
}

func TestFulfillmentSettings(t *testing.T) {
	t.Run("should list enabled types in stable order", func(t *testing.T) {
		s := mustSettings(t)

		assert.Equal(t, []order.Type{order.ProductOrder, order.SubscriptionOrder}, s.EnabledTypes())
		assert.Equal(t, "eo.example.org", s.SiteDomain())
	})

	t.Run("should default the availability window to one day", func(t *testing.T) {
		s := mustSettings(t)

		assert.Equal(t, 24*time.Hour, s.ForType(order.SubscriptionOrder).AvailabilityWindow())
		assert.Equal(t, 24*time.Hour, s.ForType(order.MassiveOrder).AvailabilityWindow())
		assert.Equal(t, 72*time.Hour, s.ForType(order.ProductOrder).AvailabilityWindow())
	})

	t.Run("should reject broken configuration", func(t *testing.T) {
		_, err := services.NewFulfillmentSettings(map[order.Type]services.OrderTypeSettings{
			order.ProductOrder: {ItemAvailabilityDays: -1},
		}, nil, "")
		require.ErrorIs(t, err, errs.ErrConfiguration)

		_, err = services.NewFulfillmentSettings(nil, []string{"a", "a"}, "")
		require.ErrorIs(t, err, errs.ErrConfiguration)

		_, err = services.NewFulfillmentSettings(map[order.Type]services.OrderTypeSettings{"BULK": {}}, nil, "")
		require.ErrorIs(t, err, errs.ErrConfiguration)
	})

	t.Run("should not be mutated through its inputs", func(t *testing.T) {
		collections := []string{"a"}
		s, err := services.NewFulfillmentSettings(nil, collections, "")
		require.NoError(t, err)

		collections[0] = "b"

		assert.True(t, s.HasCollection("a"))
		assert.False(t, s.HasCollection("b"))
	})
}

func TestDeliveryResolver(t *testing.T) {
	orderOpt, _ := delivery.NewOnlineDataAccess("http", delivery.Extras{Copies: 1})
	itemOpt, _ := delivery.NewMediaDelivery("dvd", "by post", delivery.Extras{Copies: 2})
	resolver := services.NewDeliveryResolver()

	t.Run("item option wins over the order's", func(t *testing.T) {
		got, err := resolver.Resolve(mustItem(t, &itemOpt), mustOrder(t, &orderOpt))

		require.NoError(t, err)
		assert.Equal(t, delivery.MediaDelivery, got.Type())
	})

	t.Run("item without option inherits the order's exactly", func(t *testing.T) {
		got, err := resolver.Resolve(mustItem(t, nil), mustOrder(t, &orderOpt))

		require.NoError(t, err)
		assert.Equal(t, orderOpt.Parameters(), got.Parameters())
	})

	t.Run("missing option is a configuration error", func(t *testing.T) {
		_, err := resolver.Resolve(mustItem(t, nil), mustOrder(t, nil))

		require.ErrorIs(t, err, errs.ErrConfiguration)
	})

	t.Run("exports the resolved parameters", func(t *testing.T) {
		params, err := resolver.ExportParameters(mustItem(t, &itemOpt), mustOrder(t, &orderOpt))

		require.NoError(t, err)
		assert.Equal(t, "dvd", params[delivery.ParamMedium])
		assert.Equal(t, "2", params[delivery.ParamCopies])
	})
}

func TestFileLifecycle(t *testing.T) {
	lifecycle := services.NewFileLifecycle(mustSettings(t))
	newFile := func(t *testing.T, expires time.Time, downloads int) *file.File {
		f, err := file.RestoreFile(kernel.NewUUID(), kernel.NewUUID(), []kernel.UUID{kernel.NewUUID()}, "u", false,
			file.State{ExpiresOn: expires, Available: true, Downloads: downloads})
		require.NoError(t, err)
		return f
	}

	t.Run("computes expiry per order type", func(t *testing.T) {
		assert.Equal(t, now.Add(72*time.Hour), lifecycle.ComputeExpiry(order.ProductOrder, now))
		assert.Equal(t, now.Add(24*time.Hour), lifecycle.ComputeExpiry(order.SubscriptionOrder, now))
	})

	tests := []struct {
		name             string
		expires          time.Time
		downloads        int
		deleteDownloaded bool
		want             bool
	}{
		{"expired, never downloaded", now.Add(-time.Minute), 0, false, true},
		{"expired, downloaded, keep preference", now.Add(-time.Minute), 3, false, true},
		{"fresh, downloaded, delete preference", now.Add(time.Hour), 1, true, true},
		{"fresh, downloaded, keep preference", now.Add(time.Hour), 1, false, false},
		{"fresh, not downloaded, delete preference", now.Add(time.Hour), 0, true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFile(t, tc.expires, tc.downloads)

			assert.Equal(t, tc.want, lifecycle.IsDeletable(f, tc.deleteDownloaded, now))
		})
	}

	t.Run("selects available deletable files", func(t *testing.T) {
		expired := newFile(t, now.Add(-time.Hour), 0)
		fresh := newFile(t, now.Add(time.Hour), 0)
		gone := newFile(t, now.Add(-time.Hour), 0)
		gone.MarkUnavailable()
		files := []*file.File{expired, fresh, gone}

		assert.Equal(t, []*file.File{expired}, lifecycle.SelectForDeletion(files, false, false, now))
		assert.Equal(t, []*file.File{expired, fresh}, lifecycle.SelectForDeletion(files, false, true, now))
	})

	t.Run("deduplicates shared locations", func(t *testing.T) {
		batchID := kernel.NewUUID()
		a, _ := file.NewItemFile(kernel.NewUUID(), batchID, kernel.NewUUID(), "http://x/pkg.zip", now, now)
		b, _ := file.NewItemFile(kernel.NewUUID(), batchID, kernel.NewUUID(), "http://x/pkg.zip", now, now)
		c, _ := file.NewItemFile(kernel.NewUUID(), batchID, kernel.NewUUID(), "http://x/c.tif", now, now)

		assert.Equal(t, []string{"http://x/pkg.zip", "http://x/c.tif"}, services.UniqueURLs([]*file.File{a, b, c}))
	})
}

func TestCollectionAdmission(t *testing.T) {
	admission := services.NewCollectionAdmission(mustSettings(t))
	twice := []item.Request{
		{ItemID: "1", Collection: "sentinel-2"},
		{ItemID: "2", Collection: "sentinel-2"},
	}

	t.Run("subscription batches reject repeated collections", func(t *testing.T) {
		err := admission.Admit(order.SubscriptionOrder, twice)

		require.ErrorIs(t, err, errs.ErrDuplicateCollection)
		assert.Contains(t, err.Error(), "sentinel-2")
	})

	t.Run("product orders may repeat collections", func(t *testing.T) {
		require.NoError(t, admission.Admit(order.ProductOrder, twice))
	})

	t.Run("unknown collections are a configuration error", func(t *testing.T) {
		err := admission.Admit(order.ProductOrder, []item.Request{{ItemID: "1", Collection: "modis"}})

		require.ErrorIs(t, err, errs.ErrConfiguration)
	})
}
