package commands_test

import (
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/file"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports/portstest"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func uowFactory(store *portstest.Store) commands.UoWFactory {
	return commands.UoWFactoryFunc(func() commands.UoW { return store.Create() })
}

func moderationFactory(store *portstest.Store) commands.ModerationUoWFactory {
	return commands.ModerationUoWFactoryFunc(func() commands.ModerationUoW { return store.Create() })
}

// seedSubmitted stores an order waiting for moderation with its initial batch.
func seedSubmitted(t *testing.T, store *portstest.Store, orderType order.Type) (*order.Order, *order.Batch) {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), order.Details{
		Type:     orderType,
		UserName: "bob",
		Delivery: portstest.OnlineAccess(t),
	}, now)
	require.NoError(t, err)
	b, err := order.NewBatch(kernel.NewUUID(), o.ID(), order.InitialBatch, nil, now)
	require.NoError(t, err)
	it, err := item.NewOrderItem(kernel.NewUUID(), b.ID(), item.Request{
		ItemID: "1", Identifier: "S2_1", Collection: portstest.Sentinel2,
	}, now)
	require.NoError(t, err)
	store.Seed(o, b, it)
	return o, b
}

// complete moves an item through production and stores it with its file.
func complete(t *testing.T, store *portstest.Store, it *item.OrderItem, url string) *file.File {
	t.Helper()
	expires := now.Add(48 * time.Hour)
	require.NoError(t, it.StartProduction(now))
	require.NoError(t, it.Complete(url, "", expires, now))
	f, err := file.NewItemFile(kernel.NewUUID(), it.BatchID(), it.ID(), url, expires, now)
	require.NoError(t, err)
	store.Seed(it, f)
	return f
}

// fail moves an item through production into Failed and stores it.
func fail(t *testing.T, store *portstest.Store, it *item.OrderItem, info string) {
	t.Helper()
	require.NoError(t, it.StartProduction(now))
	require.NoError(t, it.Fail(info, now))
	store.Seed(it)
}

// inProduction stores an item that is still being processed.
func inProduction(t *testing.T, store *portstest.Store, it *item.OrderItem) {
	t.Helper()
	require.NoError(t, it.StartProduction(now))
	store.Seed(it)
}

func statusOf(store *portstest.Store, id kernel.UUID) kernel.Status {
	return store.Order(id).Status()
}

// seededItem stores a submitted item in a batch.
func seededItem(t *testing.T, store *portstest.Store, batchID kernel.UUID) *item.OrderItem {
	t.Helper()
	it, err := item.NewOrderItem(kernel.NewUUID(), batchID, item.Request{
		ItemID: "t-1", Identifier: "S2_T1", Collection: portstest.Sentinel2,
	}, now)
	require.NoError(t, err)
	store.Seed(it)
	return it
}
