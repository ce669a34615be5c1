package commands_test

import (
	"errors"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports/portstest"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type submitFixture struct {
	store      *portstest.Store
	processor  *portstest.MockItemProcessor
	dispatcher *portstest.MockBatchDispatcher
	handler    commands.SubmitOrderCommandHandler
}

func newSubmitFixture(t *testing.T, settings services.FulfillmentSettings) submitFixture {
	t.Helper()
	store := portstest.NewStore()
	processor := new(portstest.MockItemProcessor)
	dispatcher := new(portstest.MockBatchDispatcher)
	clock := portstest.NewClock(now)
	approver := commands.NewApproveOrderCommandHandler(moderationFactory(store), dispatcher, clock, discardLogger())
	return submitFixture{
		store:      store,
		processor:  processor,
		dispatcher: dispatcher,
		handler: commands.NewSubmitOrderCommandHandler(
			uowFactory(store), processor, settings, approver, clock, discardLogger(),
		),
	}
}

func productDetails(t *testing.T) order.Details {
	return order.Details{
		Type:     order.ProductOrder,
		UserName: "carol",
		Options:  map[string]string{"format": "geotiff"},
		Delivery: portstest.OnlineAccess(t),
	}
}

func TestSubmitOrderCommandHandler_Handle(t *testing.T) {
	t.Run("should store the order with normalized options and wait for moderation", func(t *testing.T) {
		ctx := t.Context()
		fx := newSubmitFixture(t, portstest.Settings(t))
		fx.processor.On("ParseOption", "format", "geotiff").Return("GEOTIFF", nil).Once()
		fx.processor.On("ParseOption", "bands", "rgb").Return("RGB", nil).Once()

		cmd, err := commands.NewSubmitOrderCommand(productDetails(t), []item.Request{
			{ItemID: "1", Identifier: "S2_1", Collection: portstest.Sentinel2, Options: map[string]string{"bands": "rgb"}},
			{ItemID: "2", Identifier: "L8_1", Collection: portstest.Landsat8},
		})
		require.NoError(t, err)

		orderID, err := fx.handler.Handle(ctx, cmd)
		require.NoError(t, err)

		stored := fx.store.Order(orderID)
		require.NotNil(t, stored)
		assert.Equal(t, kernel.Submitted, stored.Status())
		assert.Equal(t, map[string]string{"format": "GEOTIFF"}, stored.Details().Options)

		batches := fx.store.Batches(orderID)
		require.Len(t, batches, 1)
		assert.Equal(t, order.InitialBatch, batches[0].Kind())

		items := fx.store.Items(batches[0].ID())
		require.Len(t, items, 2)
		assert.Equal(t, "1", items[0].ItemID())
		assert.Equal(t, map[string]string{"bands": "RGB"}, items[0].Request().Options)
		fx.dispatcher.AssertNotCalled(t, "DispatchBatch", mock.Anything, mock.Anything)
	})

	t.Run("should approve and dispatch right away when auto approval is configured", func(t *testing.T) {
		ctx := t.Context()
		settings, err := services.NewFulfillmentSettings(map[order.Type]services.OrderTypeSettings{
			order.ProductOrder: {Enabled: true, AutoApprove: true},
		}, nil, "")
		require.NoError(t, err)
		fx := newSubmitFixture(t, settings)
		fx.processor.On("ParseOption", "format", "geotiff").Return("geotiff", nil)
		fx.dispatcher.On("DispatchBatch", ctx, mock.AnythingOfType("kernel.UUID")).Return(nil).Once()

		cmd, err := commands.NewSubmitOrderCommand(productDetails(t), []item.Request{
			{ItemID: "1", Identifier: "S2_1", Collection: "anything"},
		})
		require.NoError(t, err)

		orderID, err := fx.handler.Handle(ctx, cmd)
		require.NoError(t, err)

		assert.Equal(t, kernel.InProduction, statusOf(fx.store, orderID))
		fx.dispatcher.AssertExpectations(t)
	})

	t.Run("should refuse a disabled order type", func(t *testing.T) {
		settings, err := services.NewFulfillmentSettings(nil, nil, "")
		require.NoError(t, err)
		fx := newSubmitFixture(t, settings)

		cmd, err := commands.NewSubmitOrderCommand(productDetails(t), []item.Request{
			{ItemID: "1", Identifier: "S2_1", Collection: portstest.Sentinel2},
		})
		require.NoError(t, err)

		_, err = fx.handler.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrConfiguration)
		assert.Zero(t, fx.store.Commits())
	})

	t.Run("should refuse an option the processor rejects", func(t *testing.T) {
		fx := newSubmitFixture(t, portstest.Settings(t))
		fx.processor.On("ParseOption", "format", "geotiff").Return("", errors.New("unsupported format"))

		cmd, err := commands.NewSubmitOrderCommand(productDetails(t), []item.Request{
			{ItemID: "1", Identifier: "S2_1", Collection: portstest.Sentinel2},
		})
		require.NoError(t, err)

		_, err = fx.handler.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.ErrorContains(t, err, "unsupported format")
		assert.Zero(t, fx.store.Commits())
	})

	t.Run("should refuse an unconfigured collection", func(t *testing.T) {
		fx := newSubmitFixture(t, portstest.Settings(t))
		fx.processor.On("ParseOption", mock.Anything, mock.Anything).Return("geotiff", nil)

		cmd, err := commands.NewSubmitOrderCommand(productDetails(t), []item.Request{
			{ItemID: "1", Identifier: "X_1", Collection: "modis"},
		})
		require.NoError(t, err)

		_, err = fx.handler.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrConfiguration)
	})

	t.Run("should refuse a subscription repeating a collection", func(t *testing.T) {
		fx := newSubmitFixture(t, portstest.Settings(t))

		details := productDetails(t)
		details.Type = order.SubscriptionOrder
		details.Options = nil
		cmd, err := commands.NewSubmitOrderCommand(details, []item.Request{
			{ItemID: "1", Collection: portstest.Sentinel2},
			{ItemID: "2", Collection: portstest.Sentinel2},
		})
		require.NoError(t, err)

		_, err = fx.handler.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrDuplicateCollection)
		assert.Zero(t, fx.store.Commits())
		fx.processor.AssertNotCalled(t, "ParseOption", mock.Anything, mock.Anything)
	})
}
