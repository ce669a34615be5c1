package commands_test

import (
	"errors"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports/portstest"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRetryOrderItemCommandHandler_Handle(t *testing.T) {
	t.Run("should resubmit a failed item and dispatch it alone", func(t *testing.T) {
		ctx := t.Context()
		store := portstest.NewStore()
		seeded := portstest.SeedOrder(t, store, order.ProductOrder, order.PackagingNone, now,
			portstest.Sentinel2, portstest.Landsat8)
		failed := seeded.Items[1]
		fail(t, store, failed, "boom")

		dispatcher := new(portstest.MockBatchDispatcher)
		dispatcher.On("DispatchItems", ctx, seeded.Batch.ID(), []kernel.UUID{failed.ID()}).Return(nil).Once()

		cmd, err := commands.NewRetryOrderItemCommand(failed.ID())
		require.NoError(t, err)
		err = commands.NewRetryOrderItemCommandHandler(uowFactory(store), dispatcher, portstest.NewClock(now)).Handle(ctx, cmd)
		require.NoError(t, err)

		stored := store.Item(failed.ID())
		assert.Equal(t, kernel.Submitted, stored.Status())
		assert.Empty(t, stored.AdditionalStatusInfo())
		dispatcher.AssertExpectations(t)
	})

	t.Run("should refuse to retry an item that did not fail", func(t *testing.T) {
		store := portstest.NewStore()
		seeded := portstest.SeedOrder(t, store, order.ProductOrder, order.PackagingNone, now, portstest.Sentinel2)
		complete(t, store, seeded.Items[0], "https://files/a")

		dispatcher := new(portstest.MockBatchDispatcher)
		cmd, err := commands.NewRetryOrderItemCommand(seeded.Items[0].ID())
		require.NoError(t, err)
		err = commands.NewRetryOrderItemCommandHandler(uowFactory(store), dispatcher, portstest.NewClock(now)).
			Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, kernel.Completed, store.Item(seeded.Items[0].ID()).Status())
		dispatcher.AssertNotCalled(t, "DispatchItems", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should return the dispatch error after the item was resubmitted", func(t *testing.T) {
		store := portstest.NewStore()
		seeded := portstest.SeedOrder(t, store, order.ProductOrder, order.PackagingNone, now, portstest.Sentinel2)
		fail(t, store, seeded.Items[0], "boom")

		dispatcher := new(portstest.MockBatchDispatcher)
		dispatcher.On("DispatchItems", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("pool closed"))

		cmd, err := commands.NewRetryOrderItemCommand(seeded.Items[0].ID())
		require.NoError(t, err)
		err = commands.NewRetryOrderItemCommandHandler(uowFactory(store), dispatcher, portstest.NewClock(now)).
			Handle(t.Context(), cmd)

		require.EqualError(t, err, "pool closed")
		assert.Equal(t, kernel.Submitted, store.Item(seeded.Items[0].ID()).Status())
	})
}

func TestRegisterFileDownloadCommandHandler_Handle(t *testing.T) {
	t.Run("should count downloads and recompute on the first one", func(t *testing.T) {
		ctx := t.Context()
		store := portstest.NewStore()
		seeded := portstest.SeedOrder(t, store, order.ProductOrder, order.PackagingNone, now, portstest.Sentinel2)
		it := seeded.Items[0]
		f := complete(t, store, it, "https://files/a")

		dispatcher := new(portstest.MockBatchDispatcher)
		dispatcher.On("RecomputeBatch", ctx, seeded.Batch.ID()).Return(nil).Once()
		handler := commands.NewRegisterFileDownloadCommandHandler(uowFactory(store), dispatcher, portstest.NewClock(now))

		cmd, err := commands.NewRegisterFileDownloadCommand(f.ID())
		require.NoError(t, err)
		require.NoError(t, handler.Handle(ctx, cmd))
		require.NoError(t, handler.Handle(ctx, cmd))

		stored := store.Item(it.ID())
		assert.Equal(t, kernel.Downloaded, stored.Status())
		assert.Equal(t, 2, stored.State().Downloads)
		require.NotNil(t, stored.State().LastDownloadedAt)
		assert.Equal(t, 2, store.Files(seeded.Batch.ID())[0].Downloads())
		dispatcher.AssertNumberOfCalls(t, "RecomputeBatch", 1)
	})

	t.Run("should refuse a download of a deleted file", func(t *testing.T) {
		store := portstest.NewStore()
		seeded := portstest.SeedOrder(t, store, order.ProductOrder, order.PackagingNone, now, portstest.Sentinel2)
		f := complete(t, store, seeded.Items[0], "https://files/a")
		f.MarkUnavailable()
		store.Seed(f)

		dispatcher := new(portstest.MockBatchDispatcher)
		cmd, err := commands.NewRegisterFileDownloadCommand(f.ID())
		require.NoError(t, err)
		err = commands.NewRegisterFileDownloadCommandHandler(uowFactory(store), dispatcher, portstest.NewClock(now)).
			Handle(t.Context(), cmd)

		require.Error(t, err)
		assert.Equal(t, kernel.Completed, store.Item(seeded.Items[0].ID()).Status())
		dispatcher.AssertNotCalled(t, "RecomputeBatch", mock.Anything, mock.Anything)
	})
}
