package commands_test

import (
	"context"
	"errors"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/core/ports/portstest"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockModerationOrderRepository struct{ mock.Mock }

func (m *MockModerationOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockModerationOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockModerationOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockModerationOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockModerationOrderRepository) FindByStatusAndType(
	ctx context.Context,
	status kernel.Status,
	orderType order.Type,
) ([]*order.Order, error) {
	args := m.Called(ctx, status, orderType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockModerationUoW struct{ mock.Mock }

func (m *MockModerationUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockModerationUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockModerationUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockModerationUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockModerationUoW) BatchRepository() ports.BatchRepository {
	args := m.Called()
	return args.Get(0).(ports.BatchRepository)
}

type MockModerationUoWFactory struct{ mock.Mock }

func (m *MockModerationUoWFactory) Create() commands.ModerationUoW {
	args := m.Called()
	return args.Get(0).(commands.ModerationUoW)
}

func TestRejectOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	o, err := order.NewOrder(kernel.NewUUID(), order.Details{Type: order.ProductOrder, UserName: "bob"}, now)
	require.NoError(t, err)
	cmd, err := commands.NewRejectOrderCommand(o.ID(), "quota exceeded")
	require.NoError(t, err)

	orderRepo := new(MockModerationOrderRepository)
	uow := new(MockModerationUoW)
	factory := new(MockModerationUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once(),
		orderRepo.On("Update", ctx, mock.MatchedBy(func(updated *order.Order) bool {
			return updated.Status() == kernel.Cancelled && updated.AdditionalStatusInfo() == "quota exceeded"
		})).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewRejectOrderCommandHandler(factory, portstest.NewClock(now))
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	orderRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestRejectOrderCommandHandler_Handle_AlreadyRejected(t *testing.T) {
	ctx := t.Context()
	o, err := order.NewOrder(kernel.NewUUID(), order.Details{Type: order.ProductOrder, UserName: "bob"}, now)
	require.NoError(t, err)
	_, err = o.Reject("first", now)
	require.NoError(t, err)
	cmd, err := commands.NewRejectOrderCommand(o.ID(), "second")
	require.NoError(t, err)

	orderRepo := new(MockModerationOrderRepository)
	uow := new(MockModerationUoW)
	factory := new(MockModerationUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewRejectOrderCommandHandler(factory, portstest.NewClock(now))
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	assert.Equal(t, "first", o.AdditionalStatusInfo())
}

func TestRejectOrderCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewRejectOrderCommand(kernel.NewUUID(), "")
	require.NoError(t, err)

	uow := new(MockModerationUoW)
	factory := new(MockModerationUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	handler := commands.NewRejectOrderCommandHandler(factory, portstest.NewClock(now))
	err = handler.Handle(ctx, cmd)

	require.EqualError(t, err, "begin error")
}

func TestRejectOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockModerationUoWFactory)
	handler := commands.NewRejectOrderCommandHandler(factory, portstest.NewClock(now))

	err := handler.Handle(t.Context(), commands.RejectOrderCommand{})

	require.ErrorIs(t, err, commands.ErrRejectOrderCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestModeration_WithStore(t *testing.T) {
	t.Run("should approve a product order and dispatch its initial batch", func(t *testing.T) {
		ctx := t.Context()
		store := portstest.NewStore()
		o, b := seedSubmitted(t, store, order.ProductOrder)

		dispatcher := new(portstest.MockBatchDispatcher)
		dispatcher.On("DispatchBatch", ctx, b.ID()).Return(nil).Once()

		handler := commands.NewApproveOrderCommandHandler(
			moderationFactory(store), dispatcher, portstest.NewClock(now), discardLogger(),
		)
		cmd, err := commands.NewApproveOrderCommand(o.ID())
		require.NoError(t, err)

		require.NoError(t, handler.Handle(ctx, cmd))

		stored := store.Order(o.ID())
		assert.Equal(t, kernel.InProduction, stored.Status())
		assert.Equal(t, order.InfoBeingProcessed, stored.AdditionalStatusInfo())
		dispatcher.AssertExpectations(t)
	})

	t.Run("should make re-approval a no-op", func(t *testing.T) {
		ctx := t.Context()
		store := portstest.NewStore()
		o, b := seedSubmitted(t, store, order.ProductOrder)

		dispatcher := new(portstest.MockBatchDispatcher)
		dispatcher.On("DispatchBatch", ctx, b.ID()).Return(nil).Once()

		handler := commands.NewApproveOrderCommandHandler(
			moderationFactory(store), dispatcher, portstest.NewClock(now), discardLogger(),
		)
		cmd, err := commands.NewApproveOrderCommand(o.ID())
		require.NoError(t, err)

		require.NoError(t, handler.Handle(ctx, cmd))
		require.NoError(t, handler.Handle(ctx, cmd))

		dispatcher.AssertNumberOfCalls(t, "DispatchBatch", 1)
	})

	t.Run("should only accept a subscription", func(t *testing.T) {
		ctx := t.Context()
		store := portstest.NewStore()
		o, _ := seedSubmitted(t, store, order.SubscriptionOrder)

		dispatcher := new(portstest.MockBatchDispatcher)
		handler := commands.NewApproveOrderCommandHandler(
			moderationFactory(store), dispatcher, portstest.NewClock(now), discardLogger(),
		)
		cmd, err := commands.NewApproveOrderCommand(o.ID())
		require.NoError(t, err)

		require.NoError(t, handler.Handle(ctx, cmd))

		assert.Equal(t, kernel.Accepted, statusOf(store, o.ID()))
		dispatcher.AssertNotCalled(t, "DispatchBatch", mock.Anything, mock.Anything)
	})

	t.Run("should report a conflict when approving a rejected order", func(t *testing.T) {
		ctx := t.Context()
		store := portstest.NewStore()
		o, _ := seedSubmitted(t, store, order.ProductOrder)

		reject, err := commands.NewRejectOrderCommand(o.ID(), "no quota")
		require.NoError(t, err)
		require.NoError(t, commands.NewRejectOrderCommandHandler(moderationFactory(store), portstest.NewClock(now)).
			Handle(ctx, reject))

		dispatcher := new(portstest.MockBatchDispatcher)
		handler := commands.NewApproveOrderCommandHandler(
			moderationFactory(store), dispatcher, portstest.NewClock(now), discardLogger(),
		)
		approve, err := commands.NewApproveOrderCommand(o.ID())
		require.NoError(t, err)

		err = handler.Handle(ctx, approve)

		require.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, kernel.Cancelled, statusOf(store, o.ID()))
		dispatcher.AssertNotCalled(t, "DispatchBatch", mock.Anything, mock.Anything)
	})

	t.Run("should report a conflict when rejecting an approved order", func(t *testing.T) {
		ctx := t.Context()
		store := portstest.NewStore()
		fx := portstest.SeedOrder(t, store, order.ProductOrder, order.PackagingNone, now, portstest.Sentinel2)

		reject, err := commands.NewRejectOrderCommand(fx.Order.ID(), "too late")
		require.NoError(t, err)

		err = commands.NewRejectOrderCommandHandler(moderationFactory(store), portstest.NewClock(now)).Handle(ctx, reject)

		require.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, kernel.InProduction, statusOf(store, fx.Order.ID()))
	})

	t.Run("should return not found for an unknown order", func(t *testing.T) {
		store := portstest.NewStore()
		handler := commands.NewApproveOrderCommandHandler(
			moderationFactory(store), new(portstest.MockBatchDispatcher), portstest.NewClock(now), discardLogger(),
		)
		cmd, err := commands.NewApproveOrderCommand(kernel.NewUUID())
		require.NoError(t, err)

		err = handler.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}
