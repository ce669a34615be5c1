package http_test

import (
	"context"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/mock"
)

type MockOrderSubmitter struct{ mock.Mock }

func (m *MockOrderSubmitter) Handle(ctx context.Context, command commands.SubmitOrderCommand) (kernel.UUID, error) {
	args := m.Called(ctx, command)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

type MockOrderApprover struct{ mock.Mock }

func (m *MockOrderApprover) Handle(ctx context.Context, command commands.ApproveOrderCommand) error {
	return m.Called(ctx, command).Error(0)
}

type MockOrderRejecter struct{ mock.Mock }

func (m *MockOrderRejecter) Handle(ctx context.Context, command commands.RejectOrderCommand) error {
	return m.Called(ctx, command).Error(0)
}

type MockSubscriptionBatchCreator struct{ mock.Mock }

func (m *MockSubscriptionBatchCreator) Handle(
	ctx context.Context,
	command commands.CreateSubscriptionBatchCommand,
) (kernel.UUID, error) {
	args := m.Called(ctx, command)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

type MockItemRetrier struct{ mock.Mock }

func (m *MockItemRetrier) Handle(ctx context.Context, command commands.RetryOrderItemCommand) error {
	return m.Called(ctx, command).Error(0)
}

type MockBatchFilesDeleter struct{ mock.Mock }

func (m *MockBatchFilesDeleter) Handle(ctx context.Context, command commands.DeleteBatchFilesCommand) (int, error) {
	args := m.Called(ctx, command)
	return args.Int(0), args.Error(1)
}

type MockDownloadRegistrar struct{ mock.Mock }

func (m *MockDownloadRegistrar) Handle(ctx context.Context, command commands.RegisterFileDownloadCommand) error {
	return m.Called(ctx, command).Error(0)
}

type MockOrderStatusReader struct{ mock.Mock }

func (m *MockOrderStatusReader) Handle(
	ctx context.Context,
	query queries.GetOrderStatusQuery,
) (*queries.GetOrderStatusQueryResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.GetOrderStatusQueryResponse), args.Error(1)
}

type MockCompletedFilesReader struct{ mock.Mock }

func (m *MockCompletedFilesReader) Handle(
	ctx context.Context,
	query queries.GetCompletedFilesQuery,
) (*queries.GetCompletedFilesQueryResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queries.GetCompletedFilesQueryResponse), args.Error(1)
}
