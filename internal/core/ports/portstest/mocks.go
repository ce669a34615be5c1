package portstest

import (
	"context"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockItemProcessor struct{ mock.Mock }

func (m *MockItemProcessor) ProcessItemOnlineAccess(
	ctx context.Context,
	req ports.ProcessItemRequest,
) (ports.ProcessItemResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.ProcessItemResult), args.Error(1)
}

func (m *MockItemProcessor) PackageFiles(
	ctx context.Context,
	packaging order.Packaging,
	domain string,
	fileURLs []string,
) (string, error) {
	args := m.Called(ctx, packaging, domain, fileURLs)
	return args.String(0), args.Error(1)
}

func (m *MockItemProcessor) CleanFiles(ctx context.Context, fileURLs []string) error {
	args := m.Called(ctx, fileURLs)
	return args.Error(0)
}

func (m *MockItemProcessor) GetSubscriptionBatchIdentifiers(
	ctx context.Context,
	timeslot time.Time,
	collection string,
) ([]string, error) {
	args := m.Called(ctx, timeslot, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockItemProcessor) ParseOption(name, value string) (string, error) {
	args := m.Called(name, value)
	return args.String(0), args.Error(1)
}

// RecordingNotifier keeps every event it is handed.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []ports.Event
	Err    error
}

func (n *RecordingNotifier) Notify(_ context.Context, event ports.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.Err
}

// Events returns the recorded events, oldest first.
func (n *RecordingNotifier) Events() []ports.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ports.Event(nil), n.events...)
}

// Kinds returns the kinds of the recorded events, oldest first.
func (n *RecordingNotifier) Kinds() []ports.EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]ports.EventKind, 0, len(n.events))
	for _, e := range n.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type MockBatchDispatcher struct{ mock.Mock }

func (m *MockBatchDispatcher) DispatchBatch(ctx context.Context, batchID kernel.UUID) error {
	args := m.Called(ctx, batchID)
	return args.Error(0)
}

func (m *MockBatchDispatcher) DispatchItems(ctx context.Context, batchID kernel.UUID, itemIDs []kernel.UUID) error {
	args := m.Called(ctx, batchID, itemIDs)
	return args.Error(0)
}

func (m *MockBatchDispatcher) RecomputeBatch(ctx context.Context, batchID kernel.UUID) error {
	args := m.Called(ctx, batchID)
	return args.Error(0)
}
