package postgres_test

import (
	"context"
	"sync"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/core/ports/portstest"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
)

const concurrentWriters = 8

func (suite *UnitOfWorkIntegrationTestSuite) commandFactory() commands.UoWFactory {
	return commands.UoWFactoryFunc(func() commands.UoW { return suite.factory.Create() })
}

// runTogether starts fn on every writer at once and collects the results.
func runTogether(n int, fn func() error) []error {
	var (
		start sync.WaitGroup
		done  sync.WaitGroup
	)
	results := make([]error, n)
	start.Add(1)
	for i := range n {
		done.Add(1)
		go func() {
			defer done.Done()
			start.Wait()
			results[i] = fn()
		}()
	}
	start.Done()
	done.Wait()
	return results
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRetryOrderItem_ConcurrentRetriesDispatchOnce() {
	ctx := context.Background()
	o, b, items := suite.newOrder("sentinel2")
	suite.store(o, b, items...)
	it := items[0]
	suite.Require().NoError(it.StartProduction(now))
	suite.Require().NoError(it.Fail("transient", now))
	suite.Require().NoError(suite.factory.Create().OrderItemRepository().Update(ctx, it))

	dispatcher := new(portstest.MockBatchDispatcher)
	dispatcher.On("DispatchItems", mock.Anything, b.ID(), []kernel.UUID{it.ID()}).Return(nil)
	handler := commands.NewRetryOrderItemCommandHandler(suite.commandFactory(), dispatcher, ports.SystemClock{})
	cmd, err := commands.NewRetryOrderItemCommand(it.ID())
	suite.Require().NoError(err)

	results := runTogether(concurrentWriters, func() error { return handler.Handle(ctx, cmd) })

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		suite.Require().ErrorIs(err, errs.ErrValueIsInvalid)
	}
	suite.Equal(1, succeeded)
	dispatcher.AssertNumberOfCalls(suite.T(), "DispatchItems", 1)

	stored, err := suite.factory.Create().OrderItemRepository().Get(ctx, it.ID())
	suite.Require().NoError(err)
	suite.Equal(kernel.Submitted, stored.Status())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRegisterFileDownload_ConcurrentDownloadsAreAllCounted() {
	ctx := context.Background()
	o, b, items := suite.newOrder("sentinel2")
	suite.store(o, b, items...)
	it := items[0]
	suite.Require().NoError(it.StartProduction(now))
	suite.Require().NoError(it.Complete("https://files/a.tif", "", now.Add(48*time.Hour), now))
	suite.Require().NoError(suite.factory.Create().OrderItemRepository().Update(ctx, it))
	f := suite.newItemFile(b, it, "https://files/a.tif")
	suite.Require().NoError(suite.factory.Create().FileRepository().Add(ctx, f))

	dispatcher := new(portstest.MockBatchDispatcher)
	dispatcher.On("RecomputeBatch", mock.Anything, b.ID()).Return(nil)
	handler := commands.NewRegisterFileDownloadCommandHandler(suite.commandFactory(), dispatcher, ports.SystemClock{})
	cmd, err := commands.NewRegisterFileDownloadCommand(f.ID())
	suite.Require().NoError(err)

	for _, err := range runTogether(concurrentWriters, func() error { return handler.Handle(ctx, cmd) }) {
		suite.Require().NoError(err)
	}

	reader := suite.factory.Create()
	storedFile, err := reader.FileRepository().Get(ctx, f.ID())
	suite.Require().NoError(err)
	suite.Equal(concurrentWriters, storedFile.Downloads())

	storedItem, err := reader.OrderItemRepository().Get(ctx, it.ID())
	suite.Require().NoError(err)
	suite.Equal(kernel.Downloaded, storedItem.Status())
	suite.Equal(concurrentWriters, storedItem.State().Downloads)
	dispatcher.AssertNumberOfCalls(suite.T(), "RecomputeBatch", 1)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOrderItemRepository_GetForUpdateSerializesWriters() {
	ctx := context.Background()
	o, b, items := suite.newOrder("sentinel2")
	suite.store(o, b, items...)

	holder := suite.factory.Create()
	suite.Require().NoError(holder.Begin(ctx))
	locked, err := holder.OrderItemRepository().GetForUpdate(ctx, items[0].ID())
	suite.Require().NoError(err)

	seen := make(chan kernel.Status, 1)
	go func() {
		waiter := suite.factory.Create()
		if err := waiter.Begin(ctx); err != nil {
			seen <- kernel.Unknown
			return
		}
		defer func() { _ = waiter.Rollback(ctx) }()
		got, err := waiter.OrderItemRepository().GetForUpdate(ctx, items[0].ID())
		if err != nil {
			seen <- kernel.Unknown
			return
		}
		seen <- got.Status()
	}()

	select {
	case <-seen:
		suite.Fail("second reader must wait for the lock")
	case <-time.After(200 * time.Millisecond):
	}

	suite.Require().NoError(locked.StartProduction(now))
	suite.Require().NoError(holder.OrderItemRepository().Update(ctx, locked))
	suite.Require().NoError(holder.Commit(ctx))

	select {
	case status := <-seen:
		suite.Equal(kernel.InProduction, status)
	case <-time.After(10 * time.Second):
		suite.Fail("second reader never acquired the lock")
	}
}
