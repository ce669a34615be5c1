package queries_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	postgres_adapter "fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/pgtest"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

type GetOrderStatusQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
	handler   queries.GetOrderStatusQueryHandler
}

func (suite *GetOrderStatusQueryHandlerTestSuite) SetupSuite() {
	container, db, err := pgtest.Start(context.Background())
	suite.container = container
	suite.Require().NoError(err)
	suite.db = db
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db, slog.New(slog.DiscardHandler))
	suite.handler = queries.NewGetOrderStatusQueryHandler(db)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetOrderStatusQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(pgtest.Truncate).Error)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_ReturnsBatchesAndItemsInOrder() {
	ctx := context.Background()
	o := suite.newOrder(order.SubscriptionOrder)
	initial, err := order.NewBatch(kernel.NewUUID(), o.ID(), order.InitialBatch, nil, now)
	suite.Require().NoError(err)
	timeslot := now.Add(24 * time.Hour)
	delivered, err := order.NewBatch(kernel.NewUUID(), o.ID(), order.TimeslotBatch, &timeslot, now.Add(time.Hour))
	suite.Require().NoError(err)

	template := suite.newItem(initial, "a", "")
	first := suite.newItem(delivered, "a-1", "S2_1")
	second := suite.newItem(delivered, "a-2", "S2_2")
	suite.Require().NoError(first.StartProduction(now))
	suite.Require().NoError(first.Fail("no data", now))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.BatchRepository().Add(ctx, initial))
	suite.Require().NoError(uow.BatchRepository().Add(ctx, delivered))
	suite.Require().NoError(uow.OrderItemRepository().Add(ctx, template))
	suite.Require().NoError(uow.OrderItemRepository().Add(ctx, first, second))
	suite.Require().NoError(uow.Commit(ctx))

	query, err := queries.NewGetOrderStatusQuery(o.ID())
	suite.Require().NoError(err)

	resp, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Equal(o.ID(), resp.ID)
	suite.Equal(string(order.SubscriptionOrder), resp.Type)
	suite.Equal(kernel.Submitted.String(), resp.Status)
	suite.Require().Len(resp.Batches, 2)

	suite.Equal(initial.ID(), resp.Batches[0].ID)
	suite.Equal(string(order.InitialBatch), resp.Batches[0].Kind)
	suite.Nil(resp.Batches[0].Timeslot)
	suite.Require().Len(resp.Batches[0].Items, 1)
	suite.Equal(template.ID(), resp.Batches[0].Items[0].ID)

	suite.Equal(string(order.TimeslotBatch), resp.Batches[1].Kind)
	suite.Require().NotNil(resp.Batches[1].Timeslot)
	suite.WithinDuration(timeslot, *resp.Batches[1].Timeslot, time.Second)
	suite.Require().Len(resp.Batches[1].Items, 2)
	suite.Equal("a-1", resp.Batches[1].Items[0].ItemID)
	suite.Equal(kernel.Failed.String(), resp.Batches[1].Items[0].Status)
	suite.Equal("no data", resp.Batches[1].Items[0].AdditionalStatusInfo)
	suite.Equal("a-2", resp.Batches[1].Items[1].ItemID)
	suite.Equal(kernel.Submitted.String(), resp.Batches[1].Items[1].Status)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_BatchWithoutItems() {
	ctx := context.Background()
	o := suite.newOrder(order.ProductOrder)
	b, err := order.NewBatch(kernel.NewUUID(), o.ID(), order.InitialBatch, nil, now)
	suite.Require().NoError(err)

	repo := suite.factory.Create()
	suite.Require().NoError(repo.OrderRepository().Add(ctx, o))
	suite.Require().NoError(repo.BatchRepository().Add(ctx, b))

	query, err := queries.NewGetOrderStatusQuery(o.ID())
	suite.Require().NoError(err)

	resp, err := suite.handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(resp.Batches, 1)
	suite.Empty(resp.Batches[0].Items)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_UnknownOrder_ReturnsNotFound() {
	query, err := queries.NewGetOrderStatusQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	resp, err := suite.handler.Handle(context.Background(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.Nil(resp)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	resp, err := suite.handler.Handle(context.Background(), queries.GetOrderStatusQuery{})

	suite.Require().ErrorIs(err, queries.ErrGetOrderStatusQueryIsNotConstructed)
	suite.Nil(resp)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_ContextCancellation_ReturnsError() {
	query, err := queries.NewGetOrderStatusQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := suite.handler.Handle(ctx, query)

	suite.Require().Error(err)
	suite.Nil(resp)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) newOrder(orderType order.Type) *order.Order {
	o, err := order.NewOrder(kernel.NewUUID(), order.Details{
		Type:     orderType,
		UserName: "alice",
	}, now)
	suite.Require().NoError(err)
	return o
}

func (suite *GetOrderStatusQueryHandlerTestSuite) newItem(b *order.Batch, itemID, identifier string) *item.OrderItem {
	it, err := item.NewOrderItem(kernel.NewUUID(), b.ID(), item.Request{
		ItemID:     itemID,
		Identifier: identifier,
		Collection: "sentinel2",
	}, now)
	suite.Require().NoError(err)
	return it
}

func TestGetOrderStatusQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetOrderStatusQueryHandlerTestSuite))
}
