package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/pgtest"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite verifies order persistence against a
// real PostgreSQL database.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	container, db, err := pgtest.Start(context.Background())
	suite.container = container
	suite.Require().NoError(err)
	suite.db = db
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(pgtest.Truncate).Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ValidOrder_RoundTrips() {
	ctx := context.Background()
	testOrder := suite.createTestOrder(order.ProductOrder)
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()

	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	got, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(testOrder.ID(), got.ID())
	suite.Equal(order.ProductOrder, got.Type())
	suite.Equal("alice", got.UserName())
	suite.Equal(order.PackagingZip, got.Packaging())
	suite.Equal(order.NotifyFinal, got.Details().StatusNotification)
	suite.True(got.DeleteDownloadedFiles())
	suite.Equal(map[string]string{"format": "GeoTIFF"}, got.Details().Options)
	suite.Equal(kernel.Submitted, got.Status())
	suite.WithinDuration(now, got.State().StatusChangedOn, time.Second)

	opt, ok := got.DeliveryOption()
	suite.Require().True(ok)
	suite.Equal(delivery.OnlineDataAccess, opt.Type())
	suite.Equal("https", opt.Protocol())
	suite.Equal(2, opt.Extras().Copies)
	suite.Equal("rush", opt.Extras().Annotation)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_NotConstructedOrder_ReturnsError() {
	err := suite.repository.Add(context.Background(), nil)

	suite.Require().ErrorIs(err, order.ErrOrderIsNotConstructed)
	suite.tracker.AssertNotCalled(suite.T(), "TrackAggregate", mock.Anything, mock.Anything)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_PersistsClearedColumns() {
	ctx := context.Background()
	testOrder := suite.createTestOrder(order.ProductOrder)
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder)
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	_, err := testOrder.Approve(now)
	suite.Require().NoError(err)
	suite.Require().NoError(testOrder.StartProduction(now))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	stored, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(kernel.InProduction, stored.Status())
	suite.Equal(order.InfoBeingProcessed, stored.AdditionalStatusInfo())

	changed, err := testOrder.ApplyRollup(kernel.Completed, nil, now.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Require().True(changed)
	testOrder.AdvanceResultAccess(now.Add(2 * time.Hour))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	stored, err = suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(kernel.Completed, stored.Status())
	suite.Empty(stored.AdditionalStatusInfo())
	suite.Require().NotNil(stored.CompletedOn())
	suite.WithinDuration(now.Add(time.Hour), *stored.CompletedOn(), time.Second)
	suite.Require().NotNil(stored.LastDescribeResultAccess())
	suite.WithinDuration(now.Add(2*time.Hour), *stored.LastDescribeResultAccess(), time.Second)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_MissingOrder_ReturnsNotFound() {
	err := suite.repository.Update(context.Background(), suite.createTestOrder(order.ProductOrder))

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_MissingOrder_ReturnsNotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	_, err = suite.repository.GetForUpdate(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestFindByStatusAndType_FiltersOnBoth() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	failedProduct := suite.createTestOrder(order.ProductOrder)
	failedProduct.Fail("boom", now)
	failedTasking := suite.createTestOrder(order.TaskingOrder)
	failedTasking.Fail("boom", now)
	pendingProduct := suite.createTestOrder(order.ProductOrder)

	for _, o := range []*order.Order{failedProduct, failedTasking, pendingProduct} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}

	found, err := suite.repository.FindByStatusAndType(ctx, kernel.Failed, order.ProductOrder)

	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.Equal(failedProduct.ID(), found[0].ID())
	suite.Equal("boom", found[0].AdditionalStatusInfo())
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder(orderType order.Type) *order.Order {
	opt, err := delivery.NewOnlineDataAccess("https", delivery.Extras{Copies: 2, Annotation: "rush"})
	suite.Require().NoError(err)

	o, err := order.NewOrder(kernel.NewUUID(), order.Details{
		Type:                  orderType,
		UserName:              "alice",
		Packaging:             order.PackagingZip,
		StatusNotification:    order.NotifyFinal,
		DeleteDownloadedFiles: true,
		Options:               map[string]string{"format": "GeoTIFF"},
		Delivery:              &opt,
	}, now)
	suite.Require().NoError(err)
	return o
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
