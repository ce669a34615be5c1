package cmd

import (
	"context"
	"log/slog"

	httpadapter "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/notify"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/orchestrator"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg          Config
	gormDB       *gorm.DB
	uowFactory   *postgres.GormUnitOfWorkFactory
	settings     services.FulfillmentSettings
	processor    ports.ItemProcessor
	notifier     ports.Notifier
	clock        ports.Clock
	orchestrator *orchestrator.Orchestrator
	logger       *slog.Logger
}

// NewCompositionRoot wires the core around the given adapters. The
// orchestrator is created here but not started.
func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	processor ports.ItemProcessor,
	notifier ports.Notifier,
	settings services.FulfillmentSettings,
	logger *slog.Logger,
) *CompositionRoot {
	c := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, logger),
		settings:   settings,
		processor:  processor,
		notifier:   notifier,
		clock:      ports.SystemClock{},
		logger:     logger,
	}
	c.orchestrator = orchestrator.New(
		c.uowFactory,
		c.CreateProcessOrderItemCommandHandler(),
		c.CreateUpdateOrderStatusCommandHandler(),
		settings,
		cfg.Orchestrator(),
		logger,
	)
	return c
}

func (c *CompositionRoot) Orchestrator() *orchestrator.Orchestrator {
	return c.orchestrator
}

func (c *CompositionRoot) CreateSubmitOrderCommandHandler() commands.SubmitOrderCommandHandler {
	return commands.NewSubmitOrderCommandHandler(
		c.commandUoWFactory(), c.processor, c.settings, c.CreateApproveOrderCommandHandler(), c.clock, c.logger,
	)
}

func (c *CompositionRoot) CreateApproveOrderCommandHandler() commands.ApproveOrderCommandHandler {
	return commands.NewApproveOrderCommandHandler(c.moderationUoWFactory(), c.orchestrator, c.clock, c.logger)
}

func (c *CompositionRoot) CreateRejectOrderCommandHandler() commands.RejectOrderCommandHandler {
	return commands.NewRejectOrderCommandHandler(c.moderationUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateCreateSubscriptionBatchCommandHandler() commands.CreateSubscriptionBatchCommandHandler {
	return commands.NewCreateSubscriptionBatchCommandHandler(
		c.commandUoWFactory(), c.processor, c.settings, c.orchestrator, c.clock, c.logger,
	)
}

func (c *CompositionRoot) CreateProcessOrderItemCommandHandler() commands.ProcessOrderItemCommandHandler {
	return commands.NewProcessOrderItemCommandHandler(
		c.commandUoWFactory(), c.processor, c.settings, c.clock, c.cfg.ProcessingTimeout, c.logger,
	)
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	return commands.NewUpdateOrderStatusCommandHandler(
		c.commandUoWFactory(), c.processor, c.notifier, c.settings, c.clock, c.logger,
	)
}

func (c *CompositionRoot) CreateRetryOrderItemCommandHandler() commands.RetryOrderItemCommandHandler {
	return commands.NewRetryOrderItemCommandHandler(c.commandUoWFactory(), c.orchestrator, c.clock)
}

func (c *CompositionRoot) CreateRegisterFileDownloadCommandHandler() commands.RegisterFileDownloadCommandHandler {
	return commands.NewRegisterFileDownloadCommandHandler(c.commandUoWFactory(), c.orchestrator, c.clock)
}

func (c *CompositionRoot) CreateDeleteBatchFilesCommandHandler() commands.DeleteBatchFilesCommandHandler {
	return commands.NewDeleteBatchFilesCommandHandler(
		c.commandUoWFactory(), c.processor, c.notifier, c.settings, c.clock, c.logger,
	)
}

func (c *CompositionRoot) CreateGetOrderStatusQueryHandler() queries.GetOrderStatusQueryHandler {
	return queries.NewGetOrderStatusQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCompletedFilesQueryHandler() queries.GetCompletedFilesQueryHandler {
	return queries.NewGetCompletedFilesQueryHandler(c.uowFactory, c.clock)
}

// CreateRouter builds the HTTP control API.
func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	server := httpadapter.NewServer(httpadapter.Handlers{
		SubmitOrder:             c.CreateSubmitOrderCommandHandler(),
		ApproveOrder:            c.CreateApproveOrderCommandHandler(),
		RejectOrder:             c.CreateRejectOrderCommandHandler(),
		CreateSubscriptionBatch: c.CreateCreateSubscriptionBatchCommandHandler(),
		RetryOrderItem:          c.CreateRetryOrderItemCommandHandler(),
		DeleteBatchFiles:        c.CreateDeleteBatchFilesCommandHandler(),
		RegisterFileDownload:    c.CreateRegisterFileDownloadCommandHandler(),
		GetOrderStatus:          c.CreateGetOrderStatusQueryHandler(),
		GetCompletedFiles:       c.CreateGetCompletedFilesQueryHandler(),
	}, c.logger)
	return httpadapter.NewRouter(server, c.logger)
}

func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	return jobs.NewJobManager(c.uowFactory, c.CreateDeleteBatchFilesCommandHandler(), c.settings, c.cfg.Jobs(), c.logger)
}

func (c *CompositionRoot) commandUoWFactory() commands.UoWFactory {
	return commands.UoWFactoryFunc(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) moderationUoWFactory() commands.ModerationUoWFactory {
	return commands.ModerationUoWFactoryFunc(func() commands.ModerationUoW {
		return c.uowFactory.Create()
	})
}

// NewNotifier always logs events and also publishes them to redis when an
// address is configured. The returned close function releases the redis
// connection.
func NewNotifier(ctx context.Context, cfg notify.RedisConfig, logger *slog.Logger) (ports.Notifier, func() error, error) {
	fanout := notify.Fanout{notify.NewLogNotifier(logger)}
	if cfg.Addr == "" {
		return fanout, func() error { return nil }, nil
	}

	client, err := notify.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	fanout = append(fanout, notify.NewRedisNotifier(client, cfg.Channel, logger))
	return fanout, client.Close, nil
}
