package http

import (
	"context"
	"log/slog"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/generated/servers"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Use cases reachable from the control API.
type (
	OrderSubmitter interface {
		Handle(ctx context.Context, command commands.SubmitOrderCommand) (kernel.UUID, error)
	}
	OrderApprover interface {
		Handle(ctx context.Context, command commands.ApproveOrderCommand) error
	}
	OrderRejecter interface {
		Handle(ctx context.Context, command commands.RejectOrderCommand) error
	}
	SubscriptionBatchCreator interface {
		Handle(ctx context.Context, command commands.CreateSubscriptionBatchCommand) (kernel.UUID, error)
	}
	ItemRetrier interface {
		Handle(ctx context.Context, command commands.RetryOrderItemCommand) error
	}
	BatchFilesDeleter interface {
		Handle(ctx context.Context, command commands.DeleteBatchFilesCommand) (int, error)
	}
	DownloadRegistrar interface {
		Handle(ctx context.Context, command commands.RegisterFileDownloadCommand) error
	}
	OrderStatusReader interface {
		Handle(ctx context.Context, query queries.GetOrderStatusQuery) (*queries.GetOrderStatusQueryResponse, error)
	}
	CompletedFilesReader interface {
		Handle(ctx context.Context, query queries.GetCompletedFilesQuery) (*queries.GetCompletedFilesQueryResponse, error)
	}
)

// Handlers groups the use cases served by the API.
type Handlers struct {
	SubmitOrder             OrderSubmitter
	ApproveOrder            OrderApprover
	RejectOrder             OrderRejecter
	CreateSubscriptionBatch SubscriptionBatchCreator
	RetryOrderItem          ItemRetrier
	DeleteBatchFiles        BatchFilesDeleter
	RegisterFileDownload    DownloadRegistrar
	GetOrderStatus          OrderStatusReader
	GetCompletedFiles       CompletedFilesReader
}

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	h      Handlers
	logger *slog.Logger
}

var _ servers.ServerInterface = (*Server)(nil)

func NewServer(handlers Handlers, logger *slog.Logger) *Server {
	return &Server{
		h:      handlers,
		logger: logger.With("component", "http"),
	}
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

// SubmitOrder handles POST /api/v1/orders - submits a new order.
func (s *Server) SubmitOrder(ctx echo.Context) error {
	var body servers.SubmitOrderJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	details, items, err := toOrder(body)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewSubmitOrderCommand(details, items)
	if err != nil {
		return s.fail(ctx, err)
	}

	id, err := s.h.SubmitOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, servers.Created{Id: id.Bytes()})
}

// GetOrderStatus handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrderStatus(ctx echo.Context, orderId openapi_types.UUID) error {
	id, err := toKernelID(orderId)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetOrderStatusQuery(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	status, err := s.h.GetOrderStatus.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, fromOrderStatus(status))
}

// ApproveOrder handles POST /api/v1/orders/{orderId}/approve.
func (s *Server) ApproveOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	id, err := toKernelID(orderId)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewApproveOrderCommand(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	if err = s.h.ApproveOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// RejectOrder handles POST /api/v1/orders/{orderId}/reject.
func (s *Server) RejectOrder(ctx echo.Context, orderId openapi_types.UUID) error {
	var body servers.RejectOrderJSONRequestBody
	if ctx.Request().ContentLength != 0 {
		if err := ctx.Bind(&body); err != nil {
			return s.badRequest(ctx, "Invalid request body")
		}
	}

	id, err := toKernelID(orderId)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewRejectOrderCommand(id, deref(body.Reason))
	if err != nil {
		return s.fail(ctx, err)
	}

	if err = s.h.RejectOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CreateSubscriptionBatch handles POST /api/v1/orders/{orderId}/batches.
func (s *Server) CreateSubscriptionBatch(ctx echo.Context, orderId openapi_types.UUID) error {
	var body servers.CreateSubscriptionBatchJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return s.badRequest(ctx, "Invalid request body")
	}

	id, err := toKernelID(orderId)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewCreateSubscriptionBatchCommand(id, body.Timeslot, body.Collections)
	if err != nil {
		return s.fail(ctx, err)
	}

	batchID, err := s.h.CreateSubscriptionBatch.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, servers.Created{Id: batchID.Bytes()})
}

// GetOrderResults handles GET /api/v1/orders/{orderId}/results.
func (s *Server) GetOrderResults(ctx echo.Context, orderId openapi_types.UUID, params servers.GetOrderResultsParams) error {
	var raw string
	if params.Behaviour != nil {
		raw = string(*params.Behaviour)
	}
	behaviour, err := queries.ParseResultBehaviour(raw)
	if err != nil {
		return s.fail(ctx, err)
	}

	id, err := toKernelID(orderId)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetCompletedFilesQuery(id, behaviour)
	if err != nil {
		return s.fail(ctx, err)
	}

	files, err := s.h.GetCompletedFiles.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, fromCompletedFiles(files))
}

// RetryOrderItem handles POST /api/v1/items/{itemId}/retry.
func (s *Server) RetryOrderItem(ctx echo.Context, itemId openapi_types.UUID) error {
	id, err := toKernelID(itemId)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewRetryOrderItemCommand(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	if err = s.h.RetryOrderItem.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusAccepted)
}

// DeleteBatchFiles handles DELETE /api/v1/batches/{batchId}/files. Only
// expired files are deleted unless expiredOnly=false.
func (s *Server) DeleteBatchFiles(ctx echo.Context, batchId openapi_types.UUID, params servers.DeleteBatchFilesParams) error {
	expiredOnly := true
	if params.ExpiredOnly != nil {
		expiredOnly = *params.ExpiredOnly
	}

	id, err := toKernelID(batchId)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewDeleteBatchFilesCommand(id, expiredOnly)
	if err != nil {
		return s.fail(ctx, err)
	}

	deleted, err := s.h.DeleteBatchFiles.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, servers.DeletedFiles{Deleted: deleted})
}

// RegisterFileDownload handles POST /api/v1/files/{fileId}/downloads.
func (s *Server) RegisterFileDownload(ctx echo.Context, fileId openapi_types.UUID) error {
	id, err := toKernelID(fileId)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewRegisterFileDownloadCommand(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	if err = s.h.RegisterFileDownload.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}
