package servers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /health)
	GetHealth(ctx echo.Context) error
	// (POST /api/v1/orders)
	SubmitOrder(ctx echo.Context) error
	// (GET /api/v1/orders/{orderId})
	GetOrderStatus(ctx echo.Context, orderId openapi_types.UUID) error
	// (POST /api/v1/orders/{orderId}/approve)
	ApproveOrder(ctx echo.Context, orderId openapi_types.UUID) error
	// (POST /api/v1/orders/{orderId}/reject)
	RejectOrder(ctx echo.Context, orderId openapi_types.UUID) error
	// (POST /api/v1/orders/{orderId}/batches)
	CreateSubscriptionBatch(ctx echo.Context, orderId openapi_types.UUID) error
	// (GET /api/v1/orders/{orderId}/results)
	GetOrderResults(ctx echo.Context, orderId openapi_types.UUID, params GetOrderResultsParams) error
	// (POST /api/v1/items/{itemId}/retry)
	RetryOrderItem(ctx echo.Context, itemId openapi_types.UUID) error
	// (DELETE /api/v1/batches/{batchId}/files)
	DeleteBatchFiles(ctx echo.Context, batchId openapi_types.UUID, params DeleteBatchFilesParams) error
	// (POST /api/v1/files/{fileId}/downloads)
	RegisterFileDownload(ctx echo.Context, fileId openapi_types.UUID) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func bindPathUUID(ctx echo.Context, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, ctx.Param(name), &id)
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return id, nil
}

// GetHealth converts echo context to params.
func (w *ServerInterfaceWrapper) GetHealth(ctx echo.Context) error {
	return w.Handler.GetHealth(ctx)
}

// SubmitOrder converts echo context to params.
func (w *ServerInterfaceWrapper) SubmitOrder(ctx echo.Context) error {
	return w.Handler.SubmitOrder(ctx)
}

// GetOrderStatus converts echo context to params.
func (w *ServerInterfaceWrapper) GetOrderStatus(ctx echo.Context) error {
	orderId, err := bindPathUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.GetOrderStatus(ctx, orderId)
}

// ApproveOrder converts echo context to params.
func (w *ServerInterfaceWrapper) ApproveOrder(ctx echo.Context) error {
	orderId, err := bindPathUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.ApproveOrder(ctx, orderId)
}

// RejectOrder converts echo context to params.
func (w *ServerInterfaceWrapper) RejectOrder(ctx echo.Context) error {
	orderId, err := bindPathUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.RejectOrder(ctx, orderId)
}

// CreateSubscriptionBatch converts echo context to params.
func (w *ServerInterfaceWrapper) CreateSubscriptionBatch(ctx echo.Context) error {
	orderId, err := bindPathUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.CreateSubscriptionBatch(ctx, orderId)
}

// GetOrderResults converts echo context to params.
func (w *ServerInterfaceWrapper) GetOrderResults(ctx echo.Context) error {
	orderId, err := bindPathUUID(ctx, "orderId")
	if err != nil {
		return err
	}

	var params GetOrderResultsParams
	err = runtime.BindQueryParameter("form", true, false, "behaviour", ctx.QueryParams(), &params.Behaviour)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter behaviour: %s", err))
	}
	return w.Handler.GetOrderResults(ctx, orderId, params)
}

// RetryOrderItem converts echo context to params.
func (w *ServerInterfaceWrapper) RetryOrderItem(ctx echo.Context) error {
	itemId, err := bindPathUUID(ctx, "itemId")
	if err != nil {
		return err
	}
	return w.Handler.RetryOrderItem(ctx, itemId)
}

// DeleteBatchFiles converts echo context to params.
func (w *ServerInterfaceWrapper) DeleteBatchFiles(ctx echo.Context) error {
	batchId, err := bindPathUUID(ctx, "batchId")
	if err != nil {
		return err
	}

	var params DeleteBatchFilesParams
	err = runtime.BindQueryParameter("form", true, false, "expiredOnly", ctx.QueryParams(), &params.ExpiredOnly)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter expiredOnly: %s", err))
	}
	return w.Handler.DeleteBatchFiles(ctx, batchId, params)
}

// RegisterFileDownload converts echo context to params.
func (w *ServerInterfaceWrapper) RegisterFileDownload(ctx echo.Context) error {
	fileId, err := bindPathUUID(ctx, "fileId")
	if err != nil {
		return err
	}
	return w.Handler.RegisterFileDownload(ctx, fileId)
}

// EchoRouter is the route registration surface shared by *echo.Echo and
// *echo.Group.
type EchoRouter interface {
	CONNECT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	HEAD(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	OPTIONS(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	TRACE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL registers handlers, and prepends BaseURL to the
// paths, so that the paths can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.GET(baseURL+"/health", wrapper.GetHealth)
	router.POST(baseURL+"/api/v1/orders", wrapper.SubmitOrder)
	router.GET(baseURL+"/api/v1/orders/:orderId", wrapper.GetOrderStatus)
	router.POST(baseURL+"/api/v1/orders/:orderId/approve", wrapper.ApproveOrder)
	router.POST(baseURL+"/api/v1/orders/:orderId/reject", wrapper.RejectOrder)
	router.POST(baseURL+"/api/v1/orders/:orderId/batches", wrapper.CreateSubscriptionBatch)
	router.GET(baseURL+"/api/v1/orders/:orderId/results", wrapper.GetOrderResults)
	router.POST(baseURL+"/api/v1/items/:itemId/retry", wrapper.RetryOrderItem)
	router.DELETE(baseURL+"/api/v1/batches/:batchId/files", wrapper.DeleteBatchFiles)
	router.POST(baseURL+"/api/v1/files/:fileId/downloads", wrapper.RegisterFileDownload)
}
