package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/file"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const operationProcessItem = "process item"

var errNoOutput = errors.New("item processor returned no output locations")

// ProcessOrderItemCommandHandler runs one item-processing job.
//
// The job moves the item in production, hands its merged options and
// delivery parameters to the item processor and records the outcome: on
// success the item completes and one file is created per output location,
// on failure the item fails with the captured error detail.
//
// A production failure is recorded first and then returned, so that the
// caller observes it. The processor call is bounded by the configured
// timeout, whose expiry is a TimeoutError failing the item like any other
// processor error.
type ProcessOrderItemCommandHandler struct {
	uowFactory UoWFactory
	processor  ports.ItemProcessor
	lifecycle  services.FileLifecycle
	resolver   services.DeliveryResolver
	clock      ports.Clock
	timeout    time.Duration
	logger     *slog.Logger
}

func NewProcessOrderItemCommandHandler(
	uowFactory UoWFactory,
	processor ports.ItemProcessor,
	settings services.FulfillmentSettings,
	clock ports.Clock,
	timeout time.Duration,
	logger *slog.Logger,
) ProcessOrderItemCommandHandler {
	return ProcessOrderItemCommandHandler{
		uowFactory: uowFactory,
		processor:  processor,
		lifecycle:  services.NewFileLifecycle(settings),
		resolver:   services.NewDeliveryResolver(),
		clock:      clock,
		timeout:    timeout,
		logger:     logger.With("component", "process_order_item"),
	}
}

type itemJob struct {
	item    *item.OrderItem
	order   *order.Order
	request ports.ProcessItemRequest
	// err is set when the job fails before reaching the processor.
	err error
}

func (h ProcessOrderItemCommandHandler) Handle(ctx context.Context, command ProcessOrderItemCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	job, err := h.start(ctx, command.ItemID())
	if err != nil {
		return err
	}

	var result ports.ProcessItemResult
	prodErr := job.err
	if prodErr == nil {
		result, prodErr = h.produce(ctx, job.request)
	}

	// The outcome is recorded even when the job's context has run out.
	if err = h.finish(context.WithoutCancel(ctx), job, result, prodErr); err != nil {
		return errors.Join(prodErr, err)
	}

	if prodErr != nil {
		h.logger.WarnContext(ctx, "order item failed",
			"item_id", job.item.ID().String(), "order_id", job.order.ID().String(), "error", prodErr)
		return prodErr
	}
	h.logger.InfoContext(ctx, "order item completed",
		"item_id", job.item.ID().String(), "order_id", job.order.ID().String(), "files", len(result.URLs))
	return nil
}

// start moves the item in production and prepares the processor request.
func (h ProcessOrderItemCommandHandler) start(ctx context.Context, itemID kernel.UUID) (itemJob, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return itemJob{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	itemRepo := uow.OrderItemRepository()
	it, err := itemRepo.Get(ctx, itemID)
	if err != nil {
		return itemJob{}, err
	}
	// Two jobs of one item must not both start it: the item is read again
	// under the batch lock.
	batch, err := uow.BatchRepository().GetForUpdate(ctx, it.BatchID())
	if err != nil {
		return itemJob{}, err
	}
	if it, err = itemRepo.GetForUpdate(ctx, itemID); err != nil {
		return itemJob{}, err
	}
	o, err := uow.OrderRepository().Get(ctx, batch.OrderID())
	if err != nil {
		return itemJob{}, err
	}

	if err = it.StartProduction(h.clock.Now()); err != nil {
		return itemJob{}, err
	}
	if err = itemRepo.Update(ctx, it); err != nil {
		return itemJob{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return itemJob{}, err
	}

	job := itemJob{item: it, order: o}
	job.request, job.err = h.buildRequest(it, o)
	return job, nil
}

func (h ProcessOrderItemCommandHandler) buildRequest(it *item.OrderItem, o *order.Order) (ports.ProcessItemRequest, error) {
	opt, err := h.resolver.Resolve(it, o)
	if err != nil {
		return ports.ProcessItemRequest{}, err
	}
	if opt.Type() != delivery.OnlineDataAccess {
		return ports.ProcessItemRequest{}, errs.NewProcessingError(
			operationProcessItem, it.ItemID(), fmt.Errorf("delivery type %s is not supported", opt.Type()),
		)
	}

	options := it.ExportOptions(o.Details().Options)
	maps.Copy(options, opt.Parameters())

	return ports.ProcessItemRequest{
		Identifier: it.Identifier(),
		ItemID:     it.ItemID(),
		OrderID:    o.ID().String(),
		UserName:   o.UserName(),
		Packaging:  o.Packaging(),
		Options:    options,
	}, nil
}

type production struct {
	result ports.ProcessItemResult
	err    error
}

// produce calls the item processor. The call runs apart from the job so
// that a processor ignoring its context cannot hold the job past the
// timeout; a late result is dropped.
func (h ProcessOrderItemCommandHandler) produce(ctx context.Context, req ports.ProcessItemRequest) (ports.ProcessItemResult, error) {
	procCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		procCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	done := make(chan production, 1)
	go func() {
		result, err := h.processor.ProcessItemOnlineAccess(procCtx, req)
		done <- production{result: result, err: err}
	}()

	var out production
	select {
	case out = <-done:
	case <-procCtx.Done():
		out.err = procCtx.Err()
	}

	switch {
	case errors.Is(procCtx.Err(), context.DeadlineExceeded):
		return ports.ProcessItemResult{}, errs.NewTimeoutError(operationProcessItem, req.ItemID, h.timeout)
	case out.err != nil:
		return ports.ProcessItemResult{}, errs.NewProcessingError(operationProcessItem, req.ItemID, out.err)
	case len(out.result.URLs) == 0:
		return ports.ProcessItemResult{}, errs.NewProcessingError(operationProcessItem, req.ItemID, errNoOutput)
	}
	return out.result, nil
}

// finish records the job's outcome on the item.
func (h ProcessOrderItemCommandHandler) finish(
	ctx context.Context,
	job itemJob,
	result ports.ProcessItemResult,
	prodErr error,
) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	it, err := uow.OrderItemRepository().GetForUpdate(ctx, job.item.ID())
	if err != nil {
		return err
	}

	now := h.clock.Now()
	if prodErr != nil {
		if err = it.Fail(prodErr.Error(), now); err != nil {
			return err
		}
	} else {
		expiresOn := h.lifecycle.ComputeExpiry(job.order.Type(), now)
		if err = it.Complete(result.URLs[0], result.Details, expiresOn, now); err != nil {
			return err
		}

		files := make([]*file.File, 0, len(result.URLs))
		for _, url := range result.URLs {
			f, err := file.NewItemFile(kernel.NewUUID(), it.BatchID(), it.ID(), url, expiresOn, now)
			if err != nil {
				return err
			}
			files = append(files, f)
		}
		if err = uow.FileRepository().Add(ctx, files...); err != nil {
			return err
		}
	}

	if err = uow.OrderItemRepository().Update(ctx, it); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
