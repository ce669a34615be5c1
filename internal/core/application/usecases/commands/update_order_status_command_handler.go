package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/file"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const operationPackageFiles = "package files"

// UpdateOrderStatusResult reports the statuses after a recomputation and
// whether the order's change was announced.
type UpdateOrderStatusResult struct {
	BatchStatus kernel.Status
	OrderStatus kernel.Status
	Notified    bool
}

// UpdateOrderStatusCommandHandler is the fan-in step of the production
// pipeline. It must not run concurrently for the same batch; the batch and
// order rows are read for update so that the recomputation is never based
// on stale statuses.
//
// Business rules:
//   - The batch status is the rollup of its items' statuses
//   - The order status is the rollup of its batches' statuses, leaving out
//     the template batch of a subscription; moderation-cancelled orders are
//     not rolled up
//   - A completed batch of a zip order is packaged once: its per-item files
//     are replaced by one package shared by every item
//   - Packaging failure fails the order, is recorded on the batch and is
//     returned as a ProcessingError; the batch is not packaged again and
//     later recomputations leave the order failed
//   - A completed order is announced with OrderCompleted, a failed one with
//     OrderFailed carrying the aggregated failure report; recomputing without
//     any change announces nothing
type UpdateOrderStatusCommandHandler struct {
	uowFactory UoWFactory
	processor  ports.ItemProcessor
	notifier   ports.Notifier
	settings   services.FulfillmentSettings
	lifecycle  services.FileLifecycle
	clock      ports.Clock
	logger     *slog.Logger
}

func NewUpdateOrderStatusCommandHandler(
	uowFactory UoWFactory,
	processor ports.ItemProcessor,
	notifier ports.Notifier,
	settings services.FulfillmentSettings,
	clock ports.Clock,
	logger *slog.Logger,
) UpdateOrderStatusCommandHandler {
	return UpdateOrderStatusCommandHandler{
		uowFactory: uowFactory,
		processor:  processor,
		notifier:   notifier,
		settings:   settings,
		lifecycle:  services.NewFileLifecycle(settings),
		clock:      clock,
		logger:     logger.With("component", "update_order_status"),
	}
}

// recomputation holds what one fan-in decided, for the notifications sent
// after commit.
type recomputation struct {
	order        *order.Order
	batch        *order.Batch
	batchReady   bool
	orderChanged bool
	packageErr   error
	urls         []string
}

func (h UpdateOrderStatusCommandHandler) Handle(
	ctx context.Context,
	command UpdateOrderStatusCommand,
) (UpdateOrderStatusResult, error) {
	if err := command.Validate(); err != nil {
		return UpdateOrderStatusResult{}, err
	}

	rc, err := h.recompute(ctx, command.BatchID())
	if err != nil {
		return UpdateOrderStatusResult{}, err
	}

	h.announce(ctx, rc)

	result := UpdateOrderStatusResult{
		BatchStatus: rc.batch.Status(),
		OrderStatus: rc.order.Status(),
		Notified:    rc.orderChanged,
	}
	return result, rc.packageErr
}

func (h UpdateOrderStatusCommandHandler) recompute(ctx context.Context, batchID kernel.UUID) (recomputation, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return recomputation{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	batch, err := uow.BatchRepository().GetForUpdate(ctx, batchID)
	if err != nil {
		return recomputation{}, err
	}
	o, err := uow.OrderRepository().GetForUpdate(ctx, batch.OrderID())
	if err != nil {
		return recomputation{}, err
	}
	items, err := uow.OrderItemRepository().ListByBatch(ctx, batchID)
	if err != nil {
		return recomputation{}, err
	}

	rc := recomputation{order: o, batch: batch}

	batchChanged := false
	if status, ok := kernel.Rollup(itemStatuses(items)); ok {
		if batchChanged, err = batch.ApplyRollup(status, now); err != nil {
			return recomputation{}, err
		}
	}
	rc.batchReady = batchChanged && batch.Status() == kernel.Completed

	if batch.Status() == kernel.Completed && o.Packaging() == order.PackagingZip && !batch.PackagingFailed() {
		if err = h.packageBatch(ctx, uow, o, batch, items, now); err != nil {
			var processingErr *errs.ProcessingError
			if !errors.As(err, &processingErr) {
				return recomputation{}, err
			}
			rc.packageErr = err
			if batch.MarkPackagingFailed(now) {
				batchChanged = true
			}
		}
	}
	if batchChanged {
		if err = uow.BatchRepository().Update(ctx, batch); err != nil {
			return recomputation{}, err
		}
	}

	switch {
	case rc.packageErr != nil:
		rc.batchReady = false
		rc.orderChanged = o.Fail(rc.packageErr.Error(), now)
	case batch.PackagingFailed():
		// The order keeps the failure recorded when packaging failed.
	case o.Status() == kernel.Cancelled || o.Status() == kernel.Terminated:
	default:
		if rc.orderChanged, err = h.rollupOrder(ctx, uow, o, batch, items, now); err != nil {
			return recomputation{}, err
		}
	}
	if rc.orderChanged {
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return recomputation{}, err
		}
	}

	if rc.batchReady || (rc.orderChanged && o.Status() == kernel.Completed) {
		files, err := uow.FileRepository().ListByBatch(ctx, batchID)
		if err != nil {
			return recomputation{}, err
		}
		rc.urls = services.UniqueURLs(availableFiles(files))
	}

	if err = uow.Commit(ctx); err != nil {
		return recomputation{}, err
	}
	return rc, nil
}

// rollupOrder recomputes the order from its batches. The batch under
// recomputation is taken from memory, since its update is not committed yet.
// A batch that could not be packaged counts as failed.
func (h UpdateOrderStatusCommandHandler) rollupOrder(
	ctx context.Context,
	uow UoW,
	o *order.Order,
	batch *order.Batch,
	batchItems []*item.OrderItem,
	now time.Time,
) (bool, error) {
	batches, err := uow.BatchRepository().ListByOrder(ctx, o.ID())
	if err != nil {
		return false, err
	}

	var (
		statuses []kernel.Status
		failures []order.ItemFailure
	)
	for _, b := range rolledUpBatches(o, batches) {
		items := batchItems
		if b.ID().IsEqual(batch.ID()) {
			b = batch
		} else if b.Status() == kernel.Failed {
			if items, err = uow.OrderItemRepository().ListByBatch(ctx, b.ID()); err != nil {
				return false, err
			}
		} else {
			items = nil
		}
		status := b.Status()
		if b.PackagingFailed() {
			status = kernel.Failed
		}
		statuses = append(statuses, status)
		failures = append(failures, itemFailures(items)...)
	}

	status, ok := kernel.Rollup(statuses)
	if !ok {
		return false, nil
	}
	return o.ApplyRollup(status, failures, now)
}

// packageBatch replaces the per-item files of a completed batch with one
// package. A failure of the item processor is returned as a ProcessingError.
func (h UpdateOrderStatusCommandHandler) packageBatch(
	ctx context.Context,
	uow UoW,
	o *order.Order,
	batch *order.Batch,
	items []*item.OrderItem,
	now time.Time,
) error {
	fileRepo := uow.FileRepository()
	files, err := fileRepo.ListByBatch(ctx, batch.ID())
	if err != nil {
		return err
	}

	var perItem []*file.File
	for _, f := range files {
		if f.IsPackage() {
			return nil
		}
		if f.Available() {
			perItem = append(perItem, f)
		}
	}
	if len(perItem) == 0 {
		return nil
	}

	url, err := h.processor.PackageFiles(ctx, order.PackagingZip, h.settings.SiteDomain(), services.UniqueURLs(perItem))
	if err != nil {
		return errs.NewProcessingError(operationPackageFiles, batch.ID().String(), err)
	}

	expiresOn := h.lifecycle.ComputeExpiry(o.Type(), now)
	itemIDs := make([]kernel.UUID, 0, len(items))
	for _, it := range items {
		itemIDs = append(itemIDs, it.ID())
	}
	pkg, err := file.NewPackage(kernel.NewUUID(), batch.ID(), itemIDs, url, expiresOn, now)
	if err != nil {
		return err
	}

	ids := make([]kernel.UUID, 0, len(perItem))
	for _, f := range perItem {
		ids = append(ids, f.ID())
	}
	if err = fileRepo.Delete(ctx, ids...); err != nil {
		return err
	}
	if err = fileRepo.Add(ctx, pkg); err != nil {
		return err
	}

	itemRepo := uow.OrderItemRepository()
	for _, it := range items {
		it.Relocate(url, expiresOn)
		if err = itemRepo.Update(ctx, it); err != nil {
			return err
		}
	}

	h.logger.InfoContext(ctx, "batch packaged",
		"batch_id", batch.ID().String(), "files", len(perItem), "url", url)
	return nil
}

// announce fires the notifications of a recomputation. Delivery failures are
// logged and never undo the committed transition.
func (h UpdateOrderStatusCommandHandler) announce(ctx context.Context, rc recomputation) {
	o := rc.order
	base := ports.Event{
		OrderID:    o.ID().String(),
		BatchID:    rc.batch.ID().String(),
		UserName:   o.UserName(),
		OrderType:  o.Type().String(),
		OccurredAt: h.clock.Now(),
		Attributes: map[string]string{
			"status_notification": string(o.Details().StatusNotification),
		},
	}

	if rc.packageErr != nil {
		alert := base
		alert.Kind = ports.BatchPackagingFailed
		alert.Message = rc.packageErr.Error()
		h.notify(ctx, alert)
	}

	if rc.batchReady && (rc.batch.Kind() == order.TimeslotBatch || h.settings.ForType(o.Type()).NotifyBatchReady) {
		ready := base
		ready.Kind = ports.BatchReady
		ready.URLs = rc.urls
		h.notify(ctx, ready)
	}

	if !rc.orderChanged {
		return
	}
	switch o.Status() { //nolint:exhaustive // only final outcomes are announced
	case kernel.Completed:
		done := base
		done.Kind = ports.OrderCompleted
		done.URLs = rc.urls
		h.notify(ctx, done)
	case kernel.Failed:
		failed := base
		failed.Kind = ports.OrderFailed
		failed.Message = o.AdditionalStatusInfo()
		h.notify(ctx, failed)
	}
}

func (h UpdateOrderStatusCommandHandler) notify(ctx context.Context, event ports.Event) {
	if err := h.notifier.Notify(ctx, event); err != nil {
		h.logger.ErrorContext(ctx, "notification failed",
			"kind", string(event.Kind), "order_id", event.OrderID, "error", err)
	}
}

func itemStatuses(items []*item.OrderItem) []kernel.Status {
	statuses := make([]kernel.Status, 0, len(items))
	for _, it := range items {
		statuses = append(statuses, it.Status())
	}
	return statuses
}

func itemFailures(items []*item.OrderItem) []order.ItemFailure {
	var failures []order.ItemFailure
	for _, it := range items {
		if it.Status() == kernel.Failed {
			failures = append(failures, order.ItemFailure{ItemID: it.ID(), Info: it.AdditionalStatusInfo()})
		}
	}
	return failures
}

func availableFiles(files []*file.File) []*file.File {
	out := make([]*file.File, 0, len(files))
	for _, f := range files {
		if f.Available() {
			out = append(out, f)
		}
	}
	return out
}
