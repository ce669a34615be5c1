package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
)

// RetryOrderItemCommandHandler moves a failed item back to Submitted and
// dispatches it alone. The fan-in that follows its job recomputes the batch
// and the order, which may then leave Failed.
type RetryOrderItemCommandHandler struct {
	uowFactory UoWFactory
	dispatcher ports.BatchDispatcher
	clock      ports.Clock
}

func NewRetryOrderItemCommandHandler(
	uowFactory UoWFactory,
	dispatcher ports.BatchDispatcher,
	clock ports.Clock,
) RetryOrderItemCommandHandler {
	return RetryOrderItemCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

func (h RetryOrderItemCommandHandler) Handle(ctx context.Context, command RetryOrderItemCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	batchID, err := h.retry(ctx, command.ItemID())
	if err != nil {
		return err
	}

	return h.dispatcher.DispatchItems(ctx, batchID, []kernel.UUID{command.ItemID()})
}

func (h RetryOrderItemCommandHandler) retry(ctx context.Context, itemID kernel.UUID) (kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	itemRepo := uow.OrderItemRepository()
	it, err := itemRepo.Get(ctx, itemID)
	if err != nil {
		return kernel.UUID{}, err
	}
	// Locks the batch against a concurrent fan-in, then reads the item again
	// so that a concurrent retry already committed is seen.
	if _, err = uow.BatchRepository().GetForUpdate(ctx, it.BatchID()); err != nil {
		return kernel.UUID{}, err
	}
	if it, err = itemRepo.GetForUpdate(ctx, itemID); err != nil {
		return kernel.UUID{}, err
	}

	if err = it.Retry(h.clock.Now()); err != nil {
		return kernel.UUID{}, err
	}
	if err = itemRepo.Update(ctx, it); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}
	return it.BatchID(), nil
}
