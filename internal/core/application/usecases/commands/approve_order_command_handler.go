package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// ApproveOrderCommandHandler applies the approval moderation decision.
//
// Business rules:
//   - A submitted order becomes Accepted
//   - Approving an already approved order is a no-op
//   - Approving a rejected order is a ConflictError
//   - Product, massive and tasking orders then enter production and their
//     initial batch is dispatched; a subscription only becomes Accepted and
//     waits for its timeslot batches
type ApproveOrderCommandHandler struct {
	uowFactory ModerationUoWFactory
	dispatcher ports.BatchDispatcher
	clock      ports.Clock
	logger     *slog.Logger
}

func NewApproveOrderCommandHandler(
	uowFactory ModerationUoWFactory,
	dispatcher ports.BatchDispatcher,
	clock ports.Clock,
	logger *slog.Logger,
) ApproveOrderCommandHandler {
	return ApproveOrderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		clock:      clock,
		logger:     logger.With("component", "approve_order"),
	}
}

func (h ApproveOrderCommandHandler) Handle(ctx context.Context, command ApproveOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	batchID, dispatch, err := h.approve(ctx, command.OrderID())
	if err != nil {
		return err
	}
	if !dispatch {
		return nil
	}

	h.logger.InfoContext(ctx, "order approved, dispatching initial batch",
		"order_id", command.OrderID().String(), "batch_id", batchID.String())
	return h.dispatcher.DispatchBatch(ctx, batchID)
}

// approve records the decision and returns the batch to dispatch, if any.
func (h ApproveOrderCommandHandler) approve(ctx context.Context, orderID kernel.UUID) (kernel.UUID, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	o, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		return kernel.UUID{}, false, err
	}

	changed, err := o.Approve(now)
	if err != nil || !changed {
		return kernel.UUID{}, false, err
	}

	var batchID kernel.UUID
	dispatch := o.Type() != order.SubscriptionOrder
	if dispatch {
		batches, err := uow.BatchRepository().ListByOrder(ctx, orderID)
		if err != nil {
			return kernel.UUID{}, false, err
		}
		initial, err := initialBatch(orderID, batches)
		if err != nil {
			return kernel.UUID{}, false, err
		}
		batchID = initial.ID()

		if err := o.StartProduction(now); err != nil {
			return kernel.UUID{}, false, err
		}
	}

	if err := uow.OrderRepository().Update(ctx, o); err != nil {
		return kernel.UUID{}, false, err
	}

	if err := uow.Commit(ctx); err != nil {
		return kernel.UUID{}, false, err
	}

	return batchID, dispatch, nil
}
