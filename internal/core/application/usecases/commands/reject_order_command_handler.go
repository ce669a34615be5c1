package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

// RejectOrderCommandHandler applies the rejection moderation decision.
// Rejecting twice is a no-op; rejecting an approved order is a ConflictError.
type RejectOrderCommandHandler struct {
	uowFactory ModerationUoWFactory
	clock      ports.Clock
}

func NewRejectOrderCommandHandler(uowFactory ModerationUoWFactory, clock ports.Clock) RejectOrderCommandHandler {
	return RejectOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (h RejectOrderCommandHandler) Handle(ctx context.Context, command RejectOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, command.OrderID())
	if err != nil {
		return err
	}

	changed, err := o.Reject(command.Reason(), h.clock.Now())
	if err != nil || !changed {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
