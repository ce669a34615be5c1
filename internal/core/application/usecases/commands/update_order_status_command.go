package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrUpdateOrderStatusCommandIsNotConstructed = errors.New(
	"UpdateOrderStatusCommand must be created via NewUpdateOrderStatusCommand constructor",
)

// UpdateOrderStatusCommand recomputes a batch and its order once the batch's
// items changed.
type UpdateOrderStatusCommand struct {
	batchID kernel.UUID

	guard guard.ConstructorGuard
}

func NewUpdateOrderStatusCommand(batchID kernel.UUID) (UpdateOrderStatusCommand, error) {
	if err := batchID.Validate(); err != nil {
		return UpdateOrderStatusCommand{}, err
	}

	return UpdateOrderStatusCommand{
		batchID: batchID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderStatusCommandIsNotConstructed)
}

func (c UpdateOrderStatusCommand) BatchID() kernel.UUID {
	return c.batchID
}
