package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrApproveOrderCommandIsNotConstructed = errors.New(
	"ApproveOrderCommand must be created via NewApproveOrderCommand constructor",
)

// ApproveOrderCommand accepts a submitted order and starts its production.
//
// Example:
//
//	cmd, err := NewApproveOrderCommand(orderID)
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
type ApproveOrderCommand struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewApproveOrderCommand creates a moderation command for one order.
func NewApproveOrderCommand(orderID kernel.UUID) (ApproveOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ApproveOrderCommand{}, err
	}

	return ApproveOrderCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ApproveOrderCommand) Validate() error {
	return c.guard.Validate(ErrApproveOrderCommandIsNotConstructed)
}

func (c ApproveOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}
