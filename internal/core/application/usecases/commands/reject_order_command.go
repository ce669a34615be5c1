package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrRejectOrderCommandIsNotConstructed = errors.New(
	"RejectOrderCommand must be created via NewRejectOrderCommand constructor",
)

// RejectOrderCommand cancels a submitted order with the moderator's reason.
type RejectOrderCommand struct {
	orderID kernel.UUID
	reason  string

	guard guard.ConstructorGuard
}

// NewRejectOrderCommand creates a rejection. The reason may be empty.
func NewRejectOrderCommand(orderID kernel.UUID, reason string) (RejectOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RejectOrderCommand{}, err
	}

	return RejectOrderCommand{
		orderID: orderID,
		reason:  reason,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c RejectOrderCommand) Validate() error {
	return c.guard.Validate(ErrRejectOrderCommandIsNotConstructed)
}

func (c RejectOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c RejectOrderCommand) Reason() string {
	return c.reason
}
