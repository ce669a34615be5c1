package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrRetryOrderItemCommandIsNotConstructed = errors.New(
	"RetryOrderItemCommand must be created via NewRetryOrderItemCommand constructor",
)

// RetryOrderItemCommand re-submits a failed order item.
type RetryOrderItemCommand struct {
	itemID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRetryOrderItemCommand(itemID kernel.UUID) (RetryOrderItemCommand, error) {
	if err := itemID.Validate(); err != nil {
		return RetryOrderItemCommand{}, err
	}

	return RetryOrderItemCommand{
		itemID: itemID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c RetryOrderItemCommand) Validate() error {
	return c.guard.Validate(ErrRetryOrderItemCommandIsNotConstructed)
}

func (c RetryOrderItemCommand) ItemID() kernel.UUID {
	return c.itemID
}
