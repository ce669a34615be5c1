package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrProcessOrderItemCommandIsNotConstructed = errors.New(
	"ProcessOrderItemCommand must be created via NewProcessOrderItemCommand constructor",
)

// ProcessOrderItemCommand is one item-processing job.
type ProcessOrderItemCommand struct {
	itemID kernel.UUID

	guard guard.ConstructorGuard
}

func NewProcessOrderItemCommand(itemID kernel.UUID) (ProcessOrderItemCommand, error) {
	if err := itemID.Validate(); err != nil {
		return ProcessOrderItemCommand{}, err
	}

	return ProcessOrderItemCommand{
		itemID: itemID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c ProcessOrderItemCommand) Validate() error {
	return c.guard.Validate(ErrProcessOrderItemCommandIsNotConstructed)
}

func (c ProcessOrderItemCommand) ItemID() kernel.UUID {
	return c.itemID
}
