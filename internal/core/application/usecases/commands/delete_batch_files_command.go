package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrDeleteBatchFilesCommandIsNotConstructed = errors.New(
	"DeleteBatchFilesCommand must be created via NewDeleteBatchFilesCommand constructor",
)

// DeleteBatchFilesCommand removes the files of one batch from storage. In
// expired-only mode only deletable files are removed, otherwise every
// available file is.
type DeleteBatchFilesCommand struct {
	batchID     kernel.UUID
	expiredOnly bool

	guard guard.ConstructorGuard
}

func NewDeleteBatchFilesCommand(batchID kernel.UUID, expiredOnly bool) (DeleteBatchFilesCommand, error) {
	if err := batchID.Validate(); err != nil {
		return DeleteBatchFilesCommand{}, err
	}

	return DeleteBatchFilesCommand{
		batchID:     batchID,
		expiredOnly: expiredOnly,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c DeleteBatchFilesCommand) Validate() error {
	return c.guard.Validate(ErrDeleteBatchFilesCommandIsNotConstructed)
}

func (c DeleteBatchFilesCommand) BatchID() kernel.UUID {
	return c.batchID
}

func (c DeleteBatchFilesCommand) ExpiredOnly() bool {
	return c.expiredOnly
}
