package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrRegisterFileDownloadCommandIsNotConstructed = errors.New(
	"RegisterFileDownloadCommand must be created via NewRegisterFileDownloadCommand constructor",
)

// RegisterFileDownloadCommand counts one download of a produced file.
type RegisterFileDownloadCommand struct {
	fileID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRegisterFileDownloadCommand(fileID kernel.UUID) (RegisterFileDownloadCommand, error) {
	if err := fileID.Validate(); err != nil {
		return RegisterFileDownloadCommand{}, err
	}

	return RegisterFileDownloadCommand{
		fileID: fileID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c RegisterFileDownloadCommand) Validate() error {
	return c.guard.Validate(ErrRegisterFileDownloadCommandIsNotConstructed)
}

func (c RegisterFileDownloadCommand) FileID() kernel.UUID {
	return c.fileID
}
