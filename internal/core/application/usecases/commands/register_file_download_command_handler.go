package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
)

// RegisterFileDownloadCommandHandler records a download on a file and on
// every item owning it. The first download of a completed item moves it to
// Downloaded, after which its batch is recomputed.
type RegisterFileDownloadCommandHandler struct {
	uowFactory UoWFactory
	dispatcher ports.BatchDispatcher
	clock      ports.Clock
}

func NewRegisterFileDownloadCommandHandler(
	uowFactory UoWFactory,
	dispatcher ports.BatchDispatcher,
	clock ports.Clock,
) RegisterFileDownloadCommandHandler {
	return RegisterFileDownloadCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

func (h RegisterFileDownloadCommandHandler) Handle(ctx context.Context, command RegisterFileDownloadCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	batchID, recompute, err := h.register(ctx, command.FileID())
	if err != nil {
		return err
	}
	if !recompute {
		return nil
	}

	return h.dispatcher.RecomputeBatch(ctx, batchID)
}

func (h RegisterFileDownloadCommandHandler) register(ctx context.Context, fileID kernel.UUID) (kernel.UUID, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	fileRepo := uow.FileRepository()
	f, err := fileRepo.Get(ctx, fileID)
	if err != nil {
		return kernel.UUID{}, false, err
	}
	// The batch lock comes first, as in the fan-in; the file and its items
	// are read again under it so that concurrent downloads are all counted.
	if _, err = uow.BatchRepository().GetForUpdate(ctx, f.BatchID()); err != nil {
		return kernel.UUID{}, false, err
	}
	if f, err = fileRepo.GetForUpdate(ctx, fileID); err != nil {
		return kernel.UUID{}, false, err
	}
	if err = f.RegisterDownload(now); err != nil {
		return kernel.UUID{}, false, err
	}
	if err = fileRepo.Update(ctx, f); err != nil {
		return kernel.UUID{}, false, err
	}

	recompute := false
	itemRepo := uow.OrderItemRepository()
	for _, itemID := range f.ItemIDs() {
		it, err := itemRepo.GetForUpdate(ctx, itemID)
		if err != nil {
			return kernel.UUID{}, false, err
		}
		first, err := it.RegisterDownload(now)
		if err != nil {
			return kernel.UUID{}, false, err
		}
		recompute = recompute || first
		if err = itemRepo.Update(ctx, it); err != nil {
			return kernel.UUID{}, false, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, false, err
	}
	return f.BatchID(), recompute, nil
}
