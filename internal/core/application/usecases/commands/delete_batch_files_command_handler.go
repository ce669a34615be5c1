package commands

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/file"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const operationCleanFiles = "clean files"

// DeleteBatchFilesCommandHandler runs the deletion step of the file
// lifecycle for one batch.
//
// Business rules:
//   - The item processor is asked once per batch, with the deduplicated
//     locations of the selected files
//   - On success every selected file becomes unavailable, and so does each
//     item left without an available file
//   - On failure nothing changes, a CleanupFailed alert is raised and a
//     ProcessingError is returned
type DeleteBatchFilesCommandHandler struct {
	uowFactory UoWFactory
	processor  ports.ItemProcessor
	notifier   ports.Notifier
	lifecycle  services.FileLifecycle
	clock      ports.Clock
	logger     *slog.Logger
}

func NewDeleteBatchFilesCommandHandler(
	uowFactory UoWFactory,
	processor ports.ItemProcessor,
	notifier ports.Notifier,
	settings services.FulfillmentSettings,
	clock ports.Clock,
	logger *slog.Logger,
) DeleteBatchFilesCommandHandler {
	return DeleteBatchFilesCommandHandler{
		uowFactory: uowFactory,
		processor:  processor,
		notifier:   notifier,
		lifecycle:  services.NewFileLifecycle(settings),
		clock:      clock,
		logger:     logger.With("component", "delete_batch_files"),
	}
}

// Handle returns the number of files that were made unavailable.
func (h DeleteBatchFilesCommandHandler) Handle(ctx context.Context, command DeleteBatchFilesCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	batch, err := uow.BatchRepository().GetForUpdate(ctx, command.BatchID())
	if err != nil {
		return 0, err
	}
	o, err := uow.OrderRepository().Get(ctx, batch.OrderID())
	if err != nil {
		return 0, err
	}
	files, err := uow.FileRepository().ListByBatch(ctx, batch.ID())
	if err != nil {
		return 0, err
	}

	selected := h.lifecycle.SelectForDeletion(files, o.DeleteDownloadedFiles(), !command.ExpiredOnly(), now)
	if len(selected) == 0 {
		return 0, nil
	}

	urls := services.UniqueURLs(selected)
	if err = h.processor.CleanFiles(ctx, urls); err != nil {
		cleanupErr := errs.NewProcessingError(operationCleanFiles, batch.ID().String(), err)
		h.logger.ErrorContext(ctx, "cleaning batch files failed",
			"batch_id", batch.ID().String(), "files", len(urls), "error", err)
		if notifyErr := h.notifier.Notify(ctx, ports.Event{
			Kind:       ports.CleanupFailed,
			OrderID:    o.ID().String(),
			BatchID:    batch.ID().String(),
			OrderType:  o.Type().String(),
			Message:    cleanupErr.Error(),
			URLs:       urls,
			OccurredAt: now,
		}); notifyErr != nil {
			h.logger.ErrorContext(ctx, "cleanup alert failed", "batch_id", batch.ID().String(), "error", notifyErr)
		}
		return 0, cleanupErr
	}

	fileRepo := uow.FileRepository()
	for _, f := range selected {
		f.MarkUnavailable()
		if err = fileRepo.Update(ctx, f); err != nil {
			return 0, err
		}
	}

	if err = h.releaseItems(ctx, uow, files); err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	h.logger.InfoContext(ctx, "batch files deleted",
		"batch_id", batch.ID().String(), "files", len(selected), "expired_only", command.ExpiredOnly())
	return len(selected), nil
}

// releaseItems marks unavailable every available item none of whose files
// remains available.
func (h DeleteBatchFilesCommandHandler) releaseItems(ctx context.Context, uow UoW, files []*file.File) error {
	itemRepo := uow.OrderItemRepository()
	items, err := itemRepo.ListByBatch(ctx, files[0].BatchID())
	if err != nil {
		return err
	}

	for _, it := range items {
		if !it.State().Available {
			continue
		}
		stillAvailable := false
		for _, f := range files {
			if f.Available() && f.BelongsTo(it.ID()) {
				stillAvailable = true
				break
			}
		}
		if stillAvailable {
			continue
		}
		it.MarkUnavailable()
		if err = itemRepo.Update(ctx, it); err != nil {
			return err
		}
	}
	return nil
}
