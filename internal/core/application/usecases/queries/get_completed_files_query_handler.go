package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/file"
	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// GetCompletedFilesQueryHandler resolves the downloadable files of an order.
//
// Business rules:
//   - Only available files of COMPLETED items whose effective delivery is
//     online data access are returned
//   - NextReady skips items completed before the previous request
//   - Zip orders return a batch's package once every item of the batch is
//     completed, never the per-item files
//   - The order's result access watermark is advanced on every request
type GetCompletedFilesQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	resolver   services.DeliveryResolver
	clock      ports.Clock
}

func NewGetCompletedFilesQueryHandler(uowFactory ports.UnitOfWorkFactory, clock ports.Clock) GetCompletedFilesQueryHandler {
	return GetCompletedFilesQueryHandler{
		uowFactory: uowFactory,
		resolver:   services.NewDeliveryResolver(),
		clock:      clock,
	}
}

func (h GetCompletedFilesQueryHandler) Handle(
	ctx context.Context,
	query GetCompletedFilesQuery,
) (*GetCompletedFilesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	o, err := uow.OrderRepository().GetForUpdate(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}
	previous := o.AdvanceResultAccess(h.clock.Now())

	batches, err := uow.BatchRepository().ListByOrder(ctx, o.ID())
	if err != nil {
		return nil, err
	}

	resp := &GetCompletedFilesQueryResponse{
		Files:          make([]CompletedFile, 0),
		PreviousAccess: previous,
	}
	for _, b := range batches {
		items, err := uow.OrderItemRepository().ListByBatch(ctx, b.ID())
		if err != nil {
			return nil, err
		}
		files, err := uow.FileRepository().ListByBatch(ctx, b.ID())
		if err != nil {
			return nil, err
		}

		ready := h.readyItems(o, items, query.Behaviour(), previous)
		if len(ready) == 0 {
			continue
		}
		if o.Packaging() == order.PackagingZip {
			if pkg := batchPackage(files, items); pkg != nil {
				resp.Files = append(resp.Files, completedFile(pkg, items))
			}
			continue
		}
		for _, f := range files {
			if !f.Available() || f.IsPackage() {
				continue
			}
			if owners := ownedBy(f, ready); len(owners) > 0 {
				resp.Files = append(resp.Files, completedFile(f, owners))
			}
		}
	}

	if err := uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return resp, nil
}

// readyItems returns the completed online-data-access items of a batch that
// pass the behaviour's watermark filter.
func (h GetCompletedFilesQueryHandler) readyItems(
	o *order.Order,
	items []*item.OrderItem,
	behaviour ResultBehaviour,
	previous *time.Time,
) []*item.OrderItem {
	var ready []*item.OrderItem
	for _, it := range items {
		if it.Status() != kernel.Completed {
			continue
		}
		opt, err := h.resolver.Resolve(it, o)
		if err != nil || opt.Type() != delivery.OnlineDataAccess {
			continue
		}
		if behaviour == NextReady && previous != nil && it.CompletedOn() != nil && it.CompletedOn().Before(*previous) {
			continue
		}
		ready = append(ready, it)
	}
	return ready
}

// batchPackage returns the available package of a batch whose items are all
// completed, or nil.
func batchPackage(files []*file.File, items []*item.OrderItem) *file.File {
	for _, it := range items {
		if it.Status() != kernel.Completed {
			return nil
		}
	}
	for _, f := range files {
		if f.IsPackage() && f.Available() {
			return f
		}
	}
	return nil
}

func ownedBy(f *file.File, items []*item.OrderItem) []*item.OrderItem {
	var owners []*item.OrderItem
	for _, it := range items {
		if f.BelongsTo(it.ID()) {
			owners = append(owners, it)
		}
	}
	return owners
}

func completedFile(f *file.File, items []*item.OrderItem) CompletedFile {
	cf := CompletedFile{
		FileID:    f.ID(),
		URL:       f.URL(),
		ExpiresOn: f.ExpiresOn(),
		Packaged:  f.IsPackage(),
	}
	for _, it := range ownedBy(f, items) {
		cf.Items = append(cf.Items, CompletedItem{
			ID:         it.ID(),
			ItemID:     it.ItemID(),
			Identifier: it.Identifier(),
		})
	}
	return cf
}
