package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const operationBatchIdentifiers = "list subscription products"

var (
	ErrNotASubscription      = errs.NewValueIsInvalidError("order is not a subscription")
	ErrNoSubscriptionProduct = errors.New("no products available for the timeslot")
)

// CreateSubscriptionBatchCommandHandler creates and dispatches the batch of
// one subscription timeslot.
//
// Business rules:
//   - Only approved subscriptions receive batches
//   - The requested collections are picked from the subscription's template
//     items and pass the admission gate, so a collection requested twice is
//     a DuplicateCollectionError before anything is fetched or scheduled
//   - The item processor lists the products of each collection; every
//     product becomes one item inheriting its template's options and
//     delivery option
type CreateSubscriptionBatchCommandHandler struct {
	uowFactory UoWFactory
	processor  ports.ItemProcessor
	settings   services.FulfillmentSettings
	dispatcher ports.BatchDispatcher
	clock      ports.Clock
	logger     *slog.Logger
}

func NewCreateSubscriptionBatchCommandHandler(
	uowFactory UoWFactory,
	processor ports.ItemProcessor,
	settings services.FulfillmentSettings,
	dispatcher ports.BatchDispatcher,
	clock ports.Clock,
	logger *slog.Logger,
) CreateSubscriptionBatchCommandHandler {
	return CreateSubscriptionBatchCommandHandler{
		uowFactory: uowFactory,
		processor:  processor,
		settings:   settings,
		dispatcher: dispatcher,
		clock:      clock,
		logger:     logger.With("component", "create_subscription_batch"),
	}
}

// Handle returns the identifier of the dispatched batch.
func (h CreateSubscriptionBatchCommandHandler) Handle(
	ctx context.Context,
	command CreateSubscriptionBatchCommand,
) (kernel.UUID, error) {
	if err := command.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	batchID, err := h.create(ctx, command)
	if err != nil {
		return kernel.UUID{}, err
	}

	h.logger.InfoContext(ctx, "subscription batch created",
		"order_id", command.OrderID().String(), "batch_id", batchID.String(), "timeslot", command.Timeslot())
	if err = h.dispatcher.DispatchBatch(ctx, batchID); err != nil {
		return batchID, err
	}
	return batchID, nil
}

func (h CreateSubscriptionBatchCommandHandler) create(
	ctx context.Context,
	command CreateSubscriptionBatchCommand,
) (kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	o, err := uow.OrderRepository().GetForUpdate(ctx, command.OrderID())
	if err != nil {
		return kernel.UUID{}, err
	}
	if o.Type() != order.SubscriptionOrder {
		return kernel.UUID{}, ErrNotASubscription
	}

	batches, err := uow.BatchRepository().ListByOrder(ctx, o.ID())
	if err != nil {
		return kernel.UUID{}, err
	}
	initial, err := initialBatch(o.ID(), batches)
	if err != nil {
		return kernel.UUID{}, err
	}
	templates, err := uow.OrderItemRepository().ListByBatch(ctx, initial.ID())
	if err != nil {
		return kernel.UUID{}, err
	}

	selected, err := selectTemplates(templates, command.Collections())
	if err != nil {
		return kernel.UUID{}, err
	}
	requests := make([]item.Request, 0, len(selected))
	for _, tpl := range selected {
		requests = append(requests, tpl.Request())
	}
	if err = services.NewCollectionAdmission(h.settings).Admit(o.Type(), requests); err != nil {
		return kernel.UUID{}, err
	}

	// Refuses rejected and not yet approved subscriptions.
	if err = o.StartProduction(now); err != nil {
		return kernel.UUID{}, err
	}

	timeslot := command.Timeslot()
	batch, err := order.NewBatch(kernel.NewUUID(), o.ID(), order.TimeslotBatch, &timeslot, now)
	if err != nil {
		return kernel.UUID{}, err
	}

	var items []*item.OrderItem
	for _, tpl := range selected {
		identifiers, err := h.processor.GetSubscriptionBatchIdentifiers(ctx, timeslot, tpl.Collection())
		if err != nil {
			return kernel.UUID{}, errs.NewProcessingError(operationBatchIdentifiers, tpl.Collection(), err)
		}
		for n, identifier := range identifiers {
			req := tpl.Request()
			req.ItemID = fmt.Sprintf("%s-%d", tpl.ItemID(), n+1)
			req.Identifier = identifier
			it, err := item.NewOrderItem(kernel.NewUUID(), batch.ID(), req, now)
			if err != nil {
				return kernel.UUID{}, err
			}
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return kernel.UUID{}, ErrNoSubscriptionProduct
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return kernel.UUID{}, err
	}
	if err = uow.BatchRepository().Add(ctx, batch); err != nil {
		return kernel.UUID{}, err
	}
	if err = uow.OrderItemRepository().Add(ctx, items...); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}
	return batch.ID(), nil
}

// selectTemplates picks one template per requested collection, keeping
// repeated names so that the admission gate sees them.
func selectTemplates(templates []*item.OrderItem, collections []string) ([]*item.OrderItem, error) {
	if len(collections) == 0 {
		return templates, nil
	}

	selected := make([]*item.OrderItem, 0, len(collections))
	for _, c := range collections {
		idx := slices.IndexFunc(templates, func(it *item.OrderItem) bool { return it.Collection() == c })
		if idx < 0 {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"collection", fmt.Errorf("the subscription does not include %q", c),
			)
		}
		selected = append(selected, templates[idx])
	}
	return selected, nil
}
