package commands

import (
	"context"
	"fmt"
	"log/slog"

	"fulfillment/internal/core/domain/model/item"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// SubmitOrderCommandHandler registers a new order with its initial batch.
//
// Business rules:
//   - The order type must be enabled
//   - Every selected option is normalized by the item processor; a value it
//     rejects fails the whole submission
//   - Items pass the collection admission gate before anything is stored
//   - Order types configured for auto approval are approved right away,
//     others wait for moderation in Submitted
type SubmitOrderCommandHandler struct {
	uowFactory UoWFactory
	processor  ports.ItemProcessor
	settings   services.FulfillmentSettings
	approver   ApproveOrderCommandHandler
	clock      ports.Clock
	logger     *slog.Logger
}

func NewSubmitOrderCommandHandler(
	uowFactory UoWFactory,
	processor ports.ItemProcessor,
	settings services.FulfillmentSettings,
	approver ApproveOrderCommandHandler,
	clock ports.Clock,
	logger *slog.Logger,
) SubmitOrderCommandHandler {
	return SubmitOrderCommandHandler{
		uowFactory: uowFactory,
		processor:  processor,
		settings:   settings,
		approver:   approver,
		clock:      clock,
		logger:     logger.With("component", "submit_order"),
	}
}

// Handle stores the order and returns its identifier.
func (h SubmitOrderCommandHandler) Handle(ctx context.Context, command SubmitOrderCommand) (kernel.UUID, error) {
	if err := command.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	details := command.Details()
	typeSettings := h.settings.ForType(details.Type)
	if !typeSettings.Enabled {
		return kernel.UUID{}, errs.NewConfigurationErrorWithCause(
			"order types", fmt.Errorf("%s orders are disabled", details.Type),
		)
	}

	var err error
	if details.Options, err = h.parseOptions(details.Options); err != nil {
		return kernel.UUID{}, err
	}

	requests := make([]item.Request, 0, len(command.Items()))
	for _, r := range command.Items() {
		if r.Options, err = h.parseOptions(r.Options); err != nil {
			return kernel.UUID{}, err
		}
		requests = append(requests, r)
	}

	if err = services.NewCollectionAdmission(h.settings).Admit(details.Type, requests); err != nil {
		return kernel.UUID{}, err
	}

	orderID, err := h.store(ctx, details, requests)
	if err != nil {
		return kernel.UUID{}, err
	}
	h.logger.InfoContext(ctx, "order submitted",
		"order_id", orderID.String(), "order_type", details.Type.String(), "items", len(requests))

	if !typeSettings.AutoApprove {
		return orderID, nil
	}

	approve, err := NewApproveOrderCommand(orderID)
	if err != nil {
		return kernel.UUID{}, err
	}
	if err = h.approver.Handle(ctx, approve); err != nil {
		return orderID, err
	}
	return orderID, nil
}

func (h SubmitOrderCommandHandler) store(ctx context.Context, details order.Details, requests []item.Request) (kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	o, err := order.NewOrder(kernel.NewUUID(), details, now)
	if err != nil {
		return kernel.UUID{}, err
	}
	batch, err := order.NewBatch(kernel.NewUUID(), o.ID(), order.InitialBatch, nil, now)
	if err != nil {
		return kernel.UUID{}, err
	}

	items := make([]*item.OrderItem, 0, len(requests))
	for _, r := range requests {
		it, err := item.NewOrderItem(kernel.NewUUID(), batch.ID(), r, now)
		if err != nil {
			return kernel.UUID{}, err
		}
		items = append(items, it)
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
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
	return o.ID(), nil
}

func (h SubmitOrderCommandHandler) parseOptions(options map[string]string) (map[string]string, error) {
	if len(options) == 0 {
		return options, nil
	}
	parsed := make(map[string]string, len(options))
	for name, value := range options {
		v, err := h.processor.ParseOption(name, value)
		if err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("option %s", name), err)
		}
		parsed[name] = v
	}
	return parsed, nil
}
