package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCreateSubscriptionBatchCommandIsNotConstructed = errors.New(
		"CreateSubscriptionBatchCommand must be created via NewCreateSubscriptionBatchCommand constructor",
	)
	ErrTimeslotIsRequired = errs.NewValueIsRequiredError("timeslot")
)

// CreateSubscriptionBatchCommand delivers one timeslot of a subscription.
// With no collections given, every subscribed collection is delivered.
type CreateSubscriptionBatchCommand struct {
	orderID     kernel.UUID
	timeslot    time.Time
	collections []string

	guard guard.ConstructorGuard
}

func NewCreateSubscriptionBatchCommand(
	orderID kernel.UUID,
	timeslot time.Time,
	collections []string,
) (CreateSubscriptionBatchCommand, error) {
	var timeslotErr error
	if timeslot.IsZero() {
		timeslotErr = ErrTimeslotIsRequired
	}
	if err := errors.Join(orderID.Validate(), timeslotErr); err != nil {
		return CreateSubscriptionBatchCommand{}, err
	}

	return CreateSubscriptionBatchCommand{
		orderID:     orderID,
		timeslot:    timeslot,
		collections: collections,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c CreateSubscriptionBatchCommand) Validate() error {
	return c.guard.Validate(ErrCreateSubscriptionBatchCommandIsNotConstructed)
}

func (c CreateSubscriptionBatchCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateSubscriptionBatchCommand) Timeslot() time.Time {
	return c.timeslot
}

func (c CreateSubscriptionBatchCommand) Collections() []string {
	return c.collections
}
