package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	// InfoBeingProcessed is recorded when an order's items are dispatched.
	InfoBeingProcessed = "Order is being processed"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	ErrUserNameIsRequired = errs.NewValueIsRequiredError("user name")
)

// Details are the requester-chosen attributes of an order. They do not
// change after submission.
type Details struct {
	Type                  Type
	UserName              string
	Reference             string
	Remark                string
	Packaging             Packaging
	Priority              Priority
	StatusNotification    StatusNotification
	DeleteDownloadedFiles bool
	// Options are order-wide processing options. Item options with the same
	// name take precedence.
	Options map[string]string
	// Delivery is the default delivery option of the order's items. Nil when
	// every item carries its own.
	Delivery *delivery.Option
}

// State is the mutable fulfillment state of an order, as persisted.
type State struct {
	Status                   kernel.Status
	StatusChangedOn          time.Time
	CompletedOn              *time.Time
	AdditionalStatusInfo     string
	LastDescribeResultAccess *time.Time
	CreatedOn                time.Time
}

// ItemFailure names a failed order item and the reason recorded on it.
type ItemFailure struct {
	ItemID kernel.UUID
	Info   string
}

// Order is the aggregate root of a user's request for products.
//
// Order follows these invariants:
//   - Its status is derived from its batches through ApplyRollup, except for
//     the moderation decisions Approve and Reject and the packaging failure
//     recorded by Fail
//   - Approve and Reject are idempotent; contradicting an earlier decision
//     is a conflict
//   - Details are immutable after construction
type Order struct {
	id      kernel.UUID
	details Details
	state   State
	guard   guard.ConstructorGuard
}

// NewOrder creates a submitted order.
//
// Example:
//
//	o, err := order.NewOrder(kernel.NewUUID(), order.Details{
//	    Type:               order.ProductOrder,
//	    UserName:           "jdoe",
//	    Priority:           order.PriorityStandard,
//	    StatusNotification: order.NotifyNone,
//	}, time.Now())
func NewOrder(id kernel.UUID, details Details, now time.Time) (*Order, error) {
	return RestoreOrder(id, details, State{
		Status:          kernel.Submitted,
		StatusChangedOn: now,
		CreatedOn:       now,
	})
}

// RestoreOrder rebuilds an order from persisted state. It applies the same
// validation as NewOrder.
func RestoreOrder(id kernel.UUID, details Details, state State) (*Order, error) {
	if details.Priority == "" {
		details.Priority = PriorityStandard
	}
	if details.StatusNotification == "" {
		details.StatusNotification = NotifyNone
	}

	var userErr, deliveryErr error
	if strings.TrimSpace(details.UserName) == "" {
		userErr = ErrUserNameIsRequired
	}
	if details.Delivery != nil {
		deliveryErr = details.Delivery.Validate()
	}

	if err := errors.Join(
		id.Validate(),
		details.Type.Validate(),
		details.Packaging.Validate(),
		details.Priority.Validate(),
		details.StatusNotification.Validate(),
		userErr,
		deliveryErr,
		state.Status.Validate(),
	); err != nil {
		return nil, err
	}

	return &Order{
		id:      id,
		details: details,
		state:   state,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID { return o.id }
func (o *Order) Details() Details { return o.details }
func (o *Order) Type() Type { return o.details.Type }
func (o *Order) UserName() string { return o.details.UserName }
func (o *Order) Packaging() Packaging { return o.details.Packaging }
func (o *Order) DeleteDownloadedFiles() bool { return o.details.DeleteDownloadedFiles }
func (o *Order) State() State { return o.state }
func (o *Order) Status() kernel.Status { return o.state.Status }
func (o *Order) AdditionalStatusInfo() string { return o.state.AdditionalStatusInfo }
func (o *Order) CompletedOn() *time.Time { return o.state.CompletedOn }
func (o *Order) LastDescribeResultAccess() *time.Time { return o.state.LastDescribeResultAccess }

// DeliveryOption returns the order-level default delivery option.
func (o *Order) DeliveryOption() (delivery.Option, bool) {
	if o.details.Delivery == nil {
		return delivery.Option{}, false
	}
	return *o.details.Delivery, true
}

// Approve accepts a submitted order. It reports whether the order changed:
// an order that was already approved is left untouched, while a rejected
// order yields a ConflictError.
func (o *Order) Approve(now time.Time) (bool, error) {
	switch o.state.Status { //nolint:exhaustive // every other status means already approved
	case kernel.Submitted:
		o.setStatus(kernel.Accepted, now)
		return true, nil
	case kernel.Cancelled, kernel.Terminated:
		return false, errs.NewConflictError("order", o.id, fmt.Sprintf("is already %s", o.state.Status))
	default:
		return false, nil
	}
}

// Reject cancels a submitted order with the moderator's reason. Rejecting a
// cancelled order again is a no-op; rejecting an approved one is a conflict.
func (o *Order) Reject(reason string, now time.Time) (bool, error) {
	switch o.state.Status { //nolint:exhaustive // only undecided or rejected orders qualify
	case kernel.Submitted:
		o.setStatus(kernel.Cancelled, now)
		o.state.AdditionalStatusInfo = reason
		return true, nil
	case kernel.Cancelled:
		return false, nil
	default:
		return false, errs.NewConflictError("order", o.id, fmt.Sprintf("is already %s", o.state.Status))
	}
}

// StartProduction marks the order as being processed before its items are
// dispatched. Rejected orders cannot be produced.
func (o *Order) StartProduction(now time.Time) error {
	if o.state.Status == kernel.Submitted || o.state.Status == kernel.Cancelled || o.state.Status == kernel.Terminated {
		return errs.NewConflictError("order", o.id, fmt.Sprintf("cannot be produced while %s", o.state.Status))
	}
	o.setStatus(kernel.InProduction, now)
	o.state.AdditionalStatusInfo = InfoBeingProcessed
	return nil
}

// ApplyRollup records the status derived from the order's batches and
// reports whether a notification is due.
//
// A notification is due when the status changes, or when a failed order is
// recomputed with a different failure report (an item was retried and failed
// again). Recomputing with nothing changed is a no-op, so repeated fan-ins do
// not notify twice.
func (o *Order) ApplyRollup(status kernel.Status, failures []ItemFailure, now time.Time) (bool, error) {
	if err := status.Validate(); err != nil {
		return false, err
	}

	previous := o.state.Status
	info := o.state.AdditionalStatusInfo
	switch {
	case status == kernel.Completed:
		info = ""
	case status == kernel.Failed:
		info = FailureReport(o.id, failures)
	case previous == kernel.Failed:
		info = ""
	}

	if status == previous && info == o.state.AdditionalStatusInfo {
		return false, nil
	}

	if status != previous {
		o.setStatus(status, now)
		if status == kernel.Completed {
			o.state.CompletedOn = &now
		}
	}
	o.state.AdditionalStatusInfo = info
	return true, nil
}

// Fail marks the order failed outside of the rollup, e.g. when packaging its
// completed batch fails, and reports whether the status or its information
// changed.
func (o *Order) Fail(reason string, now time.Time) bool {
	if o.state.Status == kernel.Failed && o.state.AdditionalStatusInfo == reason {
		return false
	}
	o.setStatus(kernel.Failed, now)
	o.state.AdditionalStatusInfo = reason
	return true
}

// AdvanceResultAccess moves the incremental result retrieval watermark and
// returns its previous value.
func (o *Order) AdvanceResultAccess(now time.Time) *time.Time {
	previous := o.state.LastDescribeResultAccess
	o.state.LastDescribeResultAccess = &now
	return previous
}

// FailureReport aggregates the failed items of an order into one message.
func FailureReport(orderID kernel.UUID, failures []ItemFailure) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s has failed.", orderID)
	for _, f := range failures {
		fmt.Fprintf(&b, "\n\t* Order item %s: %s", f.ItemID, f.Info)
	}
	return b.String()
}

func (o *Order) setStatus(status kernel.Status, now time.Time) {
	if o.state.Status != status {
		o.state.StatusChangedOn = now
	}
	o.state.Status = status
}
