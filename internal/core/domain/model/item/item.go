package item

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	// InfoBeingProcessed is recorded when a job picks the item up.
	InfoBeingProcessed = "Item is being processed"
)

var (
	// ErrOrderItemIsNotConstructed is returned when an OrderItem was not created
	// through NewOrderItem or RestoreOrderItem.
	ErrOrderItemIsNotConstructed = errors.New("OrderItem must be created via NewOrderItem constructor")

	ErrItemIDIsRequired     = errs.NewValueIsRequiredError("item id")
	ErrCollectionIsRequired = errs.NewValueIsRequiredError("collection")
)

// Request is what the requester asked for in one order item.
type Request struct {
	// ItemID is the request-scoped item identifier.
	ItemID string
	// Identifier is the catalog product id. It is empty for the template
	// items of a subscription.
	Identifier     string
	Collection     string
	Remark         string
	Options        map[string]string
	SceneSelection map[string]string
	// Delivery overrides the order's delivery option when set.
	Delivery *delivery.Option
}

// State is the mutable, persisted part of an order item.
type State struct {
	Status               kernel.Status
	AdditionalStatusInfo string
	StatusChangedOn      time.Time
	CompletedOn          *time.Time
	ExpiresOn            *time.Time
	URL                  string
	Available            bool
	Downloads            int
	LastDownloadedAt     *time.Time
	CreatedOn            time.Time
}

// OrderItem is one requested product within a batch.
//
// Once an item reaches a terminal status it is only re-entered through
// Retry; StartProduction, Complete and Fail refuse to overwrite it.
type OrderItem struct {
	id      kernel.UUID
	batchID kernel.UUID
	request Request
	state   State
	guard   guard.ConstructorGuard
}

func NewOrderItem(id, batchID kernel.UUID, request Request, now time.Time) (*OrderItem, error) {
	return RestoreOrderItem(id, batchID, request, State{
		Status:          kernel.Submitted,
		StatusChangedOn: now,
		CreatedOn:       now,
	})
}

func RestoreOrderItem(id, batchID kernel.UUID, request Request, state State) (*OrderItem, error) {
	var itemIDErr, collectionErr, deliveryErr error
	if strings.TrimSpace(request.ItemID) == "" {
		itemIDErr = ErrItemIDIsRequired
	}
	if strings.TrimSpace(request.Collection) == "" {
		collectionErr = ErrCollectionIsRequired
	}
	if request.Delivery != nil {
		deliveryErr = request.Delivery.Validate()
	}

	if err := errors.Join(
		id.Validate(),
		batchID.Validate(),
		itemIDErr,
		collectionErr,
		deliveryErr,
		state.Status.Validate(),
	); err != nil {
		return nil, err
	}

	request.Options = maps.Clone(request.Options)
	request.SceneSelection = maps.Clone(request.SceneSelection)

	return &OrderItem{
		id:      id,
		batchID: batchID,
		request: request,
		state:   state,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (i *OrderItem) Validate() error {
	if i == nil {
		return ErrOrderItemIsNotConstructed
	}
	return i.guard.Validate(ErrOrderItemIsNotConstructed)
}

func (i *OrderItem) ID() kernel.UUID { return i.id }
func (i *OrderItem) BatchID() kernel.UUID { return i.batchID }
func (i *OrderItem) ItemID() string { return i.request.ItemID }
func (i *OrderItem) Identifier() string { return i.request.Identifier }
func (i *OrderItem) Collection() string { return i.request.Collection }
func (i *OrderItem) Request() Request { return i.request }
func (i *OrderItem) State() State { return i.state }
func (i *OrderItem) Status() kernel.Status { return i.state.Status }
func (i *OrderItem) AdditionalStatusInfo() string { return i.state.AdditionalStatusInfo }
func (i *OrderItem) CompletedOn() *time.Time { return i.state.CompletedOn }
func (i *OrderItem) ExpiresOn() *time.Time { return i.state.ExpiresOn }

// DeliveryOption returns the item-level override, if any.
func (i *OrderItem) DeliveryOption() (delivery.Option, bool) {
	if i.request.Delivery == nil {
		return delivery.Option{}, false
	}
	return *i.request.Delivery, true
}

// ExportOptions merges order-wide options with the item's own; item values
// win on conflicting names.
func (i *OrderItem) ExportOptions(orderOptions map[string]string) map[string]string {
	merged := make(map[string]string, len(orderOptions)+len(i.request.Options))
	maps.Copy(merged, orderOptions)
	maps.Copy(merged, i.request.Options)
	return merged
}

// StartProduction moves a submitted item in production. An item already in
// production is refused, so one item is never produced twice at once.
func (i *OrderItem) StartProduction(now time.Time) error {
	if i.state.Status != kernel.Submitted {
		return i.transitionError("start production")
	}
	i.setStatus(kernel.InProduction, now)
	i.state.AdditionalStatusInfo = InfoBeingProcessed
	return nil
}

// Complete records a successful production. url is the item's resulting
// location and details the processor's free-text report.
func (i *OrderItem) Complete(url, details string, expiresOn, now time.Time) error {
	if i.state.Status != kernel.InProduction {
		return i.transitionError("complete")
	}
	i.setStatus(kernel.Completed, now)
	i.state.CompletedOn = &now
	i.state.ExpiresOn = &expiresOn
	i.state.URL = url
	i.state.Available = true
	i.state.AdditionalStatusInfo = details
	return nil
}

// Fail records a failed production with the captured error detail.
func (i *OrderItem) Fail(info string, now time.Time) error {
	if i.state.Status != kernel.InProduction {
		return i.transitionError("fail")
	}
	i.setStatus(kernel.Failed, now)
	i.state.AdditionalStatusInfo = info
	return nil
}

// Retry puts a failed item back in the queue. It is the only way out of a
// terminal status.
func (i *OrderItem) Retry(now time.Time) error {
	if i.state.Status != kernel.Failed {
		return i.transitionError("retry")
	}
	i.setStatus(kernel.Submitted, now)
	i.state.AdditionalStatusInfo = ""
	i.state.CompletedOn = nil
	i.state.ExpiresOn = nil
	return nil
}

// RegisterDownload counts a download. The first download of a completed item
// moves it to Downloaded, which is reported by the returned flag.
func (i *OrderItem) RegisterDownload(now time.Time) (bool, error) {
	if i.state.Status != kernel.Completed && i.state.Status != kernel.Downloaded {
		return false, i.transitionError("register a download")
	}
	i.state.Downloads++
	i.state.LastDownloadedAt = &now
	if i.state.Status == kernel.Completed {
		i.setStatus(kernel.Downloaded, now)
		return true, nil
	}
	return false, nil
}

// Relocate points the item at a new resulting location, e.g. the package
// that replaced its own files.
func (i *OrderItem) Relocate(url string, expiresOn time.Time) {
	i.state.URL = url
	i.state.ExpiresOn = &expiresOn
}

// MarkUnavailable records that the item's files were removed.
func (i *OrderItem) MarkUnavailable() {
	i.state.Available = false
}

func (i *OrderItem) transitionError(action string) error {
	return errs.NewValueIsInvalidErrorWithCause(
		"status is invalid",
		fmt.Errorf("cannot %s order item %s while %s", action, i.id, i.state.Status),
	)
}

func (i *OrderItem) setStatus(status kernel.Status, now time.Time) {
	if i.state.Status != status {
		i.state.StatusChangedOn = now
	}
	i.state.Status = status
}
