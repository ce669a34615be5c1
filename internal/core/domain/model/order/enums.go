package order

import (
	"fmt"
	"slices"

	"fulfillment/internal/pkg/errs"
)

// Type is the order type tag. Type-specific behaviour (rollup scope,
// collection admission, batch dispatch) is selected from it instead of
// from separate order variants.
type Type string

const (
	ProductOrder      Type = "PRODUCT_ORDER"
	SubscriptionOrder Type = "SUBSCRIPTION_ORDER"
	MassiveOrder      Type = "MASSIVE_ORDER"
	TaskingOrder      Type = "TASKING_ORDER"
)

// Types lists every order type in a stable order.
var Types = []Type{ProductOrder, SubscriptionOrder, MassiveOrder, TaskingOrder}

func (t Type) Validate() error {
	if !slices.Contains(Types, t) {
		return errs.NewValueIsInvalidErrorWithCause("order type is invalid", fmt.Errorf("%q is not a valid order type", string(t)))
	}
	return nil
}

func (t Type) String() string { return string(t) }

// Packaging selects whether a completed batch is bundled into one file.
type Packaging string

const (
	PackagingNone Packaging = ""
	PackagingZip  Packaging = "zip"
)

func (p Packaging) Validate() error {
	if p != PackagingNone && p != PackagingZip {
		return errs.NewValueIsInvalidErrorWithCause("packaging is invalid", fmt.Errorf("%q is not a supported packaging", string(p)))
	}
	return nil
}

type Priority string

const (
	PriorityStandard  Priority = "STANDARD"
	PriorityFastTrack Priority = "FAST_TRACK"
)

func (p Priority) Validate() error {
	if p != PriorityStandard && p != PriorityFastTrack {
		return errs.NewValueIsInvalidErrorWithCause("priority is invalid", fmt.Errorf("%q is not a valid priority", string(p)))
	}
	return nil
}

// StatusNotification is the requester's notification preference.
type StatusNotification string

const (
	NotifyNone  StatusNotification = "None"
	NotifyFinal StatusNotification = "Final"
	NotifyAll   StatusNotification = "All"
)

func (n StatusNotification) Validate() error {
	switch n {
	case NotifyNone, NotifyFinal, NotifyAll:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("status notification is invalid", fmt.Errorf("%q is not a valid preference", string(n)))
	}
}
