package delivery

import (
	"errors"
	"fmt"
	"strconv"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Keys of the flat parameter mapping produced by Option.Parameters.
const (
	ParamCopies              = "copies"
	ParamAnnotation          = "annotation"
	ParamSpecialInstructions = "special_instructions"
	ParamDeliveryType        = "delivery_type"
	ParamProtocol            = "protocol"
	ParamMedium              = "medium"
)

var (
	// ErrOptionIsNotConstructed is returned by Validate on a zero Option.
	ErrOptionIsNotConstructed = errors.New("delivery Option must be created via its constructors")

	ErrProtocolIsRequired = errs.NewValueIsRequiredError("protocol")
	ErrMediumIsRequired   = errs.NewValueIsRequiredError("medium")
)

// Extras are the requester-supplied details common to every delivery type.
type Extras struct {
	Copies              int
	Annotation          string
	SpecialInstructions string
}

// Option is an immutable delivery option. Online types carry a protocol,
// media delivery carries a medium and shipping instructions.
type Option struct {
	deliveryType         Type
	protocol             string
	medium               string
	shippingInstructions string
	extras               Extras
	guard                guard.ConstructorGuard
}

// NewOnlineDataAccess builds an option for files the requester pulls with
// the given protocol (e.g. "http", "ftp").
func NewOnlineDataAccess(protocol string, extras Extras) (Option, error) {
	return RestoreOption(OnlineDataAccess, protocol, "", "", extras)
}

// NewOnlineDataDelivery builds an option for files pushed to the requester.
func NewOnlineDataDelivery(protocol string, extras Extras) (Option, error) {
	return RestoreOption(OnlineDataDelivery, protocol, "", "", extras)
}

// NewMediaDelivery builds an option for physical media shipped to the requester.
func NewMediaDelivery(medium, shippingInstructions string, extras Extras) (Option, error) {
	return RestoreOption(MediaDelivery, "", medium, shippingInstructions, extras)
}

// RestoreOption rebuilds an Option from persisted state, applying the same
// validation as the typed constructors.
func RestoreOption(
	deliveryType Type,
	protocol string,
	medium string,
	shippingInstructions string,
	extras Extras,
) (Option, error) {
	if err := deliveryType.Validate(); err != nil {
		return Option{}, err
	}

	var detailErr error
	switch deliveryType { //nolint:exhaustive // Unknown rejected above
	case OnlineDataAccess, OnlineDataDelivery:
		if protocol == "" {
			detailErr = ErrProtocolIsRequired
		}
		medium, shippingInstructions = "", ""
	case MediaDelivery:
		if medium == "" {
			detailErr = ErrMediumIsRequired
		}
		protocol = ""
	}

	var copiesErr error
	if extras.Copies < 0 {
		copiesErr = errs.NewValueIsInvalidErrorWithCause("copies is invalid", fmt.Errorf("%d is negative", extras.Copies))
	}

	if err := errors.Join(detailErr, copiesErr); err != nil {
		return Option{}, err
	}

	return Option{
		deliveryType:         deliveryType,
		protocol:             protocol,
		medium:               medium,
		shippingInstructions: shippingInstructions,
		extras:               extras,
		guard:                guard.NewConstructorGuard(),
	}, nil
}

func (o Option) Validate() error {
	return o.guard.Validate(ErrOptionIsNotConstructed)
}

func (o Option) Type() Type { return o.deliveryType }
func (o Option) Protocol() string { return o.protocol }
func (o Option) Medium() string { return o.medium }
func (o Option) ShippingInstructions() string { return o.shippingInstructions }
func (o Option) Extras() Extras { return o.extras }

// Parameters projects the option into the flat mapping handed to the item
// processor. Online types expose "protocol"; media delivery exposes "medium".
// The result depends only on the option's fields.
func (o Option) Parameters() map[string]string {
	params := map[string]string{
		ParamCopies:              strconv.Itoa(o.extras.Copies),
		ParamAnnotation:          o.extras.Annotation,
		ParamSpecialInstructions: o.extras.SpecialInstructions,
		ParamDeliveryType:        o.deliveryType.String(),
	}
	if o.deliveryType.IsOnline() {
		params[ParamProtocol] = o.protocol
	} else {
		params[ParamMedium] = o.medium
	}
	return params
}
