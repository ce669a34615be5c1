package delivery

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Type is the delivery channel of an Option. Its textual form is the value
// exported to the item processor as "delivery_type".
type Type int

const (
	// Unknown catches uninitialized values.
	Unknown Type = iota
	OnlineDataAccess
	OnlineDataDelivery
	MediaDelivery
)

var typeNames = map[Type]string{
	OnlineDataAccess:   "onlinedataaccess",
	OnlineDataDelivery: "onlinedatadelivery",
	MediaDelivery:      "mediadelivery",
}

// ParseType maps an exported delivery type name back to its Type.
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("delivery type is invalid", fmt.Errorf("%q is not a valid delivery type", s))
}

func (t Type) Validate() error {
	if _, ok := typeNames[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("delivery type is invalid", fmt.Errorf("%d is not a valid delivery type", t))
	}
	return nil
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsOnline reports whether files are handed over through a network protocol.
func (t Type) IsOnline() bool {
	return t == OnlineDataAccess || t == OnlineDataDelivery
}
