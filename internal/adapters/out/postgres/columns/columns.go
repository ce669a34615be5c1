// Package columns holds the column groups and value conversions shared by
// the gorm repositories.
package columns

import (
	"fmt"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DeliveryDTO is the embedded delivery option of orders and order items. An
// empty Type means no option is set.
type DeliveryDTO struct {
	Type                 string `gorm:"type:varchar(32)"`
	Protocol             string `gorm:"type:varchar(32)"`
	Medium               string `gorm:"type:varchar(64)"`
	ShippingInstructions string `gorm:"type:text"`
	Copies               int
	Annotation           string `gorm:"type:text"`
	SpecialInstructions  string `gorm:"type:text"`
}

// FromDelivery flattens an optional delivery option.
func FromDelivery(opt *delivery.Option) DeliveryDTO {
	if opt == nil {
		return DeliveryDTO{}
	}
	extras := opt.Extras()
	return DeliveryDTO{
		Type:                 opt.Type().String(),
		Protocol:             opt.Protocol(),
		Medium:               opt.Medium(),
		ShippingInstructions: opt.ShippingInstructions(),
		Copies:               extras.Copies,
		Annotation:           extras.Annotation,
		SpecialInstructions:  extras.SpecialInstructions,
	}
}

// ToDomain rebuilds the delivery option, or returns nil when none was stored.
func (d DeliveryDTO) ToDomain() (*delivery.Option, error) {
	if d.Type == "" {
		return nil, nil
	}
	t, err := delivery.ParseType(d.Type)
	if err != nil {
		return nil, err
	}
	opt, err := delivery.RestoreOption(t, d.Protocol, d.Medium, d.ShippingInstructions, delivery.Extras{
		Copies:              d.Copies,
		Annotation:          d.Annotation,
		SpecialInstructions: d.SpecialInstructions,
	})
	if err != nil {
		return nil, err
	}
	return &opt, nil
}

// FromStrings stores an option mapping in a JSON column.
func FromStrings(m map[string]string) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ToStrings reads an option mapping back from a JSON column.
func ToStrings(m datatypes.JSONMap) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

// ID converts a stored identifier to its domain form.
func ID(id uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

// IDs converts identifiers for IN clauses.
func IDs(ids []kernel.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Bytes())
	}
	return out
}
