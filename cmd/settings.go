package cmd

import (
	"fmt"
	"os"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"

	"gopkg.in/yaml.v2"
)

// settingsDocument is the YAML form of services.FulfillmentSettings:
//
//	order_types:
//	  PRODUCT_ORDER:
//	    enabled: true
//	    item_availability_days: 2
//	    auto_approve: true
//	collections: [sentinel2, landsat8]
//	site_domain: example.org
type settingsDocument struct {
	OrderTypes  map[string]orderTypeDocument `yaml:"order_types"`
	Collections []string                     `yaml:"collections"`
	SiteDomain  string                       `yaml:"site_domain"`
}

type orderTypeDocument struct {
	Enabled              bool `yaml:"enabled"`
	ItemAvailabilityDays int  `yaml:"item_availability_days"`
	AutoApprove          bool `yaml:"auto_approve"`
	NotifyBatchReady     bool `yaml:"notify_batch_ready"`
}

// DefaultSettings enables auto-approved product orders for any collection.
func DefaultSettings() (services.FulfillmentSettings, error) {
	return services.NewFulfillmentSettings(map[order.Type]services.OrderTypeSettings{
		order.ProductOrder: {
			Enabled:              true,
			ItemAvailabilityDays: services.DefaultItemAvailabilityDays,
			AutoApprove:          true,
		},
	}, nil, "localhost")
}

// LoadSettings reads the fulfillment settings document. An empty path yields
// DefaultSettings.
func LoadSettings(path string) (services.FulfillmentSettings, error) {
	if path == "" {
		return DefaultSettings()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return services.FulfillmentSettings{}, fmt.Errorf("read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes a settings document. Unknown keys are rejected.
func ParseSettings(data []byte) (services.FulfillmentSettings, error) {
	var doc settingsDocument
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return services.FulfillmentSettings{}, fmt.Errorf("parse settings: %w", err)
	}

	types := make(map[order.Type]services.OrderTypeSettings, len(doc.OrderTypes))
	for name, t := range doc.OrderTypes {
		types[order.Type(name)] = services.OrderTypeSettings{
			Enabled:              t.Enabled,
			ItemAvailabilityDays: t.ItemAvailabilityDays,
			AutoApprove:          t.AutoApprove,
			NotifyBatchReady:     t.NotifyBatchReady,
		}
	}
	return services.NewFulfillmentSettings(types, doc.Collections, doc.SiteDomain)
}
