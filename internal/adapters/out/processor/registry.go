// Package processor selects the item processor implementation at startup.
package processor

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"fulfillment/internal/adapters/out/processor/example"
	"fulfillment/internal/adapters/out/processor/storage"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// Config carries the settings of every known implementation; each one
// reads only its own fields.
type Config struct {
	Name string
	// PublicURL prefixes the placeholder outputs of the example processor.
	PublicURL string

	StorageURL     string
	StorageKey     string
	SourceBucket   string
	DeliveryBucket string
}

type constructor func(cfg Config, logger *slog.Logger) (ports.ItemProcessor, error)

var registry = map[string]constructor{
	example.Name: func(cfg Config, logger *slog.Logger) (ports.ItemProcessor, error) {
		return example.New(strings.TrimSuffix(cfg.PublicURL, "/"), logger), nil
	},
	storage.Name: func(cfg Config, logger *slog.Logger) (ports.ItemProcessor, error) {
		if cfg.StorageURL == "" {
			return nil, errs.NewConfigurationError("storage url")
		}
		return storage.New(
			storage.NewSupabaseStore(cfg.StorageURL, cfg.StorageKey),
			storage.Config{SourceBucket: cfg.SourceBucket, DeliveryBucket: cfg.DeliveryBucket},
			logger,
		)
	},
}

// Names lists the registered implementations.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New builds the implementation named by cfg.Name.
func New(cfg Config, logger *slog.Logger) (ports.ItemProcessor, error) {
	build, ok := registry[cfg.Name]
	if !ok {
		return nil, errs.NewConfigurationErrorWithCause("item processor",
			fmt.Errorf("unknown implementation %q, expected one of %s", cfg.Name, strings.Join(Names(), ", ")))
	}
	p, err := build(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("item processor selected", "name", cfg.Name)
	return p, nil
}
