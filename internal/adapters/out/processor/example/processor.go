// Package example provides an item processor that produces nothing. It
// echoes options back, reports one placeholder output per item and accepts
// every packaging and deletion request, which makes it suitable for local
// runs and smoke tests of the pipeline.
package example

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

const Name = "example"

// SubscriptionIdentifier is the single identifier returned for every
// subscription timeslot.
const SubscriptionIdentifier = "fake_identifier"

type Processor struct {
	baseURL string
	logger  *slog.Logger
}

var _ ports.ItemProcessor = (*Processor)(nil)

func New(baseURL string, logger *slog.Logger) *Processor {
	return &Processor{
		baseURL: baseURL,
		logger:  logger.With("component", "example_processor"),
	}
}

func (p *Processor) ProcessItemOnlineAccess(ctx context.Context, req ports.ProcessItemRequest) (ports.ProcessItemResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.ProcessItemResult{}, err
	}
	p.logger.DebugContext(ctx, "pretending to process item",
		"order_id", req.OrderID, "item_id", req.ItemID, "identifier", req.Identifier, "options", req.Options)

	return ports.ProcessItemResult{
		URLs:    []string{fmt.Sprintf("%s/orders/%s/%s/fakeorder", p.baseURL, req.OrderID, req.ItemID)},
		Details: "Pretending to be a file",
	}, nil
}

func (p *Processor) PackageFiles(ctx context.Context, packaging order.Packaging, domain string, fileURLs []string) (string, error) {
	p.logger.DebugContext(ctx, "pretending to package files",
		"packaging", string(packaging), "domain", domain, "files", len(fileURLs))
	return fmt.Sprintf("%s/packages/%s/fake_package.%s", p.baseURL, domain, packaging), nil
}

func (p *Processor) CleanFiles(ctx context.Context, fileURLs []string) error {
	p.logger.DebugContext(ctx, "pretending to clean files", "files", len(fileURLs))
	return nil
}

func (p *Processor) GetSubscriptionBatchIdentifiers(_ context.Context, _ time.Time, _ string) ([]string, error) {
	return []string{SubscriptionIdentifier}, nil
}

func (p *Processor) ParseOption(_, value string) (string, error) {
	return value, nil
}
