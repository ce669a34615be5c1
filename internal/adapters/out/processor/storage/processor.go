// Package storage provides an item processor backed by object storage.
//
// Catalog products are read from a source bucket, keyed by their
// identifier. Producing an item copies its product into the delivery
// bucket under the order and item, where it is published by URL.
// Subscription timeslots are discovered by listing the source bucket under
// <collection>/<yyyy>/<mm>/<dd>. Packaging downloads the delivered files
// and uploads one zip archive next to them.
package storage

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const Name = "storage"

const (
	contentTypeBinary = "application/octet-stream"
	contentTypeZip    = "application/zip"
)

// supportedFormats are the values accepted for the "format" option.
var supportedFormats = []string{"GeoTIFF", "NetCDF", "SAFE"}

type Config struct {
	SourceBucket   string
	DeliveryBucket string
}

func (c Config) Validate() error {
	if c.SourceBucket == "" {
		return errs.NewConfigurationError("storage source bucket")
	}
	if c.DeliveryBucket == "" {
		return errs.NewConfigurationError("storage delivery bucket")
	}
	return nil
}

type Processor struct {
	store  ObjectStore
	cfg    Config
	logger *slog.Logger
}

var _ ports.ItemProcessor = (*Processor)(nil)

func New(store ObjectStore, cfg Config, logger *slog.Logger) (*Processor, error) {
	if store == nil {
		return nil, errs.NewValueIsRequiredError("store")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Processor{
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "storage_processor"),
	}, nil
}

func (p *Processor) ProcessItemOnlineAccess(ctx context.Context, req ports.ProcessItemRequest) (ports.ProcessItemResult, error) {
	if req.Identifier == "" {
		return ports.ProcessItemResult{}, errs.NewValueIsRequiredError("identifier")
	}

	data, err := p.store.Download(p.cfg.SourceBucket, req.Identifier)
	if err != nil {
		return ports.ProcessItemResult{}, err
	}
	if err = ctx.Err(); err != nil {
		return ports.ProcessItemResult{}, err
	}

	target := path.Join("orders", req.OrderID, req.ItemID, path.Base(req.Identifier))
	if err = p.store.Upload(p.cfg.DeliveryBucket, target, contentTypeBinary, data); err != nil {
		return ports.ProcessItemResult{}, err
	}

	p.logger.DebugContext(ctx, "item delivered",
		"order_id", req.OrderID, "item_id", req.ItemID, "path", target, "bytes", len(data))
	return ports.ProcessItemResult{
		URLs:    []string{p.store.PublicURL(p.cfg.DeliveryBucket, target)},
		Details: describe(req.Options, len(data)),
	}, nil
}

func (p *Processor) PackageFiles(ctx context.Context, packaging order.Packaging, domain string, fileURLs []string) (string, error) {
	if packaging != order.PackagingZip {
		return "", errs.NewValueIsInvalidErrorWithCause("packaging", fmt.Errorf("%q cannot be produced", packaging))
	}
	if len(fileURLs) == 0 {
		return "", errs.NewValueIsRequiredError("fileURLs")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, url := range fileURLs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		objectPath, err := p.objectPath(url)
		if err != nil {
			return "", err
		}
		data, err := p.store.Download(p.cfg.DeliveryBucket, objectPath)
		if err != nil {
			return "", err
		}
		w, err := zw.Create(entryName(objectPath))
		if err != nil {
			return "", err
		}
		if _, err = w.Write(data); err != nil {
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		return "", err
	}

	target := path.Join("packages", domain, kernel.NewUUID().String()+".zip")
	if err := p.store.Upload(p.cfg.DeliveryBucket, target, contentTypeZip, buf.Bytes()); err != nil {
		return "", err
	}

	p.logger.InfoContext(ctx, "files packaged", "path", target, "files", len(fileURLs), "bytes", buf.Len())
	return p.store.PublicURL(p.cfg.DeliveryBucket, target), nil
}

// CleanFiles removes delivered objects. URLs outside the delivery bucket are
// skipped with a warning: they were not produced here.
func (p *Processor) CleanFiles(ctx context.Context, fileURLs []string) error {
	paths := make([]string, 0, len(fileURLs))
	for _, url := range fileURLs {
		objectPath, err := p.objectPath(url)
		if err != nil {
			p.logger.WarnContext(ctx, "skipping foreign file", "url", url)
			continue
		}
		paths = append(paths, objectPath)
	}
	if len(paths) == 0 {
		return nil
	}
	return p.store.Remove(p.cfg.DeliveryBucket, paths)
}

func (p *Processor) GetSubscriptionBatchIdentifiers(_ context.Context, timeslot time.Time, collection string) ([]string, error) {
	prefix := path.Join(collection, timeslot.UTC().Format("2006/01/02"))
	names, err := p.store.List(p.cfg.SourceBucket, prefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || strings.HasSuffix(n, "/") {
			continue
		}
		ids = append(ids, path.Join(prefix, n))
	}
	slices.Sort(ids)
	return ids, nil
}

func (p *Processor) ParseOption(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errs.NewValueIsRequiredError(name)
	}
	if name != "format" {
		return value, nil
	}
	for _, f := range supportedFormats {
		if strings.EqualFold(f, value) {
			return f, nil
		}
	}
	return "", errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("unsupported format %q", value))
}

// objectPath maps a public URL of the delivery bucket back to its object path.
func (p *Processor) objectPath(url string) (string, error) {
	prefix := p.store.PublicURL(p.cfg.DeliveryBucket, "")
	objectPath, ok := strings.CutPrefix(url, prefix)
	if !ok || objectPath == "" {
		return "", errs.NewValueIsInvalidErrorWithCause("url", fmt.Errorf("%s is not in bucket %s", url, p.cfg.DeliveryBucket))
	}
	return objectPath, nil
}

// entryName keeps the item directory so that equally named products of
// different items do not collide inside the archive.
func entryName(objectPath string) string {
	dir, base := path.Split(objectPath)
	return path.Join(path.Base(dir), base)
}

func describe(options map[string]string, size int) string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+options[k])
	}
	if len(parts) == 0 {
		return fmt.Sprintf("copied %d bytes", size)
	}
	return fmt.Sprintf("copied %d bytes with %s", size, strings.Join(parts, ", "))
}
