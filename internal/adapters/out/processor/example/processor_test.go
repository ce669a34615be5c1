package example_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/processor/example"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcessor() *example.Processor {
	return example.New("https://example.org", slog.New(slog.DiscardHandler))
}

func TestProcessor(t *testing.T) {
	t.Run("should report one placeholder output per item", func(t *testing.T) {
		result, err := newProcessor().ProcessItemOnlineAccess(t.Context(), ports.ProcessItemRequest{
			Identifier: "S2_1", ItemID: "a", OrderID: "o-1",
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.org/orders/o-1/a/fakeorder"}, result.URLs)
		assert.Equal(t, "Pretending to be a file", result.Details)
	})

	t.Run("should stop when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := newProcessor().ProcessItemOnlineAccess(ctx, ports.ProcessItemRequest{ItemID: "a"})

		assert.Error(t, err)
	})

	t.Run("should name the package after the domain", func(t *testing.T) {
		url, err := newProcessor().PackageFiles(t.Context(), order.PackagingZip, "example.org", []string{"a", "b"})

		require.NoError(t, err)
		assert.Equal(t, "https://example.org/packages/example.org/fake_package.zip", url)
	})

	t.Run("should return the fixed subscription identifier", func(t *testing.T) {
		ids, err := newProcessor().GetSubscriptionBatchIdentifiers(t.Context(), time.Now(), "sentinel2")

		require.NoError(t, err)
		assert.Equal(t, []string{example.SubscriptionIdentifier}, ids)
	})

	t.Run("should accept options and deletions unchanged", func(t *testing.T) {
		p := newProcessor()

		value, err := p.ParseOption("format", "GeoTIFF")

		require.NoError(t, err)
		assert.Equal(t, "GeoTIFF", value)
		assert.NoError(t, p.CleanFiles(t.Context(), []string{"gone"}))
	})
}
