package orchestrator

import (
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func batchAttributes(batchID kernel.UUID) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String("fulfillment.batch_id", batchID.String())}
}

func itemAttributes(batchID, itemID kernel.UUID) []attribute.KeyValue {
	return append(batchAttributes(batchID), attribute.String("fulfillment.item_id", itemID.String()))
}

func statusAttributes(result commands.UpdateOrderStatusResult) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("fulfillment.batch_status", result.BatchStatus.String()),
		attribute.String("fulfillment.order_status", result.OrderStatus.String()),
		attribute.Bool("fulfillment.notified", result.Notified),
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
