package notify

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/ports"
)

// LogNotifier writes events to the log. Alerts are logged at warn level.
type LogNotifier struct {
	logger *slog.Logger
}

var _ ports.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "notifications")}
}

func (n *LogNotifier) Notify(ctx context.Context, event ports.Event) error {
	level := slog.LevelInfo
	if isAlert(event.Kind) {
		level = slog.LevelWarn
	}

	attrs := []any{
		"kind", string(event.Kind),
		"order_id", event.OrderID,
		"occurred_at", event.OccurredAt,
	}
	if event.BatchID != "" {
		attrs = append(attrs, "batch_id", event.BatchID)
	}
	if event.UserName != "" {
		attrs = append(attrs, "user_name", event.UserName)
	}
	if event.Message != "" {
		attrs = append(attrs, "message", event.Message)
	}
	if len(event.URLs) > 0 {
		attrs = append(attrs, "urls", event.URLs)
	}

	n.logger.Log(ctx, level, "notification", attrs...)
	return nil
}

func isAlert(kind ports.EventKind) bool {
	return kind == ports.BatchPackagingFailed || kind == ports.CleanupFailed
}
