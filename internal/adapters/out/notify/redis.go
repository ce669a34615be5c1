// Package notify implements the notification boundary: events are published
// as JSON on a redis channel and written to the structured log.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fulfillment/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// Publisher is the part of the redis client the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// NewRedisClient connects to redis and checks the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisNotifier publishes every event on one channel.
type RedisNotifier struct {
	publisher Publisher
	channel   string
	logger    *slog.Logger
}

var _ ports.Notifier = (*RedisNotifier)(nil)

func NewRedisNotifier(publisher Publisher, channel string, logger *slog.Logger) *RedisNotifier {
	return &RedisNotifier{
		publisher: publisher,
		channel:   channel,
		logger:    logger.With("component", "redis_notifier"),
	}
}

func (n *RedisNotifier) Notify(ctx context.Context, event ports.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Kind, err)
	}

	receivers, err := n.publisher.Publish(ctx, n.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Kind, err)
	}

	n.logger.DebugContext(ctx, "event published",
		"kind", string(event.Kind), "channel", n.channel, "receivers", receivers)
	return nil
}
