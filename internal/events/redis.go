package events

import (
	"context"
	"fmt"

	"inkwell/internal/notifications"
	"inkwell/internal/observability"
)

// RedisPublisher fans reaction events out over Redis pub/sub on reactions:<type>:<id>.
type RedisPublisher struct {
	n *notifications.Notifier
}

// NewRedisPublisher wraps a Notifier.
func NewRedisPublisher(n *notifications.Notifier) *RedisPublisher {
	return &RedisPublisher{n: n}
}

func (p *RedisPublisher) PublishReaction(ctx context.Context, event ReactionEvent) error {
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "publish")
	defer span.End()

	payload, err := event.Encode()
	if err != nil {
		return fmt.Errorf("encode reaction event: %w", err)
	}
	err = p.n.PublishReaction(ctx, event.TargetType, event.TargetID, string(payload))
	record("redis", err)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error { return nil }
