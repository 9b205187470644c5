// Package notifications carries reaction notifications over Redis pub/sub.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"

	"inkwell/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// ReactionPattern matches every reaction channel.
const ReactionPattern = "reactions:*"

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishReaction sends a reaction payload to the target's channel.
func (n *Notifier) PublishReaction(ctx context.Context, targetType string, targetID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, ReactionChannel(targetType, targetID), payload).Err()
}

// StartReactionSubscriber subscribes to every reaction channel and calls onMessage
// for each incoming message until ctx is cancelled.
func (n *Notifier) StartReactionSubscriber(ctx context.Context, onMessage func(channel string, payload string)) error {
	return n.subscribe(ctx, "ReactionSubscriber", onMessage, ReactionPattern)
}

func (n *Notifier) subscribe(ctx context.Context, name string, onMessage func(string, string), patterns ...string) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, patterns...)
	// Wait for the subscription to be confirmed so publishes right after return are seen.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %v: %w", patterns, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in "+name,
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// ReactionChannel derives the Redis channel name for a reaction target, e.g. "reactions:post:7".
func ReactionChannel(targetType string, targetID uint) string {
	return "reactions:" + targetType + ":" + strconv.FormatUint(uint64(targetID), 10)
}
