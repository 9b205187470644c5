package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"inkwell/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Aside serves dest from Redis when key is present, otherwise runs fetch to fill dest
// and stores the JSON encoding for ttl. Fetch errors are returned and never cached.
// Without a Redis client it simply calls fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return nil
		}
		client.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	if err := fetch(); err != nil {
		return err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil
	}
	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}
