package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	BlogKeyPrefix = "blog:%d"
	UserKeyPrefix = "user:%d"
)

const (
	BlogTTL = 10 * time.Minute
	UserTTL = 5 * time.Minute
)

func BlogKey(blogID uint) string {
	return fmt.Sprintf(BlogKeyPrefix, blogID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateBlog(ctx context.Context, blogID uint) {
	Invalidate(ctx, BlogKey(blogID))
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
