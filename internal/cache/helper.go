package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	PostKeyPrefix = "post:%d"
	ExploreKey    = "posts:explore"
)

const (
	UserTTL    = 5 * time.Minute
	PostTTL    = 30 * time.Minute
	ExploreTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// Aside implements the cache-aside pattern: serve dest from Redis when the
// key is present, otherwise run fetch and store its result. A nil client or
// any Redis error degrades to a plain fetch.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	if raw, err := client.Get(ctx, key).Bytes(); err == nil {
		if json.Unmarshal(raw, dest) == nil {
			return nil
		}
	}

	if err := fetch(); err != nil {
		return err
	}

	if raw, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, raw, ttl)
	}
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateExplore(ctx context.Context) {
	Invalidate(ctx, ExploreKey)
}
