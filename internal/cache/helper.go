package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"launchpad/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	ActiveProductsKey = "products:active"
	CategoriesKey     = "categories:all"
)

const (
	ActiveProductsTTL = 2 * time.Minute
	CategoriesTTL     = 10 * time.Minute
)

// GetJSON reads key into dest. Returns (true, nil) on a hit and (false, nil) on a miss.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with ttl.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on a miss (or a Redis failure) it calls fetch, which
// must populate dest, and stores the result with ttl on a best-effort basis.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err == nil && found {
		observability.CacheLookups.WithLabelValues(key, "hit").Inc()
		return nil
	}
	observability.CacheLookups.WithLabelValues(key, "miss").Inc()

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate deletes key. A nil client is a no-op.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateActiveProducts drops the cached public feed.
func InvalidateActiveProducts(ctx context.Context) {
	Invalidate(ctx, ActiveProductsKey)
}

func InvalidateCategories(ctx context.Context) {
	Invalidate(ctx, CategoriesKey)
}
