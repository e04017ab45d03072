package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gurova-J/bookspace-backend/internal/model"
)

const (
	// authCachePrefix is the Redis key prefix for auth context cache.
	authCachePrefix = "auth:ctx:"
	// authCacheTTL is the upper bound for cached auth contexts.
	authCacheTTL = 5 * time.Minute
)

// GetAuthContext retrieves a cached auth context by cache key.
// Returns nil if not found (cache miss).
func (c *Cache) GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error) {
	key := authCachePrefix + cacheKey

	var data []byte
	err := c.guard(func() error {
		var err error
		data, err = c.client.Get(ctx, key).Bytes()
		return err
	})
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached model.AuthContext
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &cached, nil
}

// SetAuthContext caches an auth context. The entry never outlives the session.
func (c *Cache) SetAuthContext(ctx context.Context, cacheKey string, auth *model.AuthContext) error {
	ttl := authCacheTTL
	if !auth.ExpiresAt.IsZero() {
		if left := time.Until(auth.ExpiresAt); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}

	key := authCachePrefix + cacheKey
	return c.guard(func() error {
		return c.client.Set(ctx, key, data, ttl).Err()
	})
}

// DeleteAuthContext removes a cached auth context.
// Used on logout.
func (c *Cache) DeleteAuthContext(ctx context.Context, cacheKey string) error {
	key := authCachePrefix + cacheKey
	return c.guard(func() error {
		return c.client.Del(ctx, key).Err()
	})
}
