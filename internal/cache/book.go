package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gurova-J/bookspace-backend/internal/model"
)

// Cache key prefixes and TTLs.
const (
	bookKeyPrefix = "book:"

	// DefaultBookTTL is the TTL for cached book data.
	DefaultBookTTL = 24 * time.Hour
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetBook retrieves a book from cache by id.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetBook(ctx context.Context, id string) (*model.Book, error) {
	key := bookKeyPrefix + id

	var cached model.CachedBook
	found := false
	err := c.guard(func() error {
		cmd := c.client.HGetAll(ctx, key)
		result, err := cmd.Result()
		if err != nil {
			return err
		}
		if len(result) == 0 {
			return nil
		}
		found = true
		return cmd.Scan(&cached)
	})
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if !found {
		return nil, ErrCacheMiss
	}

	return cached.ToBook(id), nil
}

// SetBook stores a book in cache.
func (c *Cache) SetBook(ctx context.Context, book *model.Book) error {
	key := bookKeyPrefix + book.ID
	cached := book.ToCachedBook()

	err := c.guard(func() error {
		pipe := c.client.Pipeline()
		pipe.HSet(ctx, key, *cached)
		pipe.Expire(ctx, key, DefaultBookTTL)
		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to cache book: %w", err)
	}
	return nil
}

// DeleteBooks removes books from cache. Used after ratings are recalculated.
func (c *Cache) DeleteBooks(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = bookKeyPrefix + id
	}

	err := c.guard(func() error {
		return c.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to delete books from cache: %w", err)
	}
	return nil
}
