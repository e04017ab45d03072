package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Gurova-J/bookspace-backend/internal/model"
)

// Key layout for derived read models. Per-user keys are dropped whenever the
// user's library or plan changes. Stats keys carry the calendar day the
// window was computed for, so a cached week never outlives its day.
const (
	topBooksKey     = "view:top_books"
	recommendPrefix = "view:recommend:"
	statsPrefix     = "view:stats:"
)

// scanBatch is the SCAN COUNT hint and the UNLINK batch size.
const scanBatch = 200

var statsKinds = []model.RangeKind{model.RangeWeek, model.RangeMonth, model.RangeYear}

// Views caches JSON read models with a shared TTL.
type Views struct {
	cache *Cache
	ttl   time.Duration
}

// NewViews creates a view cache on top of c.
func NewViews(c *Cache, ttl time.Duration) *Views {
	return &Views{cache: c, ttl: ttl}
}

func recommendKey(userID string) string { return recommendPrefix + userID }

func statsKey(userID string, kind model.RangeKind, day time.Time) string {
	return statsPrefix + userID + ":" + string(kind) + ":" + day.Format("2006-01-02")
}

// GetTopBooks returns the cached top books list.
func (v *Views) GetTopBooks(ctx context.Context) ([]model.BookSummary, error) {
	var books []model.BookSummary
	if err := v.get(ctx, topBooksKey, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// SetTopBooks caches the top books list.
func (v *Views) SetTopBooks(ctx context.Context, books []model.BookSummary) error {
	return v.set(ctx, topBooksKey, books)
}

// GetRecommendations returns cached recommendations for a user.
func (v *Views) GetRecommendations(ctx context.Context, userID string) (*model.Recommendations, error) {
	var recs model.Recommendations
	if err := v.get(ctx, recommendKey(userID), &recs); err != nil {
		return nil, err
	}
	return &recs, nil
}

// SetRecommendations caches recommendations for a user.
func (v *Views) SetRecommendations(ctx context.Context, userID string, recs *model.Recommendations) error {
	return v.set(ctx, recommendKey(userID), recs)
}

// GetStats returns cached range stats for a user and day.
func (v *Views) GetStats(ctx context.Context, userID string, kind model.RangeKind, day time.Time) (*model.RangeStats, error) {
	var stats model.RangeStats
	if err := v.get(ctx, statsKey(userID, kind, day), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetStats caches range stats for a user and day. Only week, month and year are cached.
func (v *Views) SetStats(ctx context.Context, userID string, kind model.RangeKind, day time.Time, stats *model.RangeStats) error {
	if _, ok := kind.Days(); !ok {
		return nil
	}
	return v.set(ctx, statsKey(userID, kind, day), stats)
}

// InvalidateUser drops every per-user view for today.
func (v *Views) InvalidateUser(ctx context.Context, userID string) error {
	return v.del(ctx, append(v.todayStatsKeys(userID), recommendKey(userID))...)
}

// InvalidateStats drops today's per-user stats views only.
func (v *Views) InvalidateStats(ctx context.Context, userID string) error {
	return v.del(ctx, v.todayStatsKeys(userID)...)
}

func (v *Views) todayStatsKeys(userID string) []string {
	today := time.Now()
	keys := make([]string, 0, len(statsKinds))
	for _, kind := range statsKinds {
		keys = append(keys, statsKey(userID, kind, today))
	}
	return keys
}

// InvalidateRecommendations drops every reader's cached recommendations.
// New books and recomputed ratings change candidate sets for all readers.
func (v *Views) InvalidateRecommendations(ctx context.Context) error {
	return v.cache.guard(func() error {
		iter := v.cache.client.Scan(ctx, 0, recommendPrefix+"*", scanBatch).Iterator()
		keys := make([]string, 0, scanBatch)
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
			if len(keys) < scanBatch {
				continue
			}
			if err := v.cache.client.Unlink(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) == 0 {
			return nil
		}
		return v.cache.client.Unlink(ctx, keys...).Err()
	})
}

// InvalidateTopBooks drops the cached top books list.
func (v *Views) InvalidateTopBooks(ctx context.Context) error {
	return v.del(ctx, topBooksKey)
}

// InvalidateBooks drops cached book hashes whose rate may have changed.
func (v *Views) InvalidateBooks(ctx context.Context, ids ...string) error {
	return v.cache.DeleteBooks(ctx, ids...)
}

func (v *Views) get(ctx context.Context, key string, dst any) error {
	var data []byte
	err := v.cache.guard(func() error {
		var err error
		data, err = v.cache.client.Get(ctx, key).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return ErrCacheMiss
	}
	return nil
}

func (v *Views) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return v.cache.guard(func() error {
		return v.cache.client.Set(ctx, key, data, v.ttl).Err()
	})
}

func (v *Views) del(ctx context.Context, keys ...string) error {
	return v.cache.guard(func() error {
		return v.cache.client.Del(ctx, keys...).Err()
	})
}
