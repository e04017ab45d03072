package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Gurova-J/bookspace-backend/internal/metrics"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/repository"
)

// StatsStore is the storage read by the aggregation engine.
type StatsStore interface {
	FavoriteCounter
	DoneBookIDsBetween(ctx context.Context, userID string, from, to time.Time) ([]string, error)
	GetPlanTargets(ctx context.Context, userID string) (*model.PlanTargets, error)
}

// StatsCache stores computed stats per user, range and day.
type StatsCache interface {
	GetStats(ctx context.Context, userID string, kind model.RangeKind, day time.Time) (*model.RangeStats, error)
	SetStats(ctx context.Context, userID string, kind model.RangeKind, day time.Time, stats *model.RangeStats) error
}

// StatsService computes reading statistics over a time window.
type StatsService struct {
	store   StatsStore
	cache   StatsCache
	logger  *slog.Logger
	metrics metrics.Recorder
	now     Clock
}

// NewStatsService creates a new StatsService. cache may be nil.
func NewStatsService(store StatsStore, cache StatsCache, logger *slog.Logger, recorder metrics.Recorder) *StatsService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &StatsService{
		store:   store,
		cache:   cache,
		logger:  componentLogger(logger, "service.stats"),
		metrics: recorder,
		now:     time.Now,
	}
}

// GetStats returns the stats of the window ending today, served from cache when possible.
func (s *StatsService) GetStats(ctx context.Context, userID string, kind model.RangeKind) (*model.RangeStats, error) {
	today := s.now()

	if s.cache != nil {
		if cached, err := s.cache.GetStats(ctx, userID, kind, today); err == nil {
			s.metrics.IncStatsComputed(string(kind), true)
			return cached, nil
		}
	}

	start := time.Now()
	stats, err := s.ComputeRangeStats(ctx, userID, kind, today)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveStatsDuration(time.Since(start))
	s.metrics.IncStatsComputed(string(kind), false)

	if s.cache != nil {
		if err := s.cache.SetStats(ctx, userID, kind, today, stats); err != nil {
			s.logger.Debug("stats cache write failed", "user_id", userID, "error", err)
		}
	}
	return stats, nil
}

// ComputeRangeStats counts finished books added in the window ending today,
// votes the favorite author and genre among them and relates the count to
// the plan target of the range.
func (s *StatsService) ComputeRangeStats(ctx context.Context, userID string, kind model.RangeKind, today time.Time) (*model.RangeStats, error) {
	from, to := statsWindow(today, kind)

	bookIDs, err := s.store.DoneBookIDsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load finished books: %w", err)
	}

	info := model.StatsInfo{
		Count:          len(bookIDs),
		FavoriteAuthor: model.NoFavorite,
		FavoriteGenre:  model.NoFavorite,
	}
	if info.Count > 0 {
		fav, err := computeFavorites(ctx, s.store, bookIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to compute favorites: %w", err)
		}
		info.FavoriteAuthor = fav.Author
		info.FavoriteGenre = fav.Genre
	}

	plan, err := s.store.GetPlanTargets(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load plan targets: %w", err)
	}
	divide := plan.For(kind)

	return &model.RangeStats{
		Info: info,
		Plan: model.PlanProgress{
			Target:  divide,
			Count:   info.Count,
			Percent: formatPercent(info.Count, divide),
		},
	}, nil
}

// statsWindow returns the inclusive calendar window for kind ending today.
// Unknown kinds give the zero-width window today..today.
func statsWindow(today time.Time, kind model.RangeKind) (from, to time.Time) {
	days, _ := kind.Days()
	return today.AddDate(0, 0, -days), today
}

// formatPercent renders count/divide as a percentage rounded to two
// decimals, always with a fractional part: 75.0%, 33.33%.
func formatPercent(count, divide int) string {
	if divide <= 0 {
		return model.NoPlanInfo
	}
	// 'f' with precision 2 rounds exact halves to even: 0.125 -> 0.12.
	fixed := strconv.FormatFloat(float64(count)*100/float64(divide), 'f', 2, 64)
	v, err := strconv.ParseFloat(fixed, 64)
	if err != nil {
		return fixed + "%"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}
