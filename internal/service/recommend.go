package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Gurova-J/bookspace-backend/internal/metrics"
	"github.com/Gurova-J/bookspace-backend/internal/model"
)

// RecommendationLimit caps the number of recommended books.
const RecommendationLimit = 20

// RecommendStore is the storage read by the recommendation engine.
type RecommendStore interface {
	FavoriteCounter
	LibraryBookIDs(ctx context.Context, userID string) ([]string, error)
	RecommendBooks(ctx context.Context, author, genre string, excludeIDs []string, limit int) ([]model.BookSummary, error)
}

// RecommendCache stores computed recommendations per user.
type RecommendCache interface {
	GetRecommendations(ctx context.Context, userID string) (*model.Recommendations, error)
	SetRecommendations(ctx context.Context, userID string, recs *model.Recommendations) error
}

// RecommendationService suggests unread books by the reader's favorite author or genre.
type RecommendationService struct {
	store   RecommendStore
	cache   RecommendCache
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewRecommendationService creates a new RecommendationService. cache may be nil.
func NewRecommendationService(store RecommendStore, cache RecommendCache, logger *slog.Logger, recorder metrics.Recorder) *RecommendationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RecommendationService{
		store:   store,
		cache:   cache,
		logger:  componentLogger(logger, "service.recommend"),
		metrics: recorder,
	}
}

// Recommend returns books by the favorite author or in the favorite genre of
// the whole library, best rated first, never one already in the library.
// An empty library yields NoHistory instead of an empty list.
func (s *RecommendationService) Recommend(ctx context.Context, userID string) (*model.Recommendations, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetRecommendations(ctx, userID); err == nil {
			s.record(cached)
			return cached, nil
		}
	}

	recs, err := s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.record(recs)

	if s.cache != nil {
		if err := s.cache.SetRecommendations(ctx, userID, recs); err != nil {
			s.logger.Debug("recommendation cache write failed", "user_id", userID, "error", err)
		}
	}
	return recs, nil
}

func (s *RecommendationService) compute(ctx context.Context, userID string) (*model.Recommendations, error) {
	libraryIDs, err := s.store.LibraryBookIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	if len(libraryIDs) == 0 {
		return &model.Recommendations{NoHistory: true}, nil
	}

	fav, err := computeFavorites(ctx, s.store, libraryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute favorites: %w", err)
	}

	books, err := s.store.RecommendBooks(ctx, fav.Author, fav.Genre, libraryIDs, RecommendationLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to select recommendations: %w", err)
	}
	if books == nil {
		books = []model.BookSummary{}
	}
	return &model.Recommendations{Books: books}, nil
}

func (s *RecommendationService) record(recs *model.Recommendations) {
	if recs.NoHistory {
		s.metrics.IncRecommendation(metrics.RecommendationNoHistory)
		return
	}
	s.metrics.IncRecommendation(metrics.RecommendationServed)
}
