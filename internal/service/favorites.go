package service

import (
	"context"
	"fmt"

	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/repository"
)

// FavoriteCounter groups books by author or genre for the majority vote.
type FavoriteCounter interface {
	FavoriteCounts(ctx context.Context, field repository.GroupField, bookIDs []string) ([]model.KeyCount, error)
}

// computeFavorites runs the author and genre votes over bookIDs.
// Each distinct book votes once.
func computeFavorites(ctx context.Context, store FavoriteCounter, bookIDs []string) (model.Favorites, error) {
	authors, err := store.FavoriteCounts(ctx, repository.GroupByAuthor, bookIDs)
	if err != nil {
		return model.Favorites{}, fmt.Errorf("count authors: %w", err)
	}
	genres, err := store.FavoriteCounts(ctx, repository.GroupByGenre, bookIDs)
	if err != nil {
		return model.Favorites{}, fmt.Errorf("count genres: %w", err)
	}
	return model.Favorites{
		Author: pickFavorite(authors),
		Genre:  pickFavorite(genres),
	}, nil
}

// pickFavorite returns the key with the highest count. Ties go to the
// lexicographically smallest key. An empty vote yields model.NoFavorite.
func pickFavorite(counts []model.KeyCount) string {
	best := -1
	for i, kc := range counts {
		if best < 0 ||
			kc.Count > counts[best].Count ||
			(kc.Count == counts[best].Count && kc.Key < counts[best].Key) {
			best = i
		}
	}
	if best < 0 {
		return model.NoFavorite
	}
	return counts[best].Key
}
