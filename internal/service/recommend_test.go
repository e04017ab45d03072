package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gurova-J/bookspace-backend/internal/metrics"
	"github.com/Gurova-J/bookspace-backend/internal/model"
)

func TestRecommend_EmptyLibraryIsNoHistory(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.addBook("a", "1984", "Orwell", "Dystopia", 4.5)
	recorder := metrics.NewInMemory()
	svc := NewRecommendationService(store, nil, nil, recorder)

	recs, err := svc.Recommend(context.Background(), "u")
	require.NoError(t, err)
	assert.True(t, recs.NoHistory)
	assert.Nil(t, recs.Books)
	assert.Equal(t, uint64(1), recorder.Snapshot().Recommendations[metrics.RecommendationNoHistory])
}

func TestRecommend_EmptyResultIsNotNoHistory(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.addBook("a", "1984", "Orwell", "Dystopia", 4.5)
	store.addEntry("u", "a", model.StatusWantToRead, time.Now())
	svc := NewRecommendationService(store, nil, nil, nil)

	recs, err := svc.Recommend(context.Background(), "u")
	require.NoError(t, err)
	assert.False(t, recs.NoHistory)
	assert.NotNil(t, recs.Books)
	assert.Empty(t, recs.Books)
}

func TestRecommend_ExcludesLibraryAndOrdersByRating(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.addBook("a", "1984", "Orwell", "Dystopia", 4.5)
	store.addBook("b", "Animal Farm", "Orwell", "Satire", 3.0)
	store.addBook("c", "Homage to Catalonia", "Orwell", "Memoir", 4.1)
	store.addBook("d", "We", "Zamyatin", "Dystopia", 4.8)
	store.addBook("e", "Burmese Days", "Orwell", "Novel", 3.9)
	store.addBook("f", "Emma", "Austen", "Romance", 4.9)

	// All lists count, and both Orwell books in the library are excluded.
	store.addEntry("u", "a", model.StatusDone, time.Now())
	store.addEntry("u", "b", model.StatusWantToRead, time.Now())
	svc := NewRecommendationService(store, nil, nil, nil)

	recs, err := svc.Recommend(context.Background(), "u")
	require.NoError(t, err)
	require.False(t, recs.NoHistory)

	ids := make([]string, len(recs.Books))
	for i, b := range recs.Books {
		ids[i] = b.ID
	}
	// Favorite genre ties Dystopia vs Satire and resolves to Dystopia.
	assert.Equal(t, []string{"d", "c", "e"}, ids)
	for i := 1; i < len(recs.Books); i++ {
		assert.GreaterOrEqual(t, recs.Books[i-1].Rating, recs.Books[i].Rating)
	}
}

func TestRecommend_CapsAtLimit(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.addBook("seed", "Seed", "Prolific", "Genre", 1)
	store.addEntry("u", "seed", model.StatusDone, time.Now())
	for i := 0; i < 30; i++ {
		id := newID()
		store.addBook(id, "Book "+id, "Prolific", "Other", float64(i%5))
	}
	svc := NewRecommendationService(store, nil, nil, nil)

	recs, err := svc.Recommend(context.Background(), "u")
	require.NoError(t, err)
	assert.Len(t, recs.Books, RecommendationLimit)
	for _, b := range recs.Books {
		assert.NotEqual(t, "seed", b.ID)
	}
}

func TestRecommend_ServesFromCache(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	views := newFakeViews()
	svc := NewRecommendationService(store, views, nil, nil)
	ctx := context.Background()

	recs, err := svc.Recommend(ctx, "u")
	require.NoError(t, err)
	require.True(t, recs.NoHistory)

	store.addBook("a", "1984", "Orwell", "Dystopia", 4.5)
	store.addEntry("u", "a", model.StatusDone, time.Now())

	cached, err := svc.Recommend(ctx, "u")
	require.NoError(t, err)
	assert.True(t, cached.NoHistory)

	require.NoError(t, views.InvalidateUser(ctx, "u"))
	fresh, err := svc.Recommend(ctx, "u")
	require.NoError(t, err)
	assert.False(t, fresh.NoHistory)
}
