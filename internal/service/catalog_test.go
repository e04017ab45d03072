package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gurova-J/bookspace-backend/internal/model"
)

func TestTopBooks_AtMostTwentyByRating(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	for i := 0; i < 25; i++ {
		store.addBook(fmt.Sprintf("b%02d", i), "Book", "Author", "Genre", float64(i%7)+0.5)
	}
	svc := NewCatalogService(store, nil, nil, nil)

	books, err := svc.TopBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, TopBooksLimit)
	for i := 1; i < len(books); i++ {
		assert.GreaterOrEqual(t, books[i-1].Rating, books[i].Rating)
	}
}

func TestTopBooks_CachedUntilBookCreated(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.addBook("a", "1984", "Orwell", "Dystopia", 4.5)
	views := newFakeViews()
	svc := NewCatalogService(store, views, views, nil)
	ctx := context.Background()

	books, err := svc.TopBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)

	store.addBook("b", "We", "Zamyatin", "Dystopia", 4.8)
	books, err = svc.TopBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1, "served from cache")

	_, err = svc.CreateBook(ctx, CreateBookInput{Title: "Emma", Author: "Austen", Genre: "Romance", Pages: 400})
	require.NoError(t, err)

	books, err = svc.TopBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 3)
	assert.Equal(t, "b", books[0].ID)
}

func TestCreateBook_DropsCachedRecommendations(t *testing.T) {
	t.Parallel()
	views := newFakeViews()
	views.recs["u1"] = &model.Recommendations{Books: []model.BookSummary{{ID: "a"}}}
	views.recs["u2"] = &model.Recommendations{NoHistory: true}
	svc := NewCatalogService(newFakeStore(), views, views, nil)

	_, err := svc.CreateBook(context.Background(), CreateBookInput{Title: "Emma", Author: "Austen", Genre: "Romance"})
	require.NoError(t, err)

	assert.Empty(t, views.recs)
	assert.Contains(t, views.invalidated, "recommendations")
}

func TestCreateBook_Validation(t *testing.T) {
	t.Parallel()
	svc := NewCatalogService(newFakeStore(), nil, nil, nil)

	testCases := []struct {
		name  string
		input CreateBookInput
	}{
		{"missing title", CreateBookInput{Author: "A", Genre: "G"}},
		{"blank author", CreateBookInput{Title: "T", Author: "  ", Genre: "G"}},
		{"missing genre", CreateBookInput{Title: "T", Author: "A"}},
		{"negative pages", CreateBookInput{Title: "T", Author: "A", Genre: "G", Pages: -1}},
	}

	for _, tc := range testCases {
		_, err := svc.CreateBook(context.Background(), tc.input)
		assert.ErrorIs(t, err, ErrInvalidInput, tc.name)
	}
}

func TestGetBook(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.addBook("a", "1984", "Orwell", "Dystopia", 4.5)
	views := newFakeViews()
	svc := NewCatalogService(store, views, nil, nil)
	ctx := context.Background()

	book, err := svc.GetBook(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1984", book.Title)
	assert.Contains(t, views.books, "a")

	_, err = svc.GetBook(ctx, "missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestSearch(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.addBook("a", "1984", "George Orwell", "Dystopia", 4.5)
	store.addBook("b", "Emma", "Jane Austen", "Romance", 4.0)
	svc := NewCatalogService(store, nil, nil, nil)
	ctx := context.Background()

	books, err := svc.Search(ctx, "  orwell ")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "a", books[0].ID)

	books, err = svc.Search(ctx, "ROMANCE")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "b", books[0].ID)

	_, err = svc.Search(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
