package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Gurova-J/bookspace-backend/internal/cache"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/repository"
)

const (
	// TopBooksLimit caps the top books list.
	TopBooksLimit = 20
	// SearchLimit caps search results.
	SearchLimit = 50
)

// CatalogStore is the book storage.
type CatalogStore interface {
	CreateBook(ctx context.Context, book *model.Book) error
	GetBookByID(ctx context.Context, id string) (*model.Book, error)
	TopBooks(ctx context.Context, limit int) ([]model.BookSummary, error)
	SearchBooks(ctx context.Context, query string, limit int) ([]model.BookSummary, error)
}

// BookCache caches single books.
type BookCache interface {
	GetBook(ctx context.Context, id string) (*model.Book, error)
	SetBook(ctx context.Context, book *model.Book) error
}

// TopBooksCache caches the top books list.
type TopBooksCache interface {
	GetTopBooks(ctx context.Context) ([]model.BookSummary, error)
	SetTopBooks(ctx context.Context, books []model.BookSummary) error
	InvalidateTopBooks(ctx context.Context) error
	InvalidateRecommendations(ctx context.Context) error
}

// CatalogService handles book lookups and admin book creation.
type CatalogService struct {
	store  CatalogStore
	books  BookCache
	top    TopBooksCache
	logger *slog.Logger
}

// NewCatalogService creates a new CatalogService. Both caches may be nil.
func NewCatalogService(store CatalogStore, books BookCache, top TopBooksCache, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		books:  books,
		top:    top,
		logger: componentLogger(logger, "service.catalog"),
	}
}

// CreateBookInput defines input for creating a book.
type CreateBookInput struct {
	Title  string
	Author string
	Genre  string
	Pages  int
}

// CreateBook adds a book to the catalog.
func (s *CatalogService) CreateBook(ctx context.Context, input CreateBookInput) (*model.Book, error) {
	book := &model.Book{
		ID:        newID(),
		Title:     strings.TrimSpace(input.Title),
		Author:    strings.TrimSpace(input.Author),
		Genre:     strings.TrimSpace(input.Genre),
		Pages:     input.Pages,
		CreatedAt: time.Now().UTC(),
	}
	if book.Title == "" || book.Author == "" || book.Genre == "" || book.Pages < 0 {
		return nil, ErrInvalidInput
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	if s.top != nil {
		_ = s.top.InvalidateTopBooks(ctx)
		if err := s.top.InvalidateRecommendations(ctx); err != nil {
			s.logger.Debug("recommendation invalidation failed", "error", err)
		}
	}
	return book, nil
}

// GetBook retrieves a book by ID, cache first.
func (s *CatalogService) GetBook(ctx context.Context, id string) (*model.Book, error) {
	if s.books != nil {
		book, err := s.books.GetBook(ctx, id)
		if err == nil {
			return book, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Debug("book cache read failed", "book_id", id, "error", err)
		}
	}

	book, err := s.store.GetBookByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	if s.books != nil {
		if err := s.books.SetBook(ctx, book); err != nil {
			s.logger.Debug("book cache write failed", "book_id", id, "error", err)
		}
	}
	return book, nil
}

// TopBooks returns the best rated books of the catalog.
func (s *CatalogService) TopBooks(ctx context.Context) ([]model.BookSummary, error) {
	if s.top != nil {
		if books, err := s.top.GetTopBooks(ctx); err == nil {
			return books, nil
		}
	}

	books, err := s.store.TopBooks(ctx, TopBooksLimit)
	if err != nil {
		return nil, err
	}

	if s.top != nil {
		if err := s.top.SetTopBooks(ctx, books); err != nil {
			s.logger.Debug("top books cache write failed", "error", err)
		}
	}
	return books, nil
}

// Search finds books whose title, author or genre contains query.
func (s *CatalogService) Search(ctx context.Context, query string) ([]model.BookSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidInput
	}
	return s.store.SearchBooks(ctx, query, SearchLimit)
}
