package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/repository"
)

// ReviewStore is the review storage.
type ReviewStore interface {
	GetBookByID(ctx context.Context, id string) (*model.Book, error)
	CreateReview(ctx context.Context, review *model.Review) error
	ListReviewsByBook(ctx context.Context, bookID string) ([]model.Review, error)
	HasReview(ctx context.Context, userID, bookID string) (bool, error)
}

// ReviewService handles book reviews.
type ReviewService struct {
	store ReviewStore
}

// NewReviewService creates a new ReviewService.
func NewReviewService(store ReviewStore) *ReviewService {
	return &ReviewService{store: store}
}

// ListReviews returns the reviews of a book and whether userID may still write one.
func (s *ReviewService) ListReviews(ctx context.Context, userID, bookID string) (*model.BookReviews, error) {
	if err := s.ensureBook(ctx, bookID); err != nil {
		return nil, err
	}

	reviews, err := s.store.ListReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	written, err := s.store.HasReview(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	return &model.BookReviews{Reviews: reviews, CanWrite: !written}, nil
}

// CreateReview stores the user's review of a book. One review per book.
func (s *ReviewService) CreateReview(ctx context.Context, userID, bookID, text string) (*model.Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrInvalidInput
	}
	if err := s.ensureBook(ctx, bookID); err != nil {
		return nil, err
	}

	review := &model.Review{
		ID:        newID(),
		UserID:    userID,
		BookID:    bookID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateReview(ctx, review); err != nil {
		switch {
		case errors.Is(err, repository.ErrReviewExists):
			return nil, ErrAlreadyReviewed
		case errors.Is(err, repository.ErrBookNotFound):
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

func (s *ReviewService) ensureBook(ctx context.Context, bookID string) error {
	if _, err := s.store.GetBookByID(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	return nil
}
