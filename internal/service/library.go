package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Gurova-J/bookspace-backend/internal/metrics"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/repository"
)

// RecentLimit is the number of entries returned by Recent.
const RecentLimit = 3

// LibraryStore is the per-user library storage.
type LibraryStore interface {
	CreateEntry(ctx context.Context, entry *model.LibraryEntry) error
	GetEntry(ctx context.Context, userID, entryID string) (*model.LibraryEntry, error)
	UpdateEntry(ctx context.Context, entry *model.LibraryEntry) error
	DeleteEntry(ctx context.Context, userID, entryID string) error
	ListShelf(ctx context.Context, userID string, status model.ListStatus) ([]model.ShelfBook, error)
	RecentShelf(ctx context.Context, userID string, limit int) ([]model.ShelfBook, error)
}

// EventPublisher emits library change events without blocking the caller.
type EventPublisher interface {
	PublishAsync(event model.LibraryEvent)
}

// UserViewInvalidator drops the cached views derived from a user's library.
type UserViewInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}

// LibraryService manages the reading lists of a user.
type LibraryService struct {
	store     LibraryStore
	publisher EventPublisher
	views     UserViewInvalidator
	logger    *slog.Logger
	metrics   metrics.Recorder
	now       Clock
}

// NewLibraryService creates a new LibraryService. publisher and views may be nil.
func NewLibraryService(store LibraryStore, publisher EventPublisher, views UserViewInvalidator, logger *slog.Logger, recorder metrics.Recorder) *LibraryService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LibraryService{
		store:     store,
		publisher: publisher,
		views:     views,
		logger:    componentLogger(logger, "service.library"),
		metrics:   recorder,
		now:       time.Now,
	}
}

// AddEntryInput defines input for adding a book to a list.
type AddEntryInput struct {
	BookID string
	Status model.ListStatus
	Rating int
}

// UpdateEntryInput defines input for updating an entry. Nil fields are kept.
type UpdateEntryInput struct {
	Status *model.ListStatus
	Rating *int
}

func validRating(r int) bool {
	return r >= 0 && r <= model.MaxEntryRating
}

// AddEntry puts a book on one of the user's lists. The same book may be added
// more than once.
func (s *LibraryService) AddEntry(ctx context.Context, userID string, input AddEntryInput) (*model.LibraryEntry, error) {
	if input.BookID == "" || !input.Status.IsValid() || !validRating(input.Rating) {
		return nil, ErrInvalidInput
	}

	entry := &model.LibraryEntry{
		ID:      newID(),
		UserID:  userID,
		BookID:  input.BookID,
		Status:  input.Status,
		Rating:  input.Rating,
		AddedAt: s.now(),
	}

	if err := s.store.CreateEntry(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to add library entry: %w", err)
	}

	s.changed(ctx, model.EventEntryAdded, entry)
	return entry, nil
}

// UpdateEntry changes the list or rating of an entry.
func (s *LibraryService) UpdateEntry(ctx context.Context, userID, entryID string, input UpdateEntryInput) (*model.LibraryEntry, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, ErrInvalidInput
	}
	if input.Rating != nil && !validRating(*input.Rating) {
		return nil, ErrInvalidInput
	}

	entry, err := s.store.GetEntry(ctx, userID, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	if input.Status != nil {
		entry.Status = *input.Status
	}
	if input.Rating != nil {
		entry.Rating = *input.Rating
	}

	if err := s.store.UpdateEntry(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to update library entry: %w", err)
	}

	s.changed(ctx, model.EventEntryUpdated, entry)
	return entry, nil
}

// DeleteEntry removes an entry from the user's library.
func (s *LibraryService) DeleteEntry(ctx context.Context, userID, entryID string) error {
	entry, err := s.store.GetEntry(ctx, userID, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return ErrEntryNotFound
		}
		return err
	}

	if err := s.store.DeleteEntry(ctx, userID, entryID); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to delete library entry: %w", err)
	}

	s.changed(ctx, model.EventEntryRemoved, entry)
	return nil
}

// ListShelf returns the books on one of the user's lists.
func (s *LibraryService) ListShelf(ctx context.Context, userID string, status model.ListStatus) ([]model.ShelfBook, error) {
	if !status.IsValid() {
		return nil, ErrInvalidInput
	}
	return s.store.ListShelf(ctx, userID, status)
}

// Recent returns the user's latest additions, newest first.
func (s *LibraryService) Recent(ctx context.Context, userID string) ([]model.ShelfBook, error) {
	return s.store.RecentShelf(ctx, userID, RecentLimit)
}

// changed drops stale views and emits the change event.
func (s *LibraryService) changed(ctx context.Context, kind model.LibraryEventKind, entry *model.LibraryEntry) {
	s.metrics.IncLibraryChange(string(kind))

	if s.views != nil {
		if err := s.views.InvalidateUser(ctx, entry.UserID); err != nil {
			s.logger.Debug("view invalidation failed", "user_id", entry.UserID, "error", err)
		}
	}

	if s.publisher != nil {
		s.publisher.PublishAsync(model.LibraryEvent{
			Kind:       kind,
			UserID:     entry.UserID,
			BookID:     entry.BookID,
			EntryID:    entry.ID,
			Status:     entry.Status,
			Rating:     entry.Rating,
			OccurredAt: time.Now().UTC(),
		})
	}
}
