package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/Gurova-J/bookspace-backend/internal/model"
)

// LibraryEventRepository provides database access for library events.
type LibraryEventRepository struct {
	repo *Repository
}

// NewLibraryEventRepository creates a new LibraryEventRepository.
func NewLibraryEventRepository(repo *Repository) *LibraryEventRepository {
	return &LibraryEventRepository{repo: repo}
}

// BulkInsert inserts multiple events with idempotency via ON CONFLICT DO NOTHING.
func (r *LibraryEventRepository) BulkInsert(ctx context.Context, events []*model.LibraryEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO library_events (
			id, event_id, kind, user_id, book_id, entry_id, list, rate, occurred_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, event := range events {
		batch.Queue(query,
			event.ID,
			event.EventID,
			string(event.Kind),
			event.UserID,
			event.BookID,
			event.EntryID,
			string(event.Status),
			event.Rating,
			event.OccurredAt,
		)
	}

	results := r.repo.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(events); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert event %d: %w", i, err)
		}
	}

	return nil
}

// UpdateBookRatings recomputes the catalog rate of every book touched by events.
func (r *LibraryEventRepository) UpdateBookRatings(ctx context.Context, events []*model.LibraryEvent) error {
	ids := uniqueBookIDs(events)
	if len(ids) == 0 {
		return nil
	}
	if err := r.repo.RecalculateBookRatings(ctx, ids); err != nil {
		return fmt.Errorf("update book ratings: %w", err)
	}
	return nil
}

// uniqueBookIDs returns the sorted distinct book ids referenced by events.
func uniqueBookIDs(events []*model.LibraryEvent) []string {
	seen := make(map[string]struct{})
	for _, event := range events {
		if event.BookID != "" {
			seen[event.BookID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
