package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Gurova-J/bookspace-backend/internal/model"
)

// Common errors for library repository operations.
var (
	ErrEntryNotFound = errors.New("library entry not found")
)

// CreateEntry adds a book to one of the user's reading lists.
func (r *Repository) CreateEntry(ctx context.Context, entry *model.LibraryEntry) error {
	query := `
		INSERT INTO user_books (id, user_id, book_id, list, rate, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.BookID,
		string(entry.Status),
		entry.Rating,
		entry.AddedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrBookNotFound
		}
		return fmt.Errorf("failed to create library entry: %w", err)
	}
	return nil
}

// GetEntry retrieves one of the user's library entries.
func (r *Repository) GetEntry(ctx context.Context, userID, entryID string) (*model.LibraryEntry, error) {
	query := `
		SELECT id, user_id, book_id, list, rate, added_at
		FROM user_books
		WHERE id = $1 AND user_id = $2
	`

	var entry model.LibraryEntry
	var status string
	err := r.pool.QueryRow(ctx, query, entryID, userID).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.BookID,
		&status,
		&entry.Rating,
		&entry.AddedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get library entry: %w", err)
	}
	entry.Status = model.ListStatus(status)
	return &entry, nil
}

// UpdateEntry writes the entry's list and rating.
func (r *Repository) UpdateEntry(ctx context.Context, entry *model.LibraryEntry) error {
	query := `
		UPDATE user_books
		SET list = $3, rate = $4
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, entry.ID, entry.UserID, string(entry.Status), entry.Rating)
	if err != nil {
		return fmt.Errorf("failed to update library entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// DeleteEntry removes one of the user's library entries.
func (r *Repository) DeleteEntry(ctx context.Context, userID, entryID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM user_books WHERE id = $1 AND user_id = $2`, entryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete library entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// ListShelf returns the user's entries on one list joined with their books.
func (r *Repository) ListShelf(ctx context.Context, userID string, status model.ListStatus) ([]model.ShelfBook, error) {
	query := `
		SELECT ub.id, b.id, b.title, b.author, b.genre, ub.list, ub.rate, ub.added_at
		FROM user_books ub
		JOIN books b ON b.id = ub.book_id
		WHERE ub.user_id = $1 AND ub.list = $2
		ORDER BY ub.added_at, ub.id
	`
	return r.queryShelf(ctx, query, userID, string(status))
}

// RecentShelf returns the user's most recently added entries.
func (r *Repository) RecentShelf(ctx context.Context, userID string, limit int) ([]model.ShelfBook, error) {
	query := `
		SELECT ub.id, b.id, b.title, b.author, b.genre, ub.list, ub.rate, ub.added_at
		FROM user_books ub
		JOIN books b ON b.id = ub.book_id
		WHERE ub.user_id = $1
		ORDER BY ub.added_at DESC, ub.id DESC
		LIMIT $2
	`
	return r.queryShelf(ctx, query, userID, limit)
}

// CountByStatus counts the user's entries on each list.
func (r *Repository) CountByStatus(ctx context.Context, userID string) (model.StatusCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE list = 'done'),
			COUNT(*) FILTER (WHERE list = 'in progress'),
			COUNT(*) FILTER (WHERE list = 'want to read')
		FROM user_books
		WHERE user_id = $1
	`

	var counts model.StatusCounts
	err := r.pool.QueryRow(ctx, query, userID).Scan(&counts.Done, &counts.InProgress, &counts.WantToRead)
	if err != nil {
		return model.StatusCounts{}, fmt.Errorf("failed to count library entries: %w", err)
	}
	return counts, nil
}

// DoneBookIDsBetween returns the book id of every finished entry whose
// calendar date of addition lies in [from, to]. Duplicates are kept.
func (r *Repository) DoneBookIDsBetween(ctx context.Context, userID string, from, to time.Time) ([]string, error) {
	query := `
		SELECT book_id
		FROM user_books
		WHERE user_id = $1
		  AND list = 'done'
		  AND added_at::date >= $2
		  AND added_at::date <= $3
	`
	return r.queryBookIDs(ctx, query, userID, dateOnly(from), dateOnly(to))
}

// LibraryBookIDs returns the book id of every entry of the user, all lists.
func (r *Repository) LibraryBookIDs(ctx context.Context, userID string) ([]string, error) {
	return r.queryBookIDs(ctx, `SELECT book_id FROM user_books WHERE user_id = $1`, userID)
}

// dateOnly drops the clock part, keeping the calendar date as written.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r *Repository) queryBookIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query library book ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan book id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating book ids: %w", err)
	}
	return ids, nil
}

func (r *Repository) queryShelf(ctx context.Context, query string, args ...any) ([]model.ShelfBook, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shelf: %w", err)
	}
	defer rows.Close()

	shelf := make([]model.ShelfBook, 0)
	for rows.Next() {
		var sb model.ShelfBook
		var status string
		if err := rows.Scan(&sb.EntryID, &sb.BookID, &sb.Title, &sb.Author, &sb.Genre, &status, &sb.Rating, &sb.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shelf book: %w", err)
		}
		sb.Status = model.ListStatus(status)
		shelf = append(shelf, sb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shelf: %w", err)
	}
	return shelf, nil
}
