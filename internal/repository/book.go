package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/Gurova-J/bookspace-backend/internal/model"
)

// Common errors for book repository operations.
var (
	ErrBookNotFound = errors.New("book not found")
)

// GroupField is a books column a favorite vote can group by.
type GroupField string

const (
	GroupByAuthor GroupField = "author"
	GroupByGenre  GroupField = "genre"
)

func (f GroupField) column() (string, error) {
	switch f {
	case GroupByAuthor, GroupByGenre:
		return string(f), nil
	}
	return "", fmt.Errorf("unsupported group field %q", string(f))
}

const bookColumns = `id, title, author, genre, pages, rate, created_at`

// CreateBook inserts a catalog book.
func (r *Repository) CreateBook(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (id, title, author, genre, pages, rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.Genre,
		book.Pages,
		book.Rating,
		book.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(ctx context.Context, id string) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	var book model.Book
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Genre,
		&book.Pages,
		&book.Rating,
		&book.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID: %w", err)
	}
	return &book, nil
}

// TopBooks returns the highest rated books across the whole catalog.
func (r *Repository) TopBooks(ctx context.Context, limit int) ([]model.BookSummary, error) {
	query := `
		SELECT id, title, author, genre, rate
		FROM books
		ORDER BY rate DESC, id
		LIMIT $1
	`
	return r.querySummaries(ctx, "top books", query, limit)
}

// SearchBooks matches query case-insensitively against title, author and genre.
func (r *Repository) SearchBooks(ctx context.Context, query string, limit int) ([]model.BookSummary, error) {
	sql := `
		SELECT id, title, author, genre, rate
		FROM books
		WHERE genre ILIKE $1 OR title ILIKE $1 OR author ILIKE $1
		ORDER BY title, id
		LIMIT $2
	`
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	return r.querySummaries(ctx, "search books", sql, pattern, limit)
}

// FavoriteCounts groups the given books by field and counts each group.
// A book id listed several times is counted once.
func (r *Repository) FavoriteCounts(ctx context.Context, field GroupField, bookIDs []string) ([]model.KeyCount, error) {
	if len(bookIDs) == 0 {
		return nil, nil
	}
	column, err := field.column()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %[1]s, COUNT(*)
		FROM books
		WHERE id = ANY($1)
		GROUP BY %[1]s
	`, column)

	rows, err := r.pool.Query(ctx, query, pq.Array(bookIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to count books by %s: %w", column, err)
	}
	defer rows.Close()

	var counts []model.KeyCount
	for rows.Next() {
		var kc model.KeyCount
		if err := rows.Scan(&kc.Key, &kc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		counts = append(counts, kc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s counts: %w", column, err)
	}
	return counts, nil
}

// RecommendBooks returns books by author or in genre, excluding excludeIDs,
// best rated first.
func (r *Repository) RecommendBooks(ctx context.Context, author, genre string, excludeIDs []string, limit int) ([]model.BookSummary, error) {
	query := `
		SELECT id, title, author, genre, rate
		FROM books
		WHERE (author = $1 OR genre = $2)
		  AND NOT (id = ANY($3))
		ORDER BY rate DESC, id
		LIMIT $4
	`
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	return r.querySummaries(ctx, "recommend books", query, author, genre, pq.Array(excludeIDs), limit)
}

// RecalculateBookRatings sets each book's rate to the average of positive
// reader ratings. Books nobody rated keep their current rate.
func (r *Repository) RecalculateBookRatings(ctx context.Context, bookIDs []string) error {
	if len(bookIDs) == 0 {
		return nil
	}

	query := `
		UPDATE books b
		SET rate = agg.avg_rate
		FROM (
			SELECT book_id, AVG(rate)::double precision AS avg_rate
			FROM user_books
			WHERE book_id = ANY($1) AND rate > 0
			GROUP BY book_id
		) agg
		WHERE b.id = agg.book_id
	`

	if _, err := r.pool.Exec(ctx, query, pq.Array(bookIDs)); err != nil {
		return fmt.Errorf("failed to recalculate book ratings: %w", err)
	}
	return nil
}

func (r *Repository) querySummaries(ctx context.Context, op, query string, args ...any) ([]model.BookSummary, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	books := make([]model.BookSummary, 0)
	for rows.Next() {
		var b model.BookSummary
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}
	return books, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
