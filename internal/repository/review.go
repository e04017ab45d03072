package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gurova-J/bookspace-backend/internal/model"
)

// Common errors for review repository operations.
var (
	ErrReviewExists = errors.New("review already exists")
)

// CreateReview stores a review. A user may review a book once.
func (r *Repository) CreateReview(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, book_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.UserID,
		review.BookID,
		review.Text,
		review.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrReviewExists
		case isForeignKeyViolation(err):
			return ErrBookNotFound
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// ListReviewsByBook returns the reviews of a book, oldest first, with author usernames.
func (r *Repository) ListReviewsByBook(ctx context.Context, bookID string) ([]model.Review, error) {
	query := `
		SELECT rv.id, rv.user_id, rv.book_id, u.username, rv.text, rv.created_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.book_id = $1
		ORDER BY rv.created_at, rv.id
	`

	rows, err := r.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]model.Review, 0)
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.BookID, &rv.Username, &rv.Text, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, nil
}

// HasReview reports whether the user already reviewed the book.
func (r *Repository) HasReview(ctx context.Context, userID, bookID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE user_id = $1 AND book_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, bookID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return exists, nil
}
