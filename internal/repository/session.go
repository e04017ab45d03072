package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Gurova-J/bookspace-backend/internal/model"
)

// Common errors for session repository operations.
var (
	ErrSessionNotFound = errors.New("session not found")
)

// CreateSession stores a newly issued session.
func (r *Repository) CreateSession(ctx context.Context, s *model.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, token_hash, token_prefix, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.TokenHash,
		s.TokenPrefix,
		s.ExpiresAt,
		s.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetActiveSessionByPrefix retrieves the unrevoked session with the token prefix.
// Used during authentication to find the candidate for hash verification.
func (r *Repository) GetActiveSessionByPrefix(ctx context.Context, prefix string) (*model.Session, error) {
	query := `
		SELECT id, user_id, token_hash, token_prefix, expires_at, revoked_at, last_used_at, created_at
		FROM sessions
		WHERE token_prefix = $1 AND revoked_at IS NULL
	`

	var s model.Session
	err := r.pool.QueryRow(ctx, query, prefix).Scan(
		&s.ID,
		&s.UserID,
		&s.TokenHash,
		&s.TokenPrefix,
		&s.ExpiresAt,
		&s.RevokedAt,
		&s.LastUsedAt,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session by prefix: %w", err)
	}
	return &s, nil
}

// RevokeSession revokes a session by setting revoked_at.
func (r *Repository) RevokeSession(ctx context.Context, id string) error {
	query := `
		UPDATE sessions
		SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// UpdateSessionLastUsed updates the last_used_at timestamp.
// Should be called asynchronously after successful authentication.
func (r *Repository) UpdateSessionLastUsed(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET last_used_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update session last used: %w", err)
	}
	return nil
}
