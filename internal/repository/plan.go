package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Gurova-J/bookspace-backend/internal/model"
)

// Common errors for plan repository operations.
var (
	ErrPlanNotFound = errors.New("plan targets not found")
)

// GetPlanTargets retrieves the user's reading targets.
func (r *Repository) GetPlanTargets(ctx context.Context, userID string) (*model.PlanTargets, error) {
	query := `SELECT user_id, week, month, year, updated_at FROM plan_targets WHERE user_id = $1`

	p, err := scanPlan(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan targets: %w", err)
	}
	return p, nil
}

// UpdatePlanTargets applies update to the user's targets in one transaction.
// Nothing is written when any step fails.
func (r *Repository) UpdatePlanTargets(ctx context.Context, userID string, update model.PlanUpdate) (*model.PlanTargets, error) {
	var updated *model.PlanTargets

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		current, err := scanPlan(tx.QueryRow(ctx, `
			SELECT user_id, week, month, year, updated_at
			FROM plan_targets
			WHERE user_id = $1
			FOR UPDATE
		`, userID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPlanNotFound
			}
			return fmt.Errorf("failed to lock plan targets: %w", err)
		}

		next := update.Apply(*current)
		err = tx.QueryRow(ctx, `
			UPDATE plan_targets
			SET week = $2, month = $3, year = $4, updated_at = NOW()
			WHERE user_id = $1
			RETURNING updated_at
		`, userID, next.Week, next.Month, next.Year).Scan(&next.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update plan targets: %w", err)
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func scanPlan(row pgx.Row) (*model.PlanTargets, error) {
	var p model.PlanTargets
	if err := row.Scan(&p.UserID, &p.Week, &p.Month, &p.Year, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
