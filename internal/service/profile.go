package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Gurova-J/bookspace-backend/internal/auth"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/repository"
)

// ProfileStore is the storage behind profile reads and updates.
type ProfileStore interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, id, username, quote, passwordHash string) error
	GetPlanTargets(ctx context.Context, userID string) (*model.PlanTargets, error)
	CountByStatus(ctx context.Context, userID string) (model.StatusCounts, error)
}

// ProfileService serves the user profile page.
type ProfileService struct {
	store ProfileStore
}

// NewProfileService creates a new ProfileService.
func NewProfileService(store ProfileStore) *ProfileService {
	return &ProfileService{store: store}
}

// GetProfile assembles the profile with plan targets and list counts.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	plan, err := s.store.GetPlanTargets(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	counts, err := s.store.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.Profile{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Quote:    user.Quote,
		Week:     plan.Week,
		Month:    plan.Month,
		Year:     plan.Year,
		Done:     counts.Done,
		Progress: counts.InProgress,
		Future:   counts.WantToRead,
	}, nil
}

// UpdateProfile applies the non-empty fields of update and returns the new profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, update model.ProfileUpdate) (*model.Profile, error) {
	username := strings.TrimSpace(update.Username)
	quote := strings.TrimSpace(update.Quote)

	var passwordHash string
	if update.Password != "" {
		if len(update.Password) < MinPasswordLength {
			return nil, ErrInvalidInput
		}
		hash, err := auth.HashPassword(update.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = hash
	}

	if err := s.store.UpdateUserProfile(ctx, userID, username, quote, passwordHash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.GetProfile(ctx, userID)
}
