package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Gurova-J/bookspace-backend/internal/metrics"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/repository"
)

// PlanStore persists plan targets.
type PlanStore interface {
	GetPlanTargets(ctx context.Context, userID string) (*model.PlanTargets, error)
	UpdatePlanTargets(ctx context.Context, userID string, update model.PlanUpdate) (*model.PlanTargets, error)
}

// StatsInvalidator drops cached stats after the plan changes.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context, userID string) error
}

// PlanResult reports the outcome of a plan update.
// Swallowed is set when a persistence failure was reported as success.
type PlanResult struct {
	Targets   *model.PlanTargets
	Swallowed bool
}

// PlanService reads and updates per-user reading targets.
type PlanService struct {
	store   PlanStore
	cache   StatsInvalidator
	compat  bool
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPlanService creates a new PlanService. With compat set, persistence
// failures during updates are logged and reported as success.
func NewPlanService(store PlanStore, cache StatsInvalidator, compat bool, logger *slog.Logger, recorder metrics.Recorder) *PlanService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PlanService{
		store:   store,
		cache:   cache,
		compat:  compat,
		logger:  componentLogger(logger, "service.plan"),
		metrics: recorder,
	}
}

// ParsePlanUpdate keeps each value that is made only of ASCII digits and
// fits an int. Anything else leaves the field unchanged.
func ParsePlanUpdate(week, month, year *string) model.PlanUpdate {
	return model.PlanUpdate{
		Week:  parseTarget(week),
		Month: parseTarget(month),
		Year:  parseTarget(year),
	}
}

func parseTarget(raw *string) *int {
	if raw == nil || *raw == "" {
		return nil
	}
	for i := 0; i < len(*raw); i++ {
		if (*raw)[i] < '0' || (*raw)[i] > '9' {
			return nil
		}
	}
	// Targets are stored as INTEGER columns.
	n, err := strconv.ParseInt(*raw, 10, 32)
	if err != nil {
		return nil
	}
	target := int(n)
	return &target
}

// GetPlan returns the user's current targets.
func (s *PlanService) GetPlan(ctx context.Context, userID string) (*model.PlanTargets, error) {
	plan, err := s.store.GetPlanTargets(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return plan, nil
}

// UpdatePlanTargets applies the non-nil fields of update in one transaction.
// A persistence failure is returned as ErrPersistence, or swallowed in compat mode.
func (s *PlanService) UpdatePlanTargets(ctx context.Context, userID string, update model.PlanUpdate) (*PlanResult, error) {
	if update.IsEmpty() {
		s.metrics.IncPlanUpdate(metrics.PlanUpdateNoop)
		plan, err := s.GetPlan(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &PlanResult{Targets: plan}, nil
	}

	plan, err := s.store.UpdatePlanTargets(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			s.metrics.IncPlanUpdate(metrics.PlanUpdateFailed)
			return nil, ErrUserNotFound
		}
		if s.compat {
			s.metrics.IncPlanUpdate(metrics.PlanUpdateSwallowed)
			s.logger.Warn("plan update rolled back, reporting success",
				"user_id", userID,
				"error", err,
			)
			return &PlanResult{Swallowed: true}, nil
		}
		s.metrics.IncPlanUpdate(metrics.PlanUpdateFailed)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.metrics.IncPlanUpdate(metrics.PlanUpdateApplied)
	if s.cache != nil {
		if err := s.cache.InvalidateStats(ctx, userID); err != nil {
			s.logger.Debug("stats cache invalidation failed", "user_id", userID, "error", err)
		}
	}
	return &PlanResult{Targets: plan}, nil
}
