package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Gurova-J/bookspace-backend/internal/auth"
	"github.com/Gurova-J/bookspace-backend/internal/handler/dto"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/service"
)

// StatsService computes reading statistics.
type StatsService interface {
	GetStats(ctx context.Context, userID string, kind model.RangeKind) (*model.RangeStats, error)
}

// PlanService updates reading targets.
type PlanService interface {
	UpdatePlanTargets(ctx context.Context, userID string, update model.PlanUpdate) (*service.PlanResult, error)
}

// StatsHandler serves reading statistics and plan targets.
type StatsHandler struct {
	stats  StatsService
	plan   PlanService
	logger *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats StatsService, plan PlanService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, plan: plan, logger: orDefault(logger)}
}

// Get handles GET /api/v1/stats?range=week|month|year.
// An unknown range yields empty statistics over a zero-width window.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind := model.RangeKind(r.URL.Query().Get("range"))

	stats, err := h.stats.GetStats(r.Context(), auth.UserIDFromContext(r.Context()), kind)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// UpdatePlan handles PUT /api/v1/stats/plan.
// Values that are not plain digit strings are ignored per field.
func (h *StatsHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanUpdateRequest
	if !decodeBody(w, r, nil, &req) {
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	update := service.ParsePlanUpdate(req.Week.Ptr(), req.Month.Ptr(), req.Year.Ptr())

	result, err := h.plan.UpdatePlanTargets(r.Context(), userID, update)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	if result.Swallowed {
		h.logger.Warn("plan_update_swallowed", "user_id", userID)
	}

	writeMessage(w, http.StatusOK, "successfully updated")
}
