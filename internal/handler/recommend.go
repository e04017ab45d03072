package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Gurova-J/bookspace-backend/internal/auth"
	"github.com/Gurova-J/bookspace-backend/internal/handler/dto"
	"github.com/Gurova-J/bookspace-backend/internal/model"
)

// RecommendationService suggests unread books.
type RecommendationService interface {
	Recommend(ctx context.Context, userID string) (*model.Recommendations, error)
}

// RecommendationHandler serves book recommendations.
type RecommendationHandler struct {
	svc    RecommendationService
	logger *slog.Logger
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(svc RecommendationService, logger *slog.Logger) *RecommendationHandler {
	return &RecommendationHandler{svc: svc, logger: orDefault(logger)}
}

// Get handles GET /api/v1/recommendations.
func (h *RecommendationHandler) Get(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.Recommend(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	if recs.NoHistory {
		writeMessage(w, http.StatusOK, dto.NoRecommendationsMessage)
		return
	}

	books := recs.Books
	if books == nil {
		books = []model.BookSummary{}
	}
	writeJSON(w, http.StatusOK, dto.BooksResponse{Books: books})
}
