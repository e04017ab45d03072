package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Gurova-J/bookspace-backend/internal/auth"
	"github.com/Gurova-J/bookspace-backend/internal/handler/dto"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/validation"
)

// ProfileService is the profile surface used by ProfileHandler.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, userID string, update model.ProfileUpdate) (*model.Profile, error)
}

// ProfileHandler serves the reader's own profile.
type ProfileHandler struct {
	svc      ProfileService
	validate *validation.Validator
	logger   *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc ProfileService, validate *validation.Validator, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, validate: validate, logger: orDefault(logger)}
}

// Get handles GET /api/v1/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetProfile(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ProfileResponse{User: profile})
}

// Update handles PUT /api/v1/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}

	_, err := h.svc.UpdateProfile(r.Context(), auth.UserIDFromContext(r.Context()), model.ProfileUpdate{
		Username: req.Username,
		Quote:    req.Quote,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeMessage(w, http.StatusOK, "successfully updated")
}
