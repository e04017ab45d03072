package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Gurova-J/bookspace-backend/internal/auth"
	"github.com/Gurova-J/bookspace-backend/internal/handler/dto"
	"github.com/Gurova-J/bookspace-backend/internal/middleware"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/service"
	"github.com/Gurova-J/bookspace-backend/internal/validation"
)

// AccountService is the account surface used by AccountHandler.
type AccountService interface {
	Register(ctx context.Context, input service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Logout(ctx context.Context, ac *model.AuthContext, token string) error
}

// AccountHandler handles registration and sessions.
type AccountHandler struct {
	svc      AccountService
	validate *validation.Validator
	logger   *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc AccountService, validate *validation.Validator, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, validate: validate, logger: orDefault(logger)}
}

// Register handles POST /api/v1/auth/register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Login handles POST /api/v1/auth/login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.ToUserResponse(result.User),
	})
}

// Logout handles POST /api/v1/auth/logout.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ac := auth.AuthFromContext(r.Context())
	if err := h.svc.Logout(r.Context(), ac, middleware.BearerToken(r)); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
