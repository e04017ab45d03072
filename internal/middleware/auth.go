package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Gurova-J/bookspace-backend/internal/auth"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/service"
)

const (
	// minAuthDuration is the minimum time to spend on auth to prevent timing attacks.
	minAuthDuration = 200 * time.Millisecond
)

// Authenticator resolves a bearer token to its auth context.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.AuthContext, bool, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger        *slog.Logger
	Authenticator Authenticator
	// MinDuration overrides minAuthDuration when positive.
	MinDuration time.Duration
}

// Auth returns a middleware that authenticates API requests with a session
// token from the Authorization header and injects the auth context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	minDuration := cfg.MinDuration
	if minDuration <= 0 {
		minDuration = minAuthDuration
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minDuration {
					time.Sleep(minDuration - elapsed)
				}
			}()

			// Extract session token from Authorization header
			token := BearerToken(r)
			if token == "" {
				logAuthFailure(logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			// Cache first, then DB lookup by prefix with hash verification
			authCtx, cacheHit, err := cfg.Authenticator.Authenticate(r.Context(), token)
			if err != nil {
				switch {
				// Valid session whose user has been deleted
				case errors.Is(err, service.ErrUserNotFound):
					logAuthFailure(logger, r, "user_not_found")
					writeJSONError(w, http.StatusBadRequest, "USER_NOT_FOUND", "User not found")
				case errors.Is(err, service.ErrUnauthorized):
					logAuthFailure(logger, r, "invalid_token")
					writeAuthError(w)
				default:
					logger.Error("authentication error",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeAuthError(w)
				}
				return
			}

			logger.Info("authentication successful",
				slog.String("session_id", authCtx.SessionID),
				slog.String("token_prefix", authCtx.TokenPrefix),
				slog.String("user_id", authCtx.UserID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.Bool("cache_hit", cacheHit),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			// Inject auth context into request
			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// logAuthFailure logs a rejected request without the token.
func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing session token")
}
