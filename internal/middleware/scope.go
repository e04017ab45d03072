package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/Gurova-J/bookspace-backend/internal/auth"
)

// RequireAdmin rejects requests whose user is not an administrator.
// Must be applied after Auth middleware.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
				return
			}
			if !authCtx.IsAdmin() {
				writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "Administrator role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// errorBody matches the handler package's error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSONError writes the API error envelope.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}
