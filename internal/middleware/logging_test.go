package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

// logRequest runs req through Logger and returns the raw log output.
func logRequest(t *testing.T, status int, req *http.Request) string {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return buf.String()
}

func TestLogging_NoSessionTokens(t *testing.T) {
	t.Parallel()

	tokens := []string{
		"bs_live_7a9f3b0c2e11_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b",
		"bs_test_0d4e56a1b2c3_0123456789abcdef0123456789abcdef",
	}

	for _, token := range tokens {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/library/read", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("User-Agent", "TestAgent/1.0")

		out := logRequest(t, http.StatusOK, req)
		for _, leaked := range []string{token, "bs_live_", "bs_test_", "Bearer"} {
			if strings.Contains(out, leaked) {
				t.Errorf("log output contains %q: %s", leaked, out)
			}
		}
	}
}

func TestLogging_Fields(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/library", nil)
	req.Header.Set("User-Agent", "TestBrowser/2.0")

	var entry map[string]any
	if err := json.Unmarshal([]byte(logRequest(t, http.StatusCreated, req)), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}

	want := map[string]any{
		"msg":         "http request",
		"method":      "POST",
		"path":        "/api/v1/library",
		"status_code": float64(201),
		"user_agent":  "TestBrowser/2.0",
	}
	for key, value := range want {
		if entry[key] != value {
			t.Errorf("%s = %v, want %v", key, entry[key], value)
		}
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("duration_ms missing")
	}
}

func TestLogging_Level(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNoContent, "INFO"},
		{http.StatusBadRequest, "WARN"},
		{http.StatusUnauthorized, "WARN"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
		{http.StatusServiceUnavailable, "ERROR"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			out := logRequest(t, tt.status, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
			if !strings.Contains(out, `"level":"`+tt.want+`"`) {
				t.Errorf("status %d: want level %s, got %s", tt.status, tt.want, out)
			}
		})
	}
}

func TestLogging_RouteAndBytes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(Logger(logger))
	r.Get("/api/v1/library/{list}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":0}`))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/library/read", nil))

	logOutput := buf.String()
	for _, field := range []string{`"route":"/api/v1/library/{list}"`, `"bytes":11`, `"path":"/api/v1/library/read"`} {
		if !strings.Contains(logOutput, field) {
			t.Errorf("expected log field %s, got %s", field, logOutput)
		}
	}
}

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("implicit 200", func(t *testing.T) {
		t.Parallel()
		rw := wrapResponseWriter(httptest.NewRecorder())
		_, _ = rw.Write([]byte("hello"))
		if rw.status != http.StatusOK || rw.bytes != 5 {
			t.Errorf("status = %d bytes = %d, want 200 and 5", rw.status, rw.bytes)
		}
	})

	t.Run("first header wins", func(t *testing.T) {
		t.Parallel()
		rw := wrapResponseWriter(httptest.NewRecorder())
		rw.WriteHeader(http.StatusCreated)
		rw.WriteHeader(http.StatusInternalServerError)
		if rw.status != http.StatusCreated {
			t.Errorf("status = %d, want %d", rw.status, http.StatusCreated)
		}
	})

	t.Run("unwrap", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		if wrapResponseWriter(rec).Unwrap() != rec {
			t.Error("Unwrap did not return the underlying writer")
		}
	})
}
