// Package service provides business logic for the application.
package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// Service errors. Handlers map these to HTTP statuses.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrEmailNotFound      = errors.New("no account with this email")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrBookNotFound       = errors.New("book not found")
	ErrEntryNotFound      = errors.New("library entry not found")
	ErrAlreadyReviewed    = errors.New("book already reviewed")
	ErrPersistence        = errors.New("failed to persist changes")
)

// Clock returns the current wall-clock time.
// Statistics windows use the server's local calendar.
type Clock func() time.Time

func newID() string {
	return ulid.Make().String()
}

func componentLogger(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", name)
}
