package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Gurova-J/bookspace-backend/internal/auth"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/repository"
	"github.com/Gurova-J/bookspace-backend/internal/service"
)

type output struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "admin@bookspace.local", "Admin email")
		username    = flag.String("username", "admin", "Admin username")
		password    = flag.String("password", os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"), "Admin password")
		sessionTTL  = flag.Duration("session-ttl", 24*time.Hour, "Lifetime of the issued session")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if len(*password) < service.MinPasswordLength {
		fmt.Fprintf(os.Stderr, "password must be at least %d characters\n", service.MinPasswordLength)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accounts := service.NewAccountService(repo, nil, auth.EnvLive, *sessionTTL, logger)

	if err := ensureAdmin(ctx, repo, accounts, *email, *username, *password); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	result, err := accounts.Login(ctx, *email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "login:", err)
		os.Exit(1)
	}

	out := output{
		UserID:    result.User.ID,
		Email:     result.User.Email,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureAdmin registers the account if needed and grants it the admin role.
func ensureAdmin(ctx context.Context, repo *repository.Repository, accounts *service.AccountService, email, username, password string) error {
	user, err := accounts.Register(ctx, service.RegisterInput{
		Email:    email,
		Username: username,
		Password: password,
	})
	switch {
	case err == nil:
	case errors.Is(err, service.ErrEmailExists):
		user, err = repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
	default:
		return fmt.Errorf("register admin: %w", err)
	}

	if user.Role == model.RoleAdmin {
		return nil
	}
	if err := repo.SetUserRole(ctx, user.ID, model.RoleAdmin); err != nil {
		return fmt.Errorf("grant admin role: %w", err)
	}
	return nil
}
