package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Gurova-J/bookspace-backend/internal/auth"
	"github.com/Gurova-J/bookspace-backend/internal/model"
	"github.com/Gurova-J/bookspace-backend/internal/repository"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// AccountStore is the user and session storage.
type AccountStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateSession(ctx context.Context, s *model.Session) error
	GetActiveSessionByPrefix(ctx context.Context, prefix string) (*model.Session, error)
	RevokeSession(ctx context.Context, id string) error
	UpdateSessionLastUsed(ctx context.Context, id string) error
}

// SessionCache caches resolved auth contexts keyed by auth.QuickHash(token).
type SessionCache interface {
	GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error)
	SetAuthContext(ctx context.Context, cacheKey string, ac *model.AuthContext) error
	DeleteAuthContext(ctx context.Context, cacheKey string) error
}

// AccountService registers users and issues, resolves and revokes sessions.
type AccountService struct {
	store      AccountStore
	cache      SessionCache
	tokenEnv   string
	sessionTTL time.Duration
	logger     *slog.Logger
	now        Clock
}

// NewAccountService creates a new AccountService. cache may be nil.
// tokenEnv is auth.EnvLive or auth.EnvTest.
func NewAccountService(store AccountStore, cache SessionCache, tokenEnv string, sessionTTL time.Duration, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:      store,
		cache:      cache,
		tokenEnv:   tokenEnv,
		sessionTTL: sessionTTL,
		logger:     componentLogger(logger, "service.account"),
		now:        time.Now,
	}
}

// RegisterInput defines input for registration.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// LoginResult is an issued session. Token is shown once and never stored.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a reader account with zeroed plan targets.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)
	if email == "" || username == "" || len(input.Password) < MinPasswordLength {
		return nil, ErrInvalidInput
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the password and issues a new session token.
// An unknown email is ErrEmailNotFound, a wrong password ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrEmailNotFound
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateSessionToken(s.tokenEnv)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.now().UTC()
	session := &model.Session{
		ID:          newID(),
		UserID:      user.ID,
		TokenHash:   token.Hash,
		TokenPrefix: token.Prefix,
		ExpiresAt:   now.Add(s.sessionTTL),
		CreatedAt:   now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("session issued",
		"user_id", user.ID,
		"token_prefix", token.Prefix,
	)

	return &LoginResult{
		Token:     token.Plaintext,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	}, nil
}

// Authenticate resolves a bearer token to its auth context.
// Every failure except storage errors is ErrUnauthorized.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*model.AuthContext, bool, error) {
	parsed, err := auth.ParseSessionToken(token)
	if err != nil {
		return nil, false, ErrUnauthorized
	}

	cacheKey := auth.QuickHash(token)
	if s.cache != nil {
		if ac, _ := s.cache.GetAuthContext(ctx, cacheKey); ac != nil && s.now().Before(ac.ExpiresAt) {
			return ac, true, nil
		}
	}

	session, err := s.store.GetActiveSessionByPrefix(ctx, parsed.Prefix)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, false, ErrUnauthorized
		}
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}

	match, err := auth.VerifyPassword(token, session.TokenHash)
	if err != nil || !match {
		return nil, false, ErrUnauthorized
	}
	if session.IsRevoked() || session.IsExpired(s.now()) {
		return nil, false, ErrUnauthorized
	}

	user, err := s.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, fmt.Errorf("failed to load user: %w", err)
	}

	ac := &model.AuthContext{
		SessionID:   session.ID,
		TokenPrefix: session.TokenPrefix,
		UserID:      user.ID,
		Role:        user.Role,
		ExpiresAt:   session.ExpiresAt,
	}

	if s.cache != nil {
		if err := s.cache.SetAuthContext(ctx, cacheKey, ac); err != nil {
			s.logger.Debug("auth cache write failed", "error", err)
		}
	}

	go func(id string) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.store.UpdateSessionLastUsed(ctx, id)
	}(session.ID)

	return ac, false, nil
}

// Logout revokes the session behind token and drops its cached context.
func (s *AccountService) Logout(ctx context.Context, ac *model.AuthContext, token string) error {
	if ac == nil {
		return ErrUnauthorized
	}

	if s.cache != nil {
		if err := s.cache.DeleteAuthContext(ctx, auth.QuickHash(token)); err != nil {
			s.logger.Warn("auth cache delete failed", "session_id", ac.SessionID, "error", err)
		}
	}

	if err := s.store.RevokeSession(ctx, ac.SessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.logger.Info("session revoked", "session_id", ac.SessionID, "user_id", ac.UserID)
	return nil
}
