package dto

import (
	"time"

	"github.com/Gurova-J/bookspace-backend/internal/model"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public user shape.
type UserResponse struct {
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

// LoginResponse carries a freshly issued session token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// ToUserResponse converts a User model.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role}
}

// UpdateProfileRequest is the body of PUT /profile. Empty fields are ignored.
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"omitempty,max=64"`
	Quote    string `json:"quote" validate:"omitempty,max=500"`
	Password string `json:"password" validate:"omitempty,min=6,max=128"`
}

// ProfileResponse wraps the profile.
type ProfileResponse struct {
	User *model.Profile `json:"user"`
}

// PlanUpdateRequest is the body of PUT /stats/plan. Values may be JSON
// strings or numbers; only plain digit strings are applied.
type PlanUpdateRequest struct {
	Week  FlexString `json:"week"`
	Month FlexString `json:"month"`
	Year  FlexString `json:"year"`
}
