// Package model defines domain entities for the application.
package model

import "time"

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered reader.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never serialize
	Role         Role      `json:"role"`
	Quote        string    `json:"quote"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the user view returned by the profile endpoint.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Quote    string `json:"quote"`
	Week     int    `json:"week"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
	Done     int    `json:"done"`
	Progress int    `json:"progress"`
	Future   int    `json:"future"`
}

// ProfileUpdate carries optional profile changes. Empty values are not applied.
type ProfileUpdate struct {
	Username string
	Quote    string
	Password string
}
