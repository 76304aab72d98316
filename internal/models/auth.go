package models

import (
	"strings"
	"time"

	"github.com/yourorg/salesdash/internal/validation"
)

// LoginRequest represents credentials provided by the client.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// RegisterResponse is returned by POST /auth/register.
type RegisterResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// LoginResponse is returned upon successful authentication.
type LoginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// UserResponse wraps the profile returned by GET /users.
type UserResponse struct {
	User User `json:"user"`
}

// CreateUserResponse is returned by POST /users: the new user plus a token.
type CreateUserResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrorResponse is the error shape for every API failure.
type ErrorResponse struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details,omitempty"`
}
