package models

import (
	"strings"
	"time"
)

// User represents a user record in DB. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest holds the data for creating a new user.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	Name     string `json:"name" validate:"required,max=100"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
}

// Fields returns the persisted columns; the password hash is added by the caller.
func (r *RegisterRequest) Fields(passwordHash string) map[string]any {
	return map[string]any{
		"email":         r.Email,
		"name":          r.Name,
		"password_hash": passwordHash,
	}
}
