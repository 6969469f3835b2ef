package auth

import (
	"time"

	"github.com/littlemija/littlemija-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest registers a new customer account.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// AuthResponse contains the access token and user produced by signup or login.
type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        *users.UserDTO `json:"user"`
}

// SeedResult reports which default accounts were created.
type SeedResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}
