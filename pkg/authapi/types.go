package authapi

import (
	"fmt"
	"time"

	"github.com/lodgekeep/concierge/pkg/access"
	"github.com/lodgekeep/concierge/pkg/token"
)

// User is the backend's user record as returned by /auth/login.
type User struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	FullName string      `json:"fullName"`
	Role     access.Role `json:"role"`
}

// LoginResult is a successful /auth/login response.
type LoginResult struct {
	Tokens    token.Pair
	TokenType string
	ExpiresAt time.Time
	User      User
}

// APIError is a non-2xx backend response. Login failures surface the
// backend's message verbatim so the UI can display it.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend returned %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// loginRequest is the /auth/login payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the raw /auth/login response body.
type loginResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         User      `json:"user"`
}

// refreshRequest is the /auth/refresh payload.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// refreshResponse is the raw /auth/refresh response body.
type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// logoutResponse is the raw /auth/logout response body.
type logoutResponse struct {
	Success bool `json:"success"`
}
