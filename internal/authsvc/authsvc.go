// Package authsvc defines the authentication service the session store
// talks to, and an in-memory implementation that stands in for the remote
// identity platform.
package authsvc

import (
	"context"
	"errors"
	"time"
)

// Credentials is the four-part token bundle treated as an atomic unit:
// either all four fields are empty (unauthenticated) or all are populated.
type Credentials struct {
	TokenType    string `json:"token_type"`
	ExpiresIn    string `json:"expires_in"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Empty reports whether the bundle carries no tokens.
func (c Credentials) Empty() bool {
	return c.TokenType == "" && c.ExpiresIn == "" && c.AccessToken == "" && c.RefreshToken == ""
}

// Profile is an authenticated user stripped of role and permission arrays,
// which travel in their own Session slots.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Role names a role granted to the authenticated user.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is the structured response of login, register and refresh.
type Session struct {
	Credentials Credentials `json:"credentials"`
	User        Profile     `json:"user"`
	Roles       []Role      `json:"roles"`
	Permissions []string    `json:"permissions"`
}

// RegisterInput is the account-creation payload.
type RegisterInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// ResetPasswordInput completes a reset-password flow.
type ResetPasswordInput struct {
	Email                string `json:"email"`
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Service is the authentication backend contract. Every call is
// network-equivalent: it may suspend until the backend resolves and fails
// with an error optionally carrying a human-readable message.
type Service interface {
	Login(ctx context.Context, email, password string) (Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (Session, error)
	Register(ctx context.Context, input RegisterInput) (Session, error)
	RequestResetPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, input ResetPasswordInput) error
	VerifyEmail(ctx context.Context, email, token string) error
	ResendVerificationCode(ctx context.Context, email string) (string, error)
	Logout(ctx context.Context, accessToken string) error
	Me(ctx context.Context, accessToken string) (Profile, error)
}

// Error is a service failure with an optional message intended for the user.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Message extracts the service-provided message from err, falling back when
// none is present.
func Message(err error, fallback string) string {
	var se *Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}

var (
	ErrInvalidCredentials = errors.New("authsvc: invalid credentials")
	ErrInvalidToken       = errors.New("authsvc: invalid token")
	ErrInvalidInput       = errors.New("authsvc: invalid input")
	ErrAlreadyExists      = errors.New("authsvc: already exists")
	ErrNotFound           = errors.New("authsvc: not found")
	ErrRateLimited        = errors.New("authsvc: rate limited")
)
