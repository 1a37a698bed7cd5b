package identity

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredentials is returned when the credentials do not match a known user.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnavailable is returned when the backing credential source cannot be consulted.
	ErrUnavailable = errors.New("identity provider unavailable")
	// ErrInactive is returned for a known user whose account is disabled.
	ErrInactive = errors.New("account inactive")
)

// Credentials is what a user presents at login.
type Credentials struct {
	Email    string
	Password string
}

// Identity is the verified user profile attached to a session.
type Identity struct {
	UserID int64    `json:"user_id,omitempty" yaml:"user_id"`
	Name   string   `json:"name" yaml:"name"`
	Email  string   `json:"email" yaml:"email"`
	Admin  bool     `json:"admin,omitempty" yaml:"admin"`
	Groups []string `json:"groups,omitempty" yaml:"groups"`
}

// Provider verifies credentials.
type Provider interface {
	Verify(ctx context.Context, creds Credentials) (Identity, error)
}

// ProviderFunc adapts a function to [Provider].
type ProviderFunc func(ctx context.Context, creds Credentials) (Identity, error)

// Verify calls f.
func (f ProviderFunc) Verify(ctx context.Context, creds Credentials) (Identity, error) {
	return f(ctx, creds)
}
