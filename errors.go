package goSession

import "errors"

var (
	// ErrConfiguration is returned for an unknown session class or an invalid [Config].
	ErrConfiguration = errors.New("invalid session configuration")
	// ErrSessionNotFound is returned when an operation targets a missing or expired session.
	// Callers should ask the user to authenticate again; it is never retried internally.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotifierFailure wraps errors returned by the configured notifier.
	// Session state is never affected by it.
	ErrNotifierFailure = errors.New("notifier failure")
	// ErrInvalidCredentials is returned by [Engine.Login] when the identity provider rejects the credentials.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrIdentityUnavailable is returned by [Engine.Login] when no provider is configured or it fails.
	ErrIdentityUnavailable = errors.New("identity provider unavailable")
	// ErrEngineNotReady is returned when a nil or closed [Engine] is used.
	ErrEngineNotReady = errors.New("session engine not ready")
)
