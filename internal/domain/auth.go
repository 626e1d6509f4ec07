package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user with this email already exists")
	ErrTokenInvalid = errors.New("token is invalid or expired")

	// Credential rejections. Callers outside the auth layer only ever see
	// "not authenticated"; the distinction is for logs, metrics and tests.
	ErrMalformedCredential = errors.New("malformed credential")
	ErrCrossCheckMismatch  = errors.New("credential channels disagree")
	ErrSecretRevoked       = errors.New("credential secret revoked")

	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrValidationFailed    = errors.New("validation failed")
	ErrCacheMiss           = errors.New("cache miss")
)

type User struct {
	ID        string
	Email     string
	Secret    string // rotated on reset; revokes every credential issued before
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credentials is the cookie pair handed to the transport layer on login.
type Credentials struct {
	Bearer    string
	Shadow    string
	ExpiresAt time.Time
}

// IsRejection reports whether err means "not authenticated" as opposed to a
// failure of a dependency.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMalformedCredential) ||
		errors.Is(err, ErrCrossCheckMismatch) ||
		errors.Is(err, ErrSecretRevoked) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrUserNotFound)
}
