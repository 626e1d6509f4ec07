package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	"github.com/ErlanBelekov/companydesk/internal/metrics"
	"github.com/ErlanBelekov/companydesk/internal/repository"
	"github.com/ErlanBelekov/companydesk/internal/session"
	"github.com/ErlanBelekov/companydesk/internal/token"
)

// TokenParser verifies a bearer token's signature and expiry.
type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

type credentialIssuer interface {
	Issue(user *domain.User) (*domain.Credentials, error)
}

type credentialVerifier interface {
	Verify(bearer, shadow string) (*session.Identity, error)
}

type AuthUsecase struct {
	users    repository.UserRepository
	tokens   TokenParser
	issuer   credentialIssuer
	verifier credentialVerifier
}

func NewAuthUsecase(users repository.UserRepository, tokens TokenParser, issuer credentialIssuer, verifier credentialVerifier) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		tokens:   tokens,
		issuer:   issuer,
		verifier: verifier,
	}
}

// Login issues a credential pair for a known email.
func (u *AuthUsecase) Login(ctx context.Context, email string) (*domain.Credentials, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("unknown_user").Inc()
			return nil, domain.ErrUserNotFound
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: find user: %w", domain.ErrUpstreamUnavailable, err)
	}

	creds, err := u.issuer.Issue(user)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("issue credentials: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("issued").Inc()
	return creds, nil
}

// Authenticate accepts a credential pair only if the token verifies, both
// channels agree on subject and expiry, and the secret sealed in the shadow
// payload is still the user's current one. It returns the user's email.
func (u *AuthUsecase) Authenticate(ctx context.Context, bearer, shadow string) (string, error) {
	email, err := u.authenticate(ctx, bearer, shadow)
	metrics.SessionChecksTotal.WithLabelValues(checkOutcome(err)).Inc()
	return email, err
}

func (u *AuthUsecase) authenticate(ctx context.Context, bearer, shadow string) (string, error) {
	if bearer == "" || shadow == "" {
		return "", domain.ErrMalformedCredential
	}

	if _, err := u.tokens.Parse(bearer); err != nil {
		return "", domain.ErrTokenInvalid
	}

	id, err := u.verifier.Verify(bearer, shadow)
	if err != nil {
		return "", err
	}

	user, err := u.users.FindByEmail(ctx, id.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("%w: find user: %w", domain.ErrUpstreamUnavailable, err)
	}

	if subtle.ConstantTimeCompare([]byte(user.Secret), []byte(id.Secret)) != 1 {
		return "", domain.ErrSecretRevoked
	}
	return user.Email, nil
}

func checkOutcome(err error) string {
	switch {
	case err == nil:
		return "authenticated"
	case errors.Is(err, domain.ErrMalformedCredential):
		return "malformed"
	case errors.Is(err, domain.ErrTokenInvalid):
		return "token_invalid"
	case errors.Is(err, domain.ErrCrossCheckMismatch):
		return "mismatch"
	case errors.Is(err, domain.ErrUserNotFound):
		return "unknown_user"
	case errors.Is(err, domain.ErrSecretRevoked):
		return "revoked"
	default:
		return "upstream_error"
	}
}
