package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	"github.com/ErlanBelekov/companydesk/internal/token"
)

// TokenService is the bearer token collaborator.
type TokenService interface {
	Issue(subject string) (string, error)
	Parse(raw string) (*token.Claims, error)
}

type Encrypter interface {
	Encrypt(plaintext []byte) (string, error)
}

type Issuer struct {
	tokens TokenService
	cipher Encrypter
}

func NewIssuer(tokens TokenService, cipher Encrypter) *Issuer {
	return &Issuer{tokens: tokens, cipher: cipher}
}

// Issue produces the bearer token and the shadow payload for user. Both
// share the token's expiry. On any error no credentials are returned.
func (i *Issuer) Issue(user *domain.User) (*domain.Credentials, error) {
	bearer, err := i.tokens.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	claims, err := i.tokens.Parse(bearer)
	if err != nil {
		return nil, fmt.Errorf("read token expiry: %w", err)
	}

	plain, err := json.Marshal(shadowPayload{
		Email:     user.Email,
		Secret:    user.Secret,
		ExpiresAt: claims.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal shadow payload: %w", err)
	}

	shadow, err := i.cipher.Encrypt(plain)
	if err != nil {
		return nil, fmt.Errorf("encrypt shadow payload: %w", err)
	}

	return &domain.Credentials{
		Bearer:    bearer,
		Shadow:    shadow,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}, nil
}
