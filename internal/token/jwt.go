package token

import (
	"fmt"
	"time"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the subset of a verified token the session layer cares about.
type Claims struct {
	Subject   string
	ExpiresAt int64 // unix seconds
}

type jwtClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256 bearer tokens.
type Service struct {
	key    []byte
	ttl    time.Duration
	parser *jwt.Parser
}

func NewService(key []byte, ttl time.Duration) *Service {
	return &Service{
		key: key,
		ttl: ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}
}

// Issue signs a token for subject. The subject is carried both as "sub" and
// as "username", which is what the shadow payload is cross-checked against.
func (s *Service) Issue(subject string) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		Username: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry. Every failure is ErrTokenInvalid.
func (s *Service) Parse(raw string) (*Claims, error) {
	var claims jwtClaims
	tok, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil || !tok.Valid {
		return nil, domain.ErrTokenInvalid
	}
	if claims.Username == "" || claims.ExpiresAt == nil {
		return nil, domain.ErrTokenInvalid
	}

	return &Claims{
		Subject:   claims.Username,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, nil
}
