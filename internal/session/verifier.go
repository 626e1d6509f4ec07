package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/ErlanBelekov/companydesk/internal/domain"
)

type Decrypter interface {
	Decrypt(blob string) ([]byte, error)
}

// Verifier checks that the bearer token and the shadow payload describe the
// same subject and expiry. It does not verify the token signature; callers
// do that with the token service before trusting the result.
type Verifier struct {
	cipher Decrypter
}

func NewVerifier(cipher Decrypter) *Verifier {
	return &Verifier{cipher: cipher}
}

func (v *Verifier) Verify(bearer, shadow string) (*Identity, error) {
	parts := strings.Split(bearer, ".")
	if len(parts) != 3 {
		return nil, domain.ErrMalformedCredential
	}

	tok, ok := decodeTokenPayload(parts[1])
	if !ok {
		return nil, domain.ErrMalformedCredential
	}

	plain, err := v.cipher.Decrypt(shadow)
	if err != nil {
		return nil, domain.ErrMalformedCredential
	}

	var sh decodedShadow
	if err := json.Unmarshal(plain, &sh); err != nil {
		return nil, domain.ErrMalformedCredential
	}
	if sh.Email == nil || sh.Secret == nil || sh.ExpiresAt == nil {
		return nil, domain.ErrMalformedCredential
	}

	if *tok.ExpiresAt != *sh.ExpiresAt || *tok.Username != *sh.Email {
		return nil, domain.ErrCrossCheckMismatch
	}

	return &Identity{Email: *sh.Email, Secret: *sh.Secret}, nil
}

func decodeTokenPayload(segment string) (*tokenPayload, bool) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
	if err != nil {
		return nil, false
	}

	var p tokenPayload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, false
	}
	if p.Username == nil || *p.Username == "" || p.ExpiresAt == nil || *p.ExpiresAt == 0 {
		return nil, false
	}
	return &p, true
}
