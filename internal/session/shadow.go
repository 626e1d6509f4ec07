// Package session issues and cross-checks the two-cookie credential pair: a
// signed bearer token and an encrypted shadow payload that repeats the
// token's subject and expiry alongside the user's current secret.
package session

// Cookie names used by the transport layer.
const (
	BearerCookie = "bearer"
	ShadowCookie = "auth"
)

// shadowPayload is the plaintext sealed into the "auth" cookie.
type shadowPayload struct {
	Email     string `json:"email"`
	Secret    string `json:"secret_at_issuance"`
	ExpiresAt int64  `json:"expires_at"`
}

// decodedShadow distinguishes absent fields from zero values.
type decodedShadow struct {
	Email     *string `json:"email"`
	Secret    *string `json:"secret_at_issuance"`
	ExpiresAt *int64  `json:"expires_at"`
}

// tokenPayload is the unverified middle segment of the bearer token.
type tokenPayload struct {
	Username  *string `json:"username"`
	ExpiresAt *int64  `json:"exp"`
}

// Identity is what a consistent credential pair vouches for. Secret must
// still be compared against the user record.
type Identity struct {
	Email  string
	Secret string
}
