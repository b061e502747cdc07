// ABOUTME: Unverified JWT payload decoding for displaying who a credential belongs to
// ABOUTME: Informational only; a credential is never rejected or cleared based on this

package credential

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the token payload shown to the user.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// Expired reports whether the token's exp claim is before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Inspect decodes the credential's JWT payload without checking its signature.
// The client has no key to verify with; the server remains the authority.
func Inspect(c Credential) (Claims, error) {
	if c.IsZero() {
		return Claims{}, ErrNoCredential
	}

	token, _, err := jwt.NewParser().ParseUnverified(c.Token, jwt.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("decoding token: %w", err)
	}

	var out Claims
	if sub, err := token.Claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if iat, err := token.Claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
