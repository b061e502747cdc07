// ABOUTME: Credential type and the Store interface shared by all persistence backends
// ABOUTME: A store holds at most one credential; Set overwrites and Get never fails

package credential

import (
	"errors"
	"strings"
)

// Storage keys, matching the two entries the web client writes.
const (
	KeyAccessToken = "access_token"
	KeyTokenType   = "token_type"
)

// ErrNoCredential is returned by operations that need a stored credential.
var ErrNoCredential = errors.New("no credential stored")

// Credential is a bearer token and its type as returned by the auth endpoints.
type Credential struct {
	Token     string `yaml:"access_token" json:"access_token"`
	TokenType string `yaml:"token_type" json:"token_type"`
}

// IsZero reports whether the credential carries no token.
func (c Credential) IsZero() bool {
	return strings.TrimSpace(c.Token) == ""
}

// Store persists a single credential.
type Store interface {
	// Set stores both fields, replacing any previous credential.
	Set(c Credential) error
	// Get returns the stored credential and whether one is present.
	Get() (Credential, bool)
	// Clear removes the stored credential. Clearing an empty store is not an error.
	Clear() error
}
