// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// Scope constants for identity token authorization.
const (
	ScopeSubscribe = "subscribe"
	ScopeAdmin     = "admin"
)

// ValidScopes contains all valid scope values.
var ValidScopes = []string{ScopeSubscribe, ScopeAdmin}

// IdentityToken represents a stored identity token.
type IdentityToken struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TokenHash   string     `json:"-"` // Never serialize
	TokenPrefix string     `json:"token_prefix"`
	Scopes      []string   `json:"scopes"`
	Name        string     `json:"name,omitempty"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsRevoked returns true if the token has been revoked.
func (t *IdentityToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// Identity is the verified caller attached to a request after token
// verification succeeds.
type Identity struct {
	TokenID     string
	TokenPrefix string
	UserID      string
	Scopes      []string
}

// HasScope checks if the identity has a specific scope.
// Admin scope implies all other scopes.
func (i *Identity) HasScope(scope string) bool {
	if slices.Contains(i.Scopes, ScopeAdmin) {
		return true
	}
	return slices.Contains(i.Scopes, scope)
}
