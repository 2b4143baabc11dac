// Package auth provides identity token verification.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/pricewell/pricewell/internal/cache"
	"github.com/pricewell/pricewell/internal/model"
)

// ErrInvalidToken indicates the token did not verify against any stored
// credential. The same error covers unknown, revoked, and malformed tokens
// to prevent enumeration.
var ErrInvalidToken = errors.New("invalid identity token")

// TokenStore is the persistence interface the verifier needs.
type TokenStore interface {
	GetIdentityTokensByPrefix(ctx context.Context, prefix string) ([]*model.IdentityToken, error)
	UpdateIdentityTokenLastUsed(ctx context.Context, id string) error
}

// Verifier turns a plaintext token into a verified Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*model.Identity, error)
}

// StoreVerifier verifies tokens against the database, with a Redis cache
// in front keyed by a quick hash of the plaintext.
type StoreVerifier struct {
	store TokenStore
	cache *cache.Cache // nil disables caching
}

// NewStoreVerifier creates a StoreVerifier.
func NewStoreVerifier(store TokenStore, c *cache.Cache) *StoreVerifier {
	return &StoreVerifier{
		store: store,
		cache: c,
	}
}

// Verify parses the token, checks the identity cache, and falls back to a
// prefix lookup with argon2id verification against each candidate.
func (v *StoreVerifier) Verify(ctx context.Context, token string) (*model.Identity, error) {
	parsed, err := ParseToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// Check cache first
	cacheKey := QuickHash(token)
	if v.cache != nil {
		if identity, _ := v.cache.GetIdentity(ctx, cacheKey); identity != nil {
			return identity, nil
		}
	}

	// Cache miss - lookup candidates by prefix
	tokens, err := v.store.GetIdentityTokensByPrefix(ctx, parsed.Prefix)
	if err != nil {
		return nil, fmt.Errorf("lookup tokens by prefix: %w", err)
	}

	// Verify against each candidate (handles prefix collisions)
	var matched *model.IdentityToken
	for _, t := range tokens {
		match, err := VerifyTokenHash(token, t.TokenHash)
		if err != nil {
			continue
		}
		if match {
			matched = t
			break
		}
	}

	if matched == nil {
		return nil, ErrInvalidToken
	}

	identity := &model.Identity{
		TokenID:     matched.ID,
		TokenPrefix: matched.TokenPrefix,
		UserID:      matched.UserID,
		Scopes:      matched.Scopes,
	}

	// Cache the result
	if v.cache != nil {
		_ = v.cache.SetIdentity(ctx, cacheKey, identity)
	}

	// Update last_used_at asynchronously
	go func() {
		_ = v.store.UpdateIdentityTokenLastUsed(context.WithoutCancel(ctx), matched.ID)
	}()

	return identity, nil
}
