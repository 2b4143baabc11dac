//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/pricewell/pricewell/internal/testutil"
)

func TestIntegrationTokenRepository_CreateAndLookupByPrefix(t *testing.T) {
	ctx, repo := newTokenTestEnv(t)

	token := testutil.NewTestIdentityToken(t, testutil.UniqueID("user"))
	token.TokenPrefix = "aa11bb"

	if err := repo.CreateIdentityToken(ctx, token); err != nil {
		t.Fatalf("CreateIdentityToken failed: %v", err)
	}

	tokens, err := repo.GetIdentityTokensByPrefix(ctx, "aa11bb")
	if err != nil {
		t.Fatalf("GetIdentityTokensByPrefix failed: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("Expected 1 token, got %d", len(tokens))
	}
	if tokens[0].ID != token.ID {
		t.Errorf("ID mismatch: got %q, want %q", tokens[0].ID, token.ID)
	}
	if len(tokens[0].Scopes) != 1 || tokens[0].Scopes[0] != "subscribe" {
		t.Errorf("Scopes mismatch: got %v", tokens[0].Scopes)
	}
}

func TestIntegrationTokenRepository_PrefixCollision(t *testing.T) {
	ctx, repo := newTokenTestEnv(t)

	first := testutil.NewTestIdentityToken(t, testutil.UniqueID("user"))
	first.TokenPrefix = "cc22dd"
	second := testutil.NewTestIdentityToken(t, testutil.UniqueID("user"))
	second.ID = testutil.UniqueID("tok")
	second.TokenPrefix = "cc22dd"

	if err := repo.CreateIdentityToken(ctx, first); err != nil {
		t.Fatalf("CreateIdentityToken (first) failed: %v", err)
	}
	if err := repo.CreateIdentityToken(ctx, second); err != nil {
		t.Fatalf("CreateIdentityToken (second) failed: %v", err)
	}

	tokens, err := repo.GetIdentityTokensByPrefix(ctx, "cc22dd")
	if err != nil {
		t.Fatalf("GetIdentityTokensByPrefix failed: %v", err)
	}
	if len(tokens) != 2 {
		t.Errorf("Expected both colliding tokens, got %d", len(tokens))
	}
}

func TestIntegrationTokenRepository_RevokedExcludedFromLookup(t *testing.T) {
	ctx, repo := newTokenTestEnv(t)

	token := testutil.NewTestIdentityToken(t, testutil.UniqueID("user"))
	token.TokenPrefix = "ee33ff"

	if err := repo.CreateIdentityToken(ctx, token); err != nil {
		t.Fatalf("CreateIdentityToken failed: %v", err)
	}
	if err := repo.RevokeIdentityToken(ctx, token.ID); err != nil {
		t.Fatalf("RevokeIdentityToken failed: %v", err)
	}

	tokens, err := repo.GetIdentityTokensByPrefix(ctx, "ee33ff")
	if err != nil {
		t.Fatalf("GetIdentityTokensByPrefix failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("Revoked token should not be returned, got %d", len(tokens))
	}
}

func TestIntegrationTokenRepository_RevokeTwice(t *testing.T) {
	ctx, repo := newTokenTestEnv(t)

	token := testutil.NewTestIdentityToken(t, testutil.UniqueID("user"))
	if err := repo.CreateIdentityToken(ctx, token); err != nil {
		t.Fatalf("CreateIdentityToken failed: %v", err)
	}

	if err := repo.RevokeIdentityToken(ctx, token.ID); err != nil {
		t.Fatalf("RevokeIdentityToken failed: %v", err)
	}
	err := repo.RevokeIdentityToken(ctx, token.ID)
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound on second revoke, got: %v", err)
	}
}

func TestIntegrationTokenRepository_UpdateLastUsed(t *testing.T) {
	ctx, repo := newTokenTestEnv(t)

	token := testutil.NewTestIdentityToken(t, testutil.UniqueID("user"))
	token.TokenPrefix = "aa44bb"
	if err := repo.CreateIdentityToken(ctx, token); err != nil {
		t.Fatalf("CreateIdentityToken failed: %v", err)
	}

	if err := repo.UpdateIdentityTokenLastUsed(ctx, token.ID); err != nil {
		t.Fatalf("UpdateIdentityTokenLastUsed failed: %v", err)
	}

	tokens, err := repo.GetIdentityTokensByPrefix(ctx, "aa44bb")
	if err != nil {
		t.Fatalf("GetIdentityTokensByPrefix failed: %v", err)
	}
	if len(tokens) != 1 {
		t.Fatalf("Expected 1 token, got %d", len(tokens))
	}
	if tokens[0].LastUsedAt == nil {
		t.Error("LastUsedAt should be set after update")
	}
}

func newTokenTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetTokensSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset tokens schema: %v", err)
	}

	return ctx, repo
}
