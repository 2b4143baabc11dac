package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pricewell/pricewell/internal/model"
	"github.com/redis/go-redis/v9"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 730730

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// catalogMigrations lists the migrations that build the pricing schema,
// in application order. Down migrations are applied in reverse so foreign
// keys drop cleanly.
var catalogMigrations = []string{
	"000001_products",
	"000002_plans",
	"000003_customer_overrides",
	"000004_subscriptions",
}

// ResetPricingSchema drops and recreates the catalog, override, and
// subscription tables for tests.
func ResetPricingSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	for i := len(catalogMigrations) - 1; i >= 0; i-- {
		if err := applyMigration(ctx, pool, root, catalogMigrations[i]+".down.sql"); err != nil {
			return err
		}
	}
	for _, name := range catalogMigrations {
		if err := applyMigration(ctx, pool, root, name+".up.sql"); err != nil {
			return err
		}
	}

	return nil
}

// ResetTokensSchema drops and recreates the identity_tokens table for tests.
func ResetTokensSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	if err := applyMigration(ctx, pool, root, "000005_identity_tokens.down.sql"); err != nil {
		return err
	}
	return applyMigration(ctx, pool, root, "000005_identity_tokens.up.sql")
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, root, filename string) error {
	path := filepath.Join(root, "migrations", filename)
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filename, err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filename, err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestProduct creates a test product with sensible defaults.
func NewTestProduct(t testing.TB, slug string) *model.Product {
	t.Helper()
	now := time.Now().UTC()
	return &model.Product{
		ID:          fmt.Sprintf("prod-%d", now.UnixNano()),
		Slug:        slug,
		Name:        "Test Product " + slug,
		Description: "A product used in tests",
		CreatedAt:   now,
	}
}

// NewTestPlan creates an active monthly test plan for a product.
func NewTestPlan(t testing.TB, productID string, priceCents int64) *model.Plan {
	t.Helper()
	now := time.Now().UTC()
	return &model.Plan{
		ID:            UniqueID("plan"),
		ProductID:     productID,
		Name:          "Test Plan",
		PriceCents:    priceCents,
		Currency:      "USD",
		BillingPeriod: model.BillingMonthly,
		Features:      []string{"feature-a", "feature-b"},
		IsActive:      true,
		CreatedAt:     now,
	}
}

// NewTestOverride creates a user-scoped blanket override on a product.
func NewTestOverride(t testing.TB, userID, productID string, priceCents int64) *model.CustomerOverride {
	t.Helper()
	now := time.Now().UTC()
	return &model.CustomerOverride{
		ID:                 UniqueID("ovr"),
		UserID:             &userID,
		ProductID:          productID,
		OverridePriceCents: priceCents,
		Currency:           "USD",
		Reason:             "test override",
		CreatedAt:          now,
	}
}

// NewTestIdentityToken creates a stored identity token with subscribe scope.
func NewTestIdentityToken(t testing.TB, userID string) *model.IdentityToken {
	t.Helper()
	now := time.Now().UTC()
	return &model.IdentityToken{
		ID:          UniqueID("tok"),
		UserID:      userID,
		TokenHash:   fmt.Sprintf("hash-%d", now.UnixNano()),
		TokenPrefix: "abc123",
		Scopes:      []string{model.ScopeSubscribe},
		Name:        "Test Token",
		CreatedAt:   now,
	}
}

// UniqueSlug generates a unique product slug for tests.
func UniqueSlug(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
