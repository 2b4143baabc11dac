package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pricewell/pricewell/internal/model"
)

// CreateOverride inserts a new customer override into the database.
// Window validity (ends_at >= starts_at) is enforced by the service
// layer before this call; downstream references are enforced by
// foreign keys.
func (r *Repository) CreateOverride(ctx context.Context, override *model.CustomerOverride) error {
	query := `
		INSERT INTO customer_overrides (id, user_id, product_id, plan_id, override_price_cents, currency, reason, starts_at, ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		override.ID,
		override.UserID,
		override.ProductID,
		override.PlanID,
		override.OverridePriceCents,
		override.Currency,
		override.Reason,
		override.StartsAt,
		override.EndsAt,
		override.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to create override: %w", err)
	}

	return nil
}

// ListOverrides retrieves all overrides on a product that can apply to the
// given user: rows scoped to that user plus rows with no user scope (which
// apply to everyone). A nil userID returns no overrides; anonymous callers
// always see list prices.
//
// Window validity is not filtered here - the resolver checks windows
// against its own notion of "now".
func (r *Repository) ListOverrides(ctx context.Context, userID *string, productID string) ([]*model.CustomerOverride, error) {
	if userID == nil {
		return nil, nil
	}

	query := `
		SELECT id, user_id, product_id, plan_id, override_price_cents, currency, reason, starts_at, ends_at, created_at
		FROM customer_overrides
		WHERE product_id = $1 AND (user_id = $2 OR user_id IS NULL)
	`

	rows, err := r.pool.Query(ctx, query, productID, *userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	defer rows.Close()

	var overrides []*model.CustomerOverride
	for rows.Next() {
		override, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		overrides = append(overrides, override)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overrides: %w", err)
	}

	return overrides, nil
}

// scanOverride scans a single row into a CustomerOverride model.
func scanOverride(row pgx.Row) (*model.CustomerOverride, error) {
	var override model.CustomerOverride
	err := row.Scan(
		&override.ID,
		&override.UserID,
		&override.ProductID,
		&override.PlanID,
		&override.OverridePriceCents,
		&override.Currency,
		&override.Reason,
		&override.StartsAt,
		&override.EndsAt,
		&override.CreatedAt,
	)
	return &override, err
}
