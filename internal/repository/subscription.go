package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pricewell/pricewell/internal/model"
)

// Common errors for subscription repository operations.
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// ReplaceSubscription removes any existing subscription for the
// (user_id, product_id) pair and inserts the given row, all inside one
// transaction. Together with the UNIQUE (user_id, product_id) constraint
// this keeps the at-most-one invariant under concurrent subscribes: two
// racing transactions serialize on the constraint instead of leaving
// zero or two rows behind.
func (r *Repository) ReplaceSubscription(ctx context.Context, sub *model.Subscription) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	deleteQuery := `
		DELETE FROM subscriptions
		WHERE user_id = $1 AND product_id = $2
	`
	if _, err := tx.Exec(ctx, deleteQuery, sub.UserID, sub.ProductID); err != nil {
		return fmt.Errorf("failed to delete prior subscription: %w", err)
	}

	insertQuery := `
		INSERT INTO subscriptions (id, user_id, product_id, plan_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, insertQuery,
		sub.ID,
		sub.UserID,
		sub.ProductID,
		sub.PlanID,
		sub.Status,
		sub.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrPlanNotFound
		}
		return fmt.Errorf("failed to insert subscription: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit subscription replace: %w", err)
	}

	return nil
}

// GetSubscription retrieves the single subscription for a (user, product)
// pair, or ErrSubscriptionNotFound if none exists.
func (r *Repository) GetSubscription(ctx context.Context, userID, productID string) (*model.Subscription, error) {
	query := `
		SELECT id, user_id, product_id, plan_id, status, created_at
		FROM subscriptions
		WHERE user_id = $1 AND product_id = $2
	`

	sub, err := scanSubscription(r.pool.QueryRow(ctx, query, userID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return sub, nil
}

// scanSubscription scans a single row into a Subscription model.
func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var sub model.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.ProductID,
		&sub.PlanID,
		&sub.Status,
		&sub.CreatedAt,
	)
	return &sub, err
}
