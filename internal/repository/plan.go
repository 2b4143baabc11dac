package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/pricewell/pricewell/internal/model"
)

// Common errors for plan repository operations.
var (
	ErrPlanNotFound = errors.New("plan not found")
)

// CreatePlan inserts a new plan into the database.
func (r *Repository) CreatePlan(ctx context.Context, plan *model.Plan) error {
	query := `
		INSERT INTO plans (id, product_id, name, price_cents, currency, billing_period, features, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		plan.ID,
		plan.ProductID,
		plan.Name,
		plan.PriceCents,
		plan.Currency,
		plan.BillingPeriod,
		pq.Array(plan.Features),
		plan.IsActive,
		plan.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to create plan: %w", err)
	}

	return nil
}

// GetPlanByID retrieves a plan by its ID.
func (r *Repository) GetPlanByID(ctx context.Context, id string) (*model.Plan, error) {
	query := `
		SELECT id, product_id, name, price_cents, currency, billing_period, features, is_active, created_at
		FROM plans
		WHERE id = $1
	`

	plan, err := scanPlan(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan by ID: %w", err)
	}

	return plan, nil
}

// ListActivePlans retrieves all active plans for a product,
// ordered ascending by list price. The pricing resolver depends on
// this ordering being preserved through to the response.
func (r *Repository) ListActivePlans(ctx context.Context, productID string) ([]*model.Plan, error) {
	query := `
		SELECT id, product_id, name, price_cents, currency, billing_period, features, is_active, created_at
		FROM plans
		WHERE product_id = $1 AND is_active = TRUE
		ORDER BY price_cents ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}
	defer rows.Close()

	var plans []*model.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}

	return plans, nil
}

// scanPlan scans a single row into a Plan model.
func scanPlan(row pgx.Row) (*model.Plan, error) {
	var plan model.Plan
	err := row.Scan(
		&plan.ID,
		&plan.ProductID,
		&plan.Name,
		&plan.PriceCents,
		&plan.Currency,
		&plan.BillingPeriod,
		pq.Array(&plan.Features),
		&plan.IsActive,
		&plan.CreatedAt,
	)
	return &plan, err
}
