package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pricewell/pricewell/internal/model"
)

// Common errors for product repository operations.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrSlugExists      = errors.New("slug already exists")
)

// CreateProduct inserts a new product into the database.
func (r *Repository) CreateProduct(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, slug, name, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Slug,
		product.Name,
		product.Description,
		product.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetProductBySlug retrieves a product by its unique slug.
func (r *Repository) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	query := `
		SELECT id, slug, name, description, created_at
		FROM products
		WHERE slug = $1
	`

	product, err := scanProduct(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by slug: %w", err)
	}

	return product, nil
}

// GetProductByID retrieves a product by its ID.
func (r *Repository) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	query := `
		SELECT id, slug, name, description, created_at
		FROM products
		WHERE id = $1
	`

	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}

	return product, nil
}

// scanProduct scans a single row into a Product model.
func scanProduct(row pgx.Row) (*model.Product, error) {
	var product model.Product
	err := row.Scan(
		&product.ID,
		&product.Slug,
		&product.Name,
		&product.Description,
		&product.CreatedAt,
	)
	return &product, err
}
