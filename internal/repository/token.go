package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pricewell/pricewell/internal/model"
)

// Common errors for identity token repository operations.
var (
	ErrTokenNotFound = errors.New("identity token not found")
)

// CreateIdentityToken inserts a new identity token into the database.
func (r *Repository) CreateIdentityToken(ctx context.Context, token *model.IdentityToken) error {
	query := `
		INSERT INTO identity_tokens (id, user_id, token_hash, token_prefix, scopes, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.TokenPrefix,
		pq.Array(token.Scopes),
		token.Name,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create identity token: %w", err)
	}

	return nil
}

// GetIdentityTokensByPrefix retrieves all non-revoked tokens with the given
// visible prefix. Prefixes are short, so collisions are possible; the
// verifier checks candidates against the full hash.
func (r *Repository) GetIdentityTokensByPrefix(ctx context.Context, prefix string) ([]*model.IdentityToken, error) {
	query := `
		SELECT id, user_id, token_hash, token_prefix, scopes, name, revoked_at, last_used_at, created_at
		FROM identity_tokens
		WHERE token_prefix = $1 AND revoked_at IS NULL
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get identity tokens by prefix: %w", err)
	}
	defer rows.Close()

	var tokens []*model.IdentityToken
	for rows.Next() {
		var token model.IdentityToken
		var scopes []string
		err := rows.Scan(
			&token.ID,
			&token.UserID,
			&token.TokenHash,
			&token.TokenPrefix,
			pq.Array(&scopes),
			&token.Name,
			&token.RevokedAt,
			&token.LastUsedAt,
			&token.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan identity token: %w", err)
		}
		token.Scopes = scopes
		tokens = append(tokens, &token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating identity tokens: %w", err)
	}

	return tokens, nil
}

// UpdateIdentityTokenLastUsed updates the last used timestamp for a token.
func (r *Repository) UpdateIdentityTokenLastUsed(ctx context.Context, id string) error {
	query := `
		UPDATE identity_tokens
		SET last_used_at = $2
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update token last used: %w", err)
	}

	return nil
}

// RevokeIdentityToken marks a token as revoked.
func (r *Repository) RevokeIdentityToken(ctx context.Context, id string) error {
	query := `
		UPDATE identity_tokens
		SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke identity token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTokenNotFound
	}

	return nil
}
