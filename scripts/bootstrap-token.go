package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pricewell/pricewell/internal/auth"
	"github.com/pricewell/pricewell/internal/model"
	"github.com/pricewell/pricewell/internal/repository"
)

type output struct {
	UserID      string   `json:"user_id"`
	TokenID     string   `json:"token_id"`
	Token       string   `json:"token"`
	TokenPrefix string   `json:"token_prefix"`
	Scopes      []string `json:"scopes"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		userID      = flag.String("user-id", "system", "User ID the token acts on behalf of")
		name        = flag.String("name", "bootstrap", "Identity token name")
		env         = flag.String("env", auth.EnvLive, "Token environment: live or test")
		scopesInput = flag.String("scopes", "admin", "Comma-separated scopes (subscribe,admin)")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	scopes, err := parseScopes(*scopesInput)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	generated, err := auth.GenerateToken(*env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate identity token:", err)
		os.Exit(1)
	}

	token := &model.IdentityToken{
		ID:          ulid.Make().String(),
		UserID:      *userID,
		TokenHash:   generated.Hash,
		TokenPrefix: generated.Prefix,
		Scopes:      scopes,
		Name:        *name,
		CreatedAt:   time.Now().UTC(),
	}

	if err := repo.CreateIdentityToken(ctx, token); err != nil {
		fmt.Fprintln(os.Stderr, "create identity token:", err)
		os.Exit(1)
	}

	out := output{
		UserID:      *userID,
		TokenID:     token.ID,
		Token:       generated.Plaintext,
		TokenPrefix: token.TokenPrefix,
		Scopes:      scopes,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func parseScopes(input string) ([]string, error) {
	if strings.TrimSpace(input) == "" {
		return []string{model.ScopeAdmin}, nil
	}
	parts := strings.Split(input, ",")
	scopes := make([]string, 0, len(parts))
	for _, part := range parts {
		scope := strings.TrimSpace(part)
		if scope == "" {
			continue
		}
		if !isValidScope(scope) {
			return nil, fmt.Errorf("invalid scope: %s", scope)
		}
		scopes = append(scopes, scope)
	}
	if len(scopes) == 0 {
		scopes = []string{model.ScopeAdmin}
	}
	return scopes, nil
}

func isValidScope(scope string) bool {
	for _, allowed := range model.ValidScopes {
		if scope == allowed {
			return true
		}
	}
	return false
}
