// Package auth provides identity token verification.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Token format: pt_{env}_{prefix}_{secret}
// Example: pt_live_7a9x3k_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
const (
	TokenPrefixLen = 6  // Visible prefix length (hex encoded 3 bytes)
	TokenSecretLen = 32 // Secret length (hex encoded 16 bytes)
)

// Environment indicators for token prefix.
const (
	EnvLive = "live"
	EnvTest = "test"
)

var (
	// ErrInvalidTokenFormat indicates the token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid identity token format")
	// tokenFormatRegex validates the token format.
	tokenFormatRegex = regexp.MustCompile(`^pt_(live|test)_([a-f0-9]{6})_([a-f0-9]{32})$`)
)

// GeneratedToken contains the parts of a newly minted identity token.
type GeneratedToken struct {
	Plaintext string // Full token (show once only)
	Hash      string // Argon2id hash for storage
	Prefix    string // 6-char visible prefix
}

// GenerateToken mints a new identity token for the specified environment.
// Returns the plaintext (to show once), hash (to store), and prefix (for lookup).
func GenerateToken(env string) (*GeneratedToken, error) {
	if env != EnvLive && env != EnvTest {
		env = EnvLive // Default to live
	}

	// Generate 3-byte prefix (6 hex chars)
	prefixBytes := make([]byte, 3)
	if _, err := rand.Read(prefixBytes); err != nil {
		return nil, fmt.Errorf("generate prefix: %w", err)
	}
	prefix := hex.EncodeToString(prefixBytes)

	// Generate 16-byte secret (32 hex chars)
	secretBytes := make([]byte, 16)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	secret := hex.EncodeToString(secretBytes)

	plaintext := fmt.Sprintf("pt_%s_%s_%s", env, prefix, secret)

	hash, err := HashToken(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hash token: %w", err)
	}

	return &GeneratedToken{
		Plaintext: plaintext,
		Hash:      hash,
		Prefix:    prefix,
	}, nil
}

// ParsedToken contains the parsed parts of an identity token.
type ParsedToken struct {
	Env    string
	Prefix string
	Secret string
}

// ParseToken extracts the components from a plaintext identity token.
// Returns an error if the format is invalid.
func ParseToken(token string) (*ParsedToken, error) {
	matches := tokenFormatRegex.FindStringSubmatch(token)
	if matches == nil {
		return nil, ErrInvalidTokenFormat
	}

	return &ParsedToken{
		Env:    matches[1],
		Prefix: matches[2],
		Secret: matches[3],
	}, nil
}

// ValidateTokenFormat checks if the token matches the expected format.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}
