package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pricewell/pricewell/internal/auth"
)

const (
	// minVerifyDuration is the minimum time to spend on verification to
	// prevent timing attacks.
	minVerifyDuration = 200 * time.Millisecond
)

// IdentityConfig holds configuration for the identity middleware.
type IdentityConfig struct {
	Logger   *slog.Logger
	Verifier auth.Verifier
}

// RequireIdentity returns a middleware that authenticates requests.
// It extracts the identity token from the Authorization header, verifies
// it, and injects the verified identity into the request context.
// Requests without a valid token are rejected with 401.
func RequireIdentity(cfg IdentityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minVerifyDuration {
					time.Sleep(minVerifyDuration - elapsed)
				}
			}()

			token := extractToken(r)
			if token == "" {
				cfg.Logger.Warn("identity verification failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeIdentityError(w)
				return
			}

			identity, err := cfg.Verifier.Verify(r.Context(), token)
			if err != nil {
				cfg.Logger.Warn("identity verification failed",
					slog.String("reason", "invalid_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeIdentityError(w)
				return
			}

			cfg.Logger.Info("identity verified",
				slog.String("token_id", identity.TokenID),
				slog.String("token_prefix", identity.TokenPrefix),
				slog.String("user_id", identity.UserID),
				slog.String("ip", r.RemoteAddr),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalIdentity returns a middleware that verifies a token when one is
// presented but lets anonymous requests through. Used on public pricing
// reads, where a verified identity personalizes the response.
// A token that is present but invalid is still rejected, so callers never
// silently fall back to anonymous pricing.
func OptionalIdentity(cfg IdentityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := cfg.Verifier.Verify(r.Context(), token)
			if err != nil {
				cfg.Logger.Warn("identity verification failed",
					slog.String("reason", "invalid_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeIdentityError(w)
				return
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the identity token from the request.
// Supports both "Authorization: Bearer <token>" and "X-Identity-Token: <token>" headers.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	return r.Header.Get("X-Identity-Token")
}

// writeIdentityError writes a 401 Unauthorized response.
// Uses the same message for all verification failures to prevent enumeration.
func writeIdentityError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing identity token"}}`))
}
