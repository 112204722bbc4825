// Package middleware provides HTTP middleware for the tagkeep API.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/marmos91/tagkeep/internal/controlplane/api/auth"
	"github.com/marmos91/tagkeep/internal/controlplane/api/handlers"
	"github.com/marmos91/tagkeep/internal/logger"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// GetClaimsFromContext returns the authenticated claims, or nil if the
// request was not authenticated.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}

// extractBearerToken returns the token of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// JWTAuth rejects requests without a valid bearer token and stores the
// token's claims in the request context.
func JWTAuth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				handlers.Unauthorized(w, "Missing bearer token")
				return
			}

			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				if errors.Is(err, auth.ErrExpiredToken) {
					handlers.Unauthorized(w, "Token has expired")
					return
				}
				handlers.Unauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			if lc := logger.FromContext(ctx); lc != nil {
				ctx = logger.WithContext(ctx, lc.WithSubject(claims.Subject))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose token does not grant admin access.
// Must run after JWTAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return require(func(c *auth.Claims) bool { return c.IsAdmin() }, "Admin access required")
}

// RequireRead rejects requests whose token does not grant read access.
// Must run after JWTAuth.
func RequireRead() func(http.Handler) http.Handler {
	return require(func(c *auth.Claims) bool { return c.CanRead() }, "Read access required")
}

func require(allowed func(*auth.Claims) bool, detail string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				handlers.Unauthorized(w, "Authentication required")
				return
			}
			if !allowed(claims) {
				handlers.Forbidden(w, detail)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
