// Package mw provides HTTP middleware.
package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/launchbase/launchbase-api/internal/auth"
)

type contextKey string

const userClaimsKey contextKey = "userClaims"

// UserClaims is the authenticated caller attached to the request context.
type UserClaims struct {
	UserID   string
	Email    string
	Metadata map[string]any
}

// Auth returns middleware that requires a valid bearer token.
// Failures are answered with 401 and a terse body; the reason is logged
// nowhere to avoid leaking verification detail.
func Auth(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := WithUserClaims(r.Context(), &UserClaims{
				UserID:   claims.Subject,
				Email:    claims.Email,
				Metadata: claims.UserMetadata,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserClaims returns a context carrying the authenticated caller.
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// GetUserClaims extracts the authenticated caller from the context.
func GetUserClaims(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*UserClaims)
	return claims, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"Unauthorized"}`))
}
