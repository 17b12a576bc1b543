package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dvloznov/finance-journal/internal/account"
)

// TokenValidator checks access tokens.
type TokenValidator interface {
	Validate(token string) (*account.Claims, error)
}

const claimsKey contextKey = "claims"

// Auth validates an optional bearer token. Requests without an Authorization
// header pass through unchanged; a present but invalid token is rejected
// with 401. Valid claims are available through ClaimsFromContext.
func Auth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || tokens == nil {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, account.TokenType) || strings.TrimSpace(token) == "" {
				WriteError(w, http.StatusUnauthorized, "Invalid authorization header")
				return
			}

			claims, err := tokens.Validate(strings.TrimSpace(token))
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// ClaimsFromContext returns the claims of a validated bearer token.
func ClaimsFromContext(ctx context.Context) (*account.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*account.Claims)
	return claims, ok
}

// WithClaims stores claims in ctx the way Auth does.
func WithClaims(ctx context.Context, claims *account.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
