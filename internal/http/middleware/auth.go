package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"evcharge/internal/service"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenValidator verifies a raw token string into claims.
type TokenValidator interface {
	ValidateToken(token string) (*service.Claims, error)
}

// Auth validates the Authorization header and attaches claims to the request
// context. A missing or malformed header is 401; a present but unverifiable
// token is 403. The two cases stay distinct: absent credential is not the
// same failure as invalid credential.
func Auth(tokens TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				writeError(w, http.StatusForbidden, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the authenticated claims attached by Auth.
func ClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.Claims)
	return claims, ok
}

// ContextWithClaims attaches claims to a context. Exported for tests.
func ContextWithClaims(ctx context.Context, claims *service.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
