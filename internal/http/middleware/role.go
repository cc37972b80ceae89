package middleware

import "net/http"

// RequireRole permits the request only when the authenticated role is in the
// allowed set. It assumes Auth already ran; reaching it without claims is a
// composition bug and maps to 401.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if _, ok := allowed[claims.Role]; !ok {
				writeError(w, http.StatusForbidden, "Access forbidden: insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
