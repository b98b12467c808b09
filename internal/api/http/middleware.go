package http

import (
	"context"
	"net/http"
	"strings"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/security"
)

type contextKey string

const staffClaimsKey contextKey = "staff_claims"

// AuthMiddleware validates the bearer token and stores the staff claims
// on the request context. The validated staff id becomes the actor
// recorded on ledger entries.
func AuthMiddleware(tm security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authorization header must use the Bearer scheme"})
				return
			}

			claims, err := tm.ValidateToken(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
				return
			}

			ctx := context.WithValue(r.Context(), staffClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffIDFromContext extracts the authenticated staff id.
func StaffIDFromContext(ctx context.Context) (int32, error) {
	claims, ok := ctx.Value(staffClaimsKey).(*security.StaffClaims)
	if !ok || claims == nil {
		return 0, domain.E(domain.KindInternal, "no authenticated staff on request context")
	}
	return claims.StaffID, nil
}
