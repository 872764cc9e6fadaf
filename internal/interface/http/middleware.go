package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"example.com/storefront/internal/infra/security"
)

type ctxKey int

const ctxClaimsKey ctxKey = iota

var errUnauthenticated = errors.New("unauthenticated")

// authMiddleware guards the admin surface. Tokens come from the external
// identity service; this layer only verifies them.
func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := a.verifier.Verify(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), ctxClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getClaims(ctx context.Context) *security.Claims {
	if claims, ok := ctx.Value(ctxClaimsKey).(*security.Claims); ok {
		return claims
	}
	return nil
}

// logAdminAction records which authenticated subject performed a mutation.
func (a *API) logAdminAction(r *http.Request, action string) {
	if claims := getClaims(r.Context()); claims != nil {
		a.log.Info(action, zap.String("subject", claims.Subject))
	}
}
