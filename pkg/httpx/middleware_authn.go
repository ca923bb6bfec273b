package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tellerdesk/pkg/jwtx"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
)

// TokenVerifier validates a bearer token for a request. Implementations are
// expected to consult revocation state, not just the signature, so a logged
// out token is rejected at the door.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (jwtx.Claims, error)
}

func AuthnMiddleware(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(ctx, raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims, raw string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyTenantID, c.TenantID)
	ctx = context.WithValue(ctx, CtxKeyRoles, c.Roles)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	ctx = context.WithValue(ctx, CtxKeyToken, raw)
	return ctx
}

// RFC 6750-compliant error response for bearer auth. The body carries the
// same JSON error shape the rest of the API uses so clients parse one form.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}
