package httpx

import (
	"encoding/json"
	"net/http"
	"strings"
)

// RequireAnyRole the caller must hold at least one of the provided roles.
// Must run after AuthnMiddleware so the roles are in the request context.
func RequireAnyRole(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, r := range required {
		want[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := rolesFromCtx(r.Context())

			// 1. Ensure at least one required role is present.
			for _, role := range have {
				if _, ok := want[role]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeBearerRoleError(w, http.StatusForbidden, required...)
		})
	}
}

// RFC 6750-style error response for insufficient role membership.
func writeBearerRoleError(w http.ResponseWriter, code int, required ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             "forbidden",
		"error_description": "the caller's role does not permit this operation",
	})
}
