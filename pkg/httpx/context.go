package httpx

import (
	"context"

	"github.com/aussiebroadwan/tellerdesk/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID   ctxKey = "user_id"
	CtxKeyTenantID ctxKey = "tenant_id"
	CtxKeyRoles    ctxKey = "roles"
	CtxKeyClaims   ctxKey = "claims" // full jwtx.Claims
	CtxKeyToken    ctxKey = "token"  // raw bearer token, for services that re-verify
)

func rolesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyRoles).([]string); ok {
		return v
	}
	return nil
}

// UserIDFromCtx returns the authenticated subject or "".
func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// TenantIDFromCtx returns the authenticated tenant or "".
func TenantIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyTenantID).(string); ok {
		return v
	}
	return ""
}

// ClaimsFromCtx returns the verified claims for the request, if any.
func ClaimsFromCtx(ctx context.Context) (jwtx.Claims, bool) {
	v, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return v, ok
}

// TokenFromCtx returns the raw bearer token the caller presented or "".
func TokenFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyToken).(string); ok {
		return v
	}
	return ""
}
