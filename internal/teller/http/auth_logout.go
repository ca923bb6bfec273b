package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/service"
	"github.com/aussiebroadwan/tellerdesk/pkg/httpx"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
	"github.com/aussiebroadwan/tellerdesk/pkg/tellersdk"
)

// LogoutHandler serves POST /v1/auth/logout.
type LogoutHandler struct {
	TokenService *service.TokenService
	AuditService *service.AuditService
}

// ServeHTTP godoc
//
//	@Summary		Logout
//	@Description	Revokes the presented access token's jti. Revocation is idempotent
//	@Description	and the endpoint always returns 200 so callers cannot probe the
//	@Description	revocation set.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	map[string]string		"empty object"
//	@Failure		401	{object}	tellersdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromCtx(ctx)
	if !ok {
		tellersdk.ErrInvalidToken.WriteError(w)
		return
	}

	expiresAt := time.Now().UTC()
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	// Revocation failures are logged but not surfaced. The response shape
	// never reveals whether the jti was already revoked.
	if err := h.TokenService.Revoke(ctx, claims.ID, expiresAt); err != nil {
		log.Error("revoke failed", "jti", claims.ID, "err", err)
	} else {
		h.AuditService.Record(ctx, domain.AuditEvent{
			Type:       domain.AuditAuthRevoked,
			TenantID:   claims.TenantID,
			UserID:     claims.Subject,
			ClientAddr: r.RemoteAddr,
			Success:    true,
		})
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{})
}
