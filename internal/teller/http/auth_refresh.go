package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/service"
	"github.com/aussiebroadwan/tellerdesk/pkg/httpx"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
	"github.com/aussiebroadwan/tellerdesk/pkg/tellersdk"
)

// RefreshHandler serves POST /v1/auth/refresh.
type RefreshHandler struct {
	TokenService *service.TokenService
	AuditService *service.AuditService
}

// ServeHTTP godoc
//
//	@Summary		Refresh Tokens
//	@Description	Rotates a refresh token for a fresh access and refresh token pair.
//	@Description	The presented refresh token is consumed; presenting it again fails.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tellersdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	tellersdk.TokenResponse		"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	tellersdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	tellersdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	tellersdk.ErrorResponse		"error, error_description"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req tellersdk.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tellersdk.ErrInvalidJSONBody.WriteError(w)
		return
	}
	if req.RefreshToken == "" {
		tellersdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.TokenService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefresh), errors.Is(err, service.ErrExpiredRefresh):
			tellersdk.ErrInvalidGrant.WriteError(w)
		default:
			log.Error("refresh failed", "err", err)
			tellersdk.ErrServerError.WriteError(w)
		}
		return
	}

	h.AuditService.Record(ctx, domain.AuditEvent{
		Type:       domain.AuditAuthRefresh,
		ClientAddr: r.RemoteAddr,
		Success:    true,
	})

	response := tellersdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, response)
}
