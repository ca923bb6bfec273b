package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/service"
	"github.com/aussiebroadwan/tellerdesk/pkg/httpx"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
	"github.com/aussiebroadwan/tellerdesk/pkg/tellersdk"
)

// LoginHandler serves POST /v1/auth/login.
type LoginHandler struct {
	UserService  *service.UserService
	TokenService *service.TokenService
	AuditService *service.AuditService
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Exchanges a tenant-scoped username and password for an access and refresh token pair.
//	@Description	When the user has TOTP enrolled, otp_code is also required.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tellersdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	tellersdk.TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400		{object}	tellersdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	tellersdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	tellersdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// 1. Parse the request body
	var req tellersdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tellersdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	tenantID := strings.TrimSpace(req.TenantID)
	username := strings.TrimSpace(req.Username)
	if tenantID == "" || username == "" || req.Password == "" {
		tellersdk.ErrInvalidRequest.WriteError(w)
		return
	}

	// 2. Authenticate within the tenant
	user, err := h.UserService.Authenticate(ctx, tenantID, username, req.Password, req.OTPCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMFARequired):
			tellersdk.ErrMFARequired.WriteError(w)
		case errors.Is(err, service.ErrInvalidCredentials):
			h.AuditService.Record(ctx, domain.AuditEvent{
				Type:       domain.AuditAuthLoginFailed,
				TenantID:   tenantID,
				Detail:     "login failed for " + username,
				ClientAddr: r.RemoteAddr,
			})
			tellersdk.ErrInvalidGrant.WriteError(w)
		default:
			log.Error("login failed", "err", err)
			tellersdk.ErrServerError.WriteError(w)
		}
		return
	}

	// 3. Mint the token pair
	pair, err := h.TokenService.IssuePair(ctx, user)
	if err != nil {
		log.Error("token issuance failed", "err", err)
		tellersdk.ErrServerError.WriteError(w)
		return
	}

	h.AuditService.Record(ctx, domain.AuditEvent{
		Type:       domain.AuditAuthLogin,
		TenantID:   user.TenantID,
		UserID:     user.ID,
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
