package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/service"
	"github.com/aussiebroadwan/tellerdesk/pkg/httpx"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
	"github.com/aussiebroadwan/tellerdesk/pkg/tellersdk"
)

// MFAHandler handles the TOTP enrolment endpoints.
type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll handles POST /v1/mfa/totp/enroll
//
//	@Summary		Enroll in TOTP MFA
//	@Description	Generates a TOTP secret for the authenticated user and returns the provisioning URL.
//	@Description	MFA is not enforced at login until the secret is verified.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tellersdk.MFAEnrollResponse	"TOTP secret and provisioning URL"
//	@Failure		400	{object}	tellersdk.ErrorResponse		"MFA already enabled"
//	@Failure		401	{object}	tellersdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		500	{object}	tellersdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/totp/enroll [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromCtx(ctx)
	if !ok || claims.Subject == "" {
		tellersdk.ErrInvalidToken.WriteError(w)
		return
	}

	enrollData, err := h.MFAService.EnrollTOTP(ctx, claims.Subject, claims.Username)
	if err != nil {
		if errors.Is(err, service.ErrMFAAlreadyEnabled) {
			log.Warn("MFA already enabled", "user_id", claims.Subject)
			tellersdk.ErrInvalidRequest.
				WithDescription("MFA is already enabled for this user").
				WriteError(w)
			return
		}
		log.Error("failed to enroll TOTP", "user_id", claims.Subject, "err", err)
		tellersdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tellersdk.MFAEnrollResponse{
		Secret:  enrollData.Secret,
		URL:     enrollData.URL,
		Issuer:  enrollData.Issuer,
		Account: enrollData.Account,
	})
}

// HandleVerify handles POST /v1/mfa/totp/verify
//
//	@Summary		Verify TOTP code and enable MFA
//	@Description	Verifies a TOTP code against the enrolled secret and enables MFA for the user.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tellersdk.MFAVerifyRequest	true	"TOTP code"
//	@Success		200		{object}	map[string]string			"Success message"
//	@Failure		400		{object}	tellersdk.ErrorResponse		"Invalid TOTP code or request"
//	@Failure		401		{object}	tellersdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		500		{object}	tellersdk.ErrorResponse		"Internal server error"
//	@Router			/v1/mfa/totp/verify [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := httpx.ClaimsFromCtx(ctx)
	if !ok || claims.Subject == "" {
		tellersdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req tellersdk.MFAVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tellersdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	if err := h.MFAService.VerifyTOTP(ctx, claims.Subject, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTOTPCode):
			log.Warn("invalid TOTP code", "user_id", claims.Subject)
			tellersdk.ErrValidation.
				WithDescription("the TOTP code is invalid").
				WriteError(w)
		case errors.Is(err, service.ErrMFANotEnrolled):
			tellersdk.ErrInvalidRequest.
				WithDescription("enroll in TOTP before verifying").
				WriteError(w)
		default:
			log.Error("failed to verify TOTP", "user_id", claims.Subject, "err", err)
			tellersdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "MFA enabled successfully",
	})
}
