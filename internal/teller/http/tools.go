package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/service"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/tools"
	"github.com/aussiebroadwan/tellerdesk/pkg/httpx"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
	"github.com/aussiebroadwan/tellerdesk/pkg/tellersdk"
)

// ToolsHandler serves the tool listing and invocation endpoints.
type ToolsHandler struct {
	Registry       *tools.Registry
	GatewayService *service.GatewayService
}

// HandleList handles GET /v1/tools
//
//	@Summary		List Tools
//	@Description	Returns the registered tools the caller's roles may invoke. Tools
//	@Description	outside the caller's permissions are omitted rather than marked.
//	@Tags			Tools
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	tellersdk.ToolsResponse	"tools"
//	@Failure		401	{object}	tellersdk.ErrorResponse	"error, error_description"
//	@Router			/v1/tools [get].
func (h *ToolsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromCtx(ctx)
	if !ok {
		tellersdk.ErrInvalidToken.WriteError(w)
		return
	}
	roles := domain.RolesFromStrings(claims.Roles)
	permitted := tools.PermittedTools(roles)

	out := make([]tellersdk.ToolInfo, 0)
	for _, info := range h.Registry.List() {
		if !slices.Contains(permitted, info.Name) {
			continue
		}
		out = append(out, tellersdk.ToolInfo{
			Name:        info.Name,
			Description: info.Description,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, tellersdk.ToolsResponse{Tools: out})
}

// HandleCall handles POST /v1/tools/call
//
//	@Summary		Invoke a Tool
//	@Description	Runs one tool call through the invocation gateway. Gateway rejections
//	@Description	(bad token, rate limit, permissions, validation) map to error statuses;
//	@Description	tool execution failures and timeouts return 200 with success=false.
//	@Tags			Tools
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		tellersdk.ToolCallRequest	true	"Tool call"
//	@Success		200		{object}	tellersdk.ToolCallResponse	"success, result, error, execution_time_ms"
//	@Failure		400		{object}	tellersdk.ErrorResponse		"error, error_description"
//	@Failure		401		{object}	tellersdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	tellersdk.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	tellersdk.ErrorResponse		"error, error_description"
//	@Failure		429		{object}	tellersdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	tellersdk.ErrorResponse		"error, error_description"
//	@Router			/v1/tools/call [post].
func (h *ToolsHandler) HandleCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req tellersdk.ToolCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tellersdk.ErrInvalidJSONBody.WriteError(w)
		return
	}
	if req.ToolName == "" {
		tellersdk.ErrInvalidRequest.WriteError(w)
		return
	}

	result, err := h.GatewayService.Invoke(ctx, service.InvokeRequest{
		ToolName:         req.ToolName,
		Arguments:        req.Arguments,
		BearerToken:      httpx.TokenFromCtx(ctx),
		DeclaredTenantID: req.TenantID,
		DeclaredUserID:   req.UserID,
		DeclaredThreadID: req.ThreadID,
		ClientAddr:       r.RemoteAddr,
	})
	if err != nil {
		writeGatewayError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tellersdk.ToolCallResponse{
		Success:         result.Success,
		Result:          result.Result,
		Error:           result.Error,
		ExecutionTimeMs: result.ExecutionTimeMs,
	})
}

// writeGatewayError maps gateway rejections onto the wire error shapes.
func writeGatewayError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		tellersdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrRateLimited):
		tellersdk.ErrRateLimited.WriteError(w)
	case errors.Is(err, service.ErrForbidden):
		tellersdk.ErrForbidden.WriteError(w)
	case errors.Is(err, service.ErrToolNotFound):
		tellersdk.ErrToolNotFound.WriteError(w)
	case errors.Is(err, service.ErrValidation):
		tellersdk.ErrValidation.WithDescription(err.Error()).WriteError(w)
	default:
		log.Error("tool invocation failed", "err", err)
		tellersdk.ErrServerError.WriteError(w)
	}
}
