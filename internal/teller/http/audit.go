package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/service"
	"github.com/aussiebroadwan/tellerdesk/pkg/httpx"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
	"github.com/aussiebroadwan/tellerdesk/pkg/tellersdk"
)

// AuditHandler serves the admin audit trail listing.
type AuditHandler struct {
	AuditService *service.AuditService
}

// HandleList handles GET /v1/audit
//
//	@Summary		List Audit Events
//	@Description	Returns the most recent security-relevant events, newest first.
//	@Description	Admin only. The optional limit is clamped server side.
//	@Tags			Audit
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int						false	"Maximum events to return"
//	@Success		200		{object}	tellersdk.AuditResponse	"events"
//	@Failure		400		{object}	tellersdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	tellersdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	tellersdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	tellersdk.ErrorResponse	"error, error_description"
//	@Router			/v1/audit [get].
func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			tellersdk.ErrInvalidRequest.WithDescription("limit must be a non-negative integer").WriteError(w)
			return
		}
		limit = n
	}

	events, err := h.AuditService.ListRecent(ctx, limit)
	if err != nil {
		log.Error("audit listing failed", "err", err)
		tellersdk.ErrServerError.WriteError(w)
		return
	}

	out := make([]tellersdk.AuditEvent, 0, len(events))
	for _, e := range events {
		out = append(out, tellersdk.AuditEvent{
			ID:         e.ID,
			Type:       string(e.Type),
			TenantID:   e.TenantID,
			UserID:     e.UserID,
			ToolName:   e.ToolName,
			Detail:     e.Detail,
			ClientAddr: e.ClientAddr,
			Success:    e.Success,
			CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	httpx.WriteJSON(w, http.StatusOK, tellersdk.AuditResponse{Events: out})
}
