package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/service"
	"github.com/aussiebroadwan/tellerdesk/pkg/httpx"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
	"github.com/aussiebroadwan/tellerdesk/pkg/tellersdk"
)

// ChatHandler serves the conversation endpoint.
type ChatHandler struct {
	ConversationService *service.ConversationService
}

// HandleTurn handles POST /v1/chat/{threadId}
//
//	@Summary		Conversation Turn
//	@Description	Runs one user turn on a thread. The turn is dispatched to the thread's
//	@Description	persisted active handler; any transfer directive the handler emits is
//	@Description	settled before the response is returned.
//	@Tags			Chat
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			threadId	path		string					true	"Thread identifier"
//	@Param			request		body		tellersdk.ChatRequest	true	"User message"
//	@Success		200			{object}	tellersdk.ChatResponse	"active_handler, messages"
//	@Failure		400			{object}	tellersdk.ErrorResponse	"error, error_description"
//	@Failure		401			{object}	tellersdk.ErrorResponse	"error, error_description"
//	@Failure		500			{object}	tellersdk.ErrorResponse	"error, error_description"
//	@Router			/v1/chat/{threadId} [post].
func (h *ChatHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	threadID := strings.TrimSpace(r.PathValue("threadId"))
	if threadID == "" {
		tellersdk.ErrInvalidRequest.WriteError(w)
		return
	}

	var req tellersdk.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		tellersdk.ErrInvalidJSONBody.WriteError(w)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		tellersdk.ErrInvalidRequest.WithDescription("text must not be empty").WriteError(w)
		return
	}

	// Identity comes from the verified token, never from the body
	out, err := h.ConversationService.Turn(ctx, service.TurnInput{
		TenantID:    httpx.TenantIDFromCtx(ctx),
		UserID:      httpx.UserIDFromCtx(ctx),
		ThreadID:    threadID,
		BearerToken: httpx.TokenFromCtx(ctx),
		ClientAddr:  r.RemoteAddr,
		Text:        req.Text,
	})
	if err != nil {
		if errors.Is(err, service.ErrRoutingStorage) {
			log.Error("turn persistence failed", "thread_id", threadID, "err", err)
		} else {
			log.Error("turn failed", "thread_id", threadID, "err", err)
		}
		tellersdk.ErrServerError.WriteError(w)
		return
	}

	messages := make([]tellersdk.ChatMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		messages = append(messages, tellersdk.ChatMessage{
			Role:   m.Role,
			Sender: m.Sender,
			Text:   m.Text,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, tellersdk.ChatResponse{
		ActiveHandler: out.ActiveHandler,
		Messages:      messages,
	})
}
