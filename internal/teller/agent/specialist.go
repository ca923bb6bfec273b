package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/pkg/idx"
)

// maxReactIterations bounds the model/tool loop for one turn so a confused
// model cannot spin forever.
const maxReactIterations = 6

// SpecialistHandler is the common react loop every handler runs: ask the
// model, execute any requested tool calls through the gateway, feed results
// back, repeat until the model answers in plain text or emits a transfer.
type SpecialistHandler struct {
	name    string
	prompt  string
	model   ModelClient
	gateway Gateway
	tools   []ToolDefinition
}

func NewSpecialistHandler(name, prompt string, model ModelClient, gateway Gateway, tools []ToolDefinition) *SpecialistHandler {
	return &SpecialistHandler{
		name:    name,
		prompt:  prompt,
		model:   model,
		gateway: gateway,
		tools:   tools,
	}
}

func (h *SpecialistHandler) Name() string { return h.name }

func (h *SpecialistHandler) Handle(ctx context.Context, turn TurnContext) (HandleResult, error) {
	transcript := toModelMessages(turn.History)
	transcript = append(transcript, ModelMessage{
		Role:    domain.MessageRoleUser,
		Sender:  "user",
		Content: turn.UserText,
	})

	var produced []domain.Message

	for range maxReactIterations {
		resp, err := h.model.Chat(ctx, h.prompt, transcript, h.tools)
		if err != nil {
			return HandleResult{}, fmt.Errorf("model chat: %w", err)
		}

		if resp.Text != "" {
			msg := newMessage(domain.MessageRoleAssistant, h.name, resp.Text, resp.TokensUsed)
			produced = append(produced, msg)
			transcript = append(transcript, ModelMessage{
				Role:    msg.Role,
				Sender:  msg.Sender,
				Content: msg.Text,
			})
		}

		if len(resp.ToolCalls) == 0 {
			break
		}

		transferred := false
		for _, call := range resp.ToolCalls {
			result, err := h.gateway.Call(ctx, turn, call.Name, call.Arguments)
			if err != nil {
				// Gateway rejections become tool messages so the model
				// can explain the failure rather than killing the turn.
				result = domain.ToolResult{Success: false, Error: err.Error()}
			}

			text := renderToolResult(result)
			msg := newMessage(domain.MessageRoleTool, h.name, text, 0)
			produced = append(produced, msg)
			transcript = append(transcript, ModelMessage{
				Role:    msg.Role,
				Sender:  msg.Sender,
				Content: msg.Text,
			})

			if _, ok := TransferTarget(msg); ok {
				transferred = true
			}
		}

		// A transfer ends this handler's part of the turn; the next
		// user message lands with the new handler.
		if transferred {
			break
		}
	}

	return HandleResult{Messages: produced}, nil
}

// TransferTarget reports whether a tool message carries a transfer directive
// and, if so, which handler it names.
func TransferTarget(msg domain.Message) (string, bool) {
	if msg.Role != domain.MessageRoleTool {
		return "", false
	}
	var payload struct {
		Goto string `json:"goto"`
	}
	if err := json.Unmarshal([]byte(msg.Text), &payload); err != nil {
		return "", false
	}
	if payload.Goto == "" {
		return "", false
	}
	return payload.Goto, true
}

func renderToolResult(result domain.ToolResult) string {
	var payload any = result.Result
	if !result.Success {
		payload = map[string]string{"error": result.Error}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return `{"error":"unencodable tool result"}`
	}
	return string(raw)
}

func newMessage(role, sender, text string, tokens int) domain.Message {
	return domain.Message{
		ID:         idx.New().String(),
		Role:       role,
		Sender:     sender,
		Text:       text,
		TokensUsed: tokens,
		CreatedAt:  time.Now().UTC(),
	}
}

func toModelMessages(history []domain.Message) []ModelMessage {
	out := make([]ModelMessage, 0, len(history))
	for _, m := range history {
		out = append(out, ModelMessage{
			Role:    m.Role,
			Sender:  m.Sender,
			Content: m.Text,
		})
	}
	return out
}
