// Package agent holds the conversation handlers and the model client
// abstraction they talk through. The language model itself is an external
// collaborator; everything here treats it as an interface.
package agent

import "context"

// ToolDefinition describes a tool offered to the model for one chat call.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolCall is a model-requested tool invocation. Arguments are untrusted
// model output and go through the gateway like any other tool call.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ModelMessage is one entry of the chat transcript sent to the model.
type ModelMessage struct {
	Role    string `json:"role"` // user, assistant or tool
	Sender  string `json:"sender,omitempty"`
	Content string `json:"content"`
}

// ModelResponse is what the model produced for one chat call.
type ModelResponse struct {
	Text       string
	ToolCalls  []ToolCall
	TokensUsed int
}

// ModelClient abstracts the language model call. Implementations are expected
// to honour ctx cancellation.
type ModelClient interface {
	Chat(ctx context.Context, system string, history []ModelMessage, tools []ToolDefinition) (ModelResponse, error)
}
