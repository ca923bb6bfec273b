package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPModelClient talks to an OpenAI-compatible chat completions endpoint.
// Tool calls come back as structured tool_calls entries; their arguments are
// decoded here but trusted nowhere, every call still passes the gateway.
type HTTPModelClient struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

func NewHTTPModelClient(baseURL, apiKey, model string) *HTTPModelClient {
	return &HTTPModelClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatCompletionRequest struct {
	Model    string                  `json:"model"`
	Messages []chatCompletionMessage `json:"messages"`
	Tools    []chatCompletionTool    `json:"tools,omitempty"`
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

type chatCompletionTool struct {
	Type     string                 `json:"type"`
	Function chatCompletionFunction `json:"function"`
}

type chatCompletionFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *HTTPModelClient) Chat(ctx context.Context, system string, history []ModelMessage, tools []ToolDefinition) (ModelResponse, error) {
	messages := make([]chatCompletionMessage, 0, len(history)+1)
	messages = append(messages, chatCompletionMessage{Role: "system", Content: system})
	for _, m := range history {
		role := m.Role
		if role == "tool" {
			// Completions APIs require tool messages to reference a call id
			// we do not track, so fold tool output into user-visible context.
			role = "user"
		}
		messages = append(messages, chatCompletionMessage{Role: role, Content: m.Content})
	}

	toolDefs := make([]chatCompletionTool, 0, len(tools))
	for _, t := range tools {
		toolDefs = append(toolDefs, chatCompletionTool{
			Type: "function",
			Function: chatCompletionFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  map[string]any{"type": "object"},
			},
		})
	}

	raw, err := json.Marshal(chatCompletionRequest{
		Model:    c.Model,
		Messages: messages,
		Tools:    toolDefs,
	})
	if err != nil {
		return ModelResponse{}, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return ModelResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return ModelResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return ModelResponse{}, fmt.Errorf("model endpoint returned %d: %s", resp.StatusCode, body)
	}

	var out chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ModelResponse{}, fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return ModelResponse{}, fmt.Errorf("model endpoint returned no choices")
	}

	choice := out.Choices[0].Message
	result := ModelResponse{
		Text:       choice.Content,
		TokensUsed: out.Usage.TotalTokens,
	}
	for _, tc := range choice.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			// Malformed argument payloads become an empty argument map; the
			// tool's own decoding rejects anything it cannot use.
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		}
		result.ToolCalls = append(result.ToolCalls, ToolCall{
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return result, nil
}

// UnavailableModelClient replies with a fixed notice when no model endpoint
// is configured. The tool and auth APIs stay fully usable without one.
type UnavailableModelClient struct{}

func (UnavailableModelClient) Chat(ctx context.Context, system string, history []ModelMessage, tools []ToolDefinition) (ModelResponse, error) {
	return ModelResponse{
		Text: "The assistant is not available right now. Please use the self-service tools or try again later.",
	}, nil
}
