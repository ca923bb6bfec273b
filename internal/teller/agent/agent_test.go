package agent_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/agent"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/stretchr/testify/require"
)

// scriptedModel replays canned responses in order.
type scriptedModel struct {
	responses []agent.ModelResponse
	calls     int
}

func (m *scriptedModel) Chat(ctx context.Context, system string, history []agent.ModelMessage, tools []agent.ToolDefinition) (agent.ModelResponse, error) {
	if m.calls >= len(m.responses) {
		return agent.ModelResponse{Text: "done"}, nil
	}
	resp := m.responses[m.calls]
	m.calls++
	return resp, nil
}

// recordingGateway returns canned tool results and records every call.
type recordingGateway struct {
	results map[string]domain.ToolResult
	calls   []string
}

func (g *recordingGateway) Call(ctx context.Context, turn agent.TurnContext, toolName string, args map[string]any) (domain.ToolResult, error) {
	g.calls = append(g.calls, toolName)
	if res, ok := g.results[toolName]; ok {
		return res, nil
	}
	return domain.ToolResult{Success: true, Result: map[string]string{"ok": "true"}}, nil
}

func TestHandlePlainAnswer(t *testing.T) {
	model := &scriptedModel{responses: []agent.ModelResponse{
		{Text: "Your balance enquiry is best handled by me.", TokensUsed: 12},
	}}
	gw := &recordingGateway{}

	h := agent.NewTransactions(model, gw)
	res, err := h.Handle(context.Background(), agent.TurnContext{UserText: "hi"})
	require.NoError(t, err)

	require.Len(t, res.Messages, 1)
	require.Equal(t, domain.MessageRoleAssistant, res.Messages[0].Role)
	require.Equal(t, agent.HandlerTransactions, res.Messages[0].Sender)
	require.Equal(t, 12, res.Messages[0].TokensUsed)
	require.Empty(t, gw.calls)
}

func TestHandleToolLoop(t *testing.T) {
	model := &scriptedModel{responses: []agent.ModelResponse{
		{ToolCalls: []agent.ToolCall{{Name: "bank_balance", Arguments: map[string]any{"account_number": "Acc1001"}}}},
		{Text: "Your balance is 123.45."},
	}}
	gw := &recordingGateway{results: map[string]domain.ToolResult{
		"bank_balance": {Success: true, Result: map[string]string{"balance": "123.45"}},
	}}

	h := agent.NewTransactions(model, gw)
	res, err := h.Handle(context.Background(), agent.TurnContext{UserText: "what's my balance?"})
	require.NoError(t, err)

	require.Equal(t, []string{"bank_balance"}, gw.calls)
	require.Len(t, res.Messages, 2)
	require.Equal(t, domain.MessageRoleTool, res.Messages[0].Role)
	require.JSONEq(t, `{"balance":"123.45"}`, res.Messages[0].Text)
	require.Equal(t, "Your balance is 123.45.", res.Messages[1].Text)
}

func TestHandleTransferStopsLoop(t *testing.T) {
	model := &scriptedModel{responses: []agent.ModelResponse{
		{
			Text:      "Let me get you to the right team.",
			ToolCalls: []agent.ToolCall{{Name: "transfer_to_sales"}},
		},
		// Must never be reached; a transfer ends the handler's turn
		{Text: "should not appear"},
	}}
	gw := &recordingGateway{results: map[string]domain.ToolResult{
		"transfer_to_sales": {Success: true, Result: map[string]string{"goto": "sales"}},
	}}

	h := agent.NewCoordinator(model, gw)
	res, err := h.Handle(context.Background(), agent.TurnContext{UserText: "I want a loan"})
	require.NoError(t, err)
	require.Equal(t, 1, model.calls)

	var target string
	for _, msg := range res.Messages {
		if goto_, ok := agent.TransferTarget(msg); ok {
			target = goto_
		}
	}
	require.Equal(t, "sales", target)
}

func TestHandleGatewayRejectionBecomesToolMessage(t *testing.T) {
	model := &scriptedModel{responses: []agent.ModelResponse{
		{ToolCalls: []agent.ToolCall{{Name: "bank_transfer", Arguments: map[string]any{"amount": "bad"}}}},
		{Text: "I could not complete that transfer."},
	}}
	gw := &failingGateway{}

	h := agent.NewTransactions(model, gw)
	res, err := h.Handle(context.Background(), agent.TurnContext{UserText: "send money"})
	require.NoError(t, err)

	require.Len(t, res.Messages, 2)
	require.Equal(t, domain.MessageRoleTool, res.Messages[0].Role)
	require.Contains(t, res.Messages[0].Text, "error")
}

type failingGateway struct{}

func (g *failingGateway) Call(ctx context.Context, turn agent.TurnContext, toolName string, args map[string]any) (domain.ToolResult, error) {
	return domain.ToolResult{}, context.DeadlineExceeded
}

func TestTransferTarget(t *testing.T) {
	t.Run("tool message with goto", func(t *testing.T) {
		target, ok := agent.TransferTarget(domain.Message{
			Role: domain.MessageRoleTool,
			Text: `{"goto":"transactions"}`,
		})
		require.True(t, ok)
		require.Equal(t, "transactions", target)
	})

	t.Run("ordinary tool result", func(t *testing.T) {
		_, ok := agent.TransferTarget(domain.Message{
			Role: domain.MessageRoleTool,
			Text: `{"balance":"10.00"}`,
		})
		require.False(t, ok)
	})

	t.Run("assistant text never transfers", func(t *testing.T) {
		_, ok := agent.TransferTarget(domain.Message{
			Role: domain.MessageRoleAssistant,
			Text: `{"goto":"sales"}`,
		})
		require.False(t, ok)
	})
}

func TestRegistryResolution(t *testing.T) {
	model := &scriptedModel{}
	reg := agent.NewStandardRegistry(model, &recordingGateway{})

	require.Equal(t, agent.HandlerCoordinator, reg.EntryName())
	require.Equal(t, agent.HandlerSales, reg.Resolve("sales").Name())
	require.Equal(t, agent.HandlerCoordinator, reg.Resolve(domain.HandlerUnset).Name())
	require.Equal(t, agent.HandlerCoordinator, reg.Resolve("nonsense").Name())
	require.True(t, reg.Known("transactions"))
	require.False(t, reg.Known("unset"))
}
