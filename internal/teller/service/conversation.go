package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/agent"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store"
	"github.com/aussiebroadwan/tellerdesk/pkg/idx"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
)

var ErrRoutingStorage = errors.New("routing_storage_error")

// TurnInput is one user turn against a thread. Identity fields come from the
// verified token at the HTTP layer.
type TurnInput struct {
	TenantID    string
	UserID      string
	ThreadID    string
	BearerToken string
	ClientAddr  string
	Text        string
}

// TurnOutput is the router's reply for one turn.
type TurnOutput struct {
	ActiveHandler string           `json:"active_handler"`
	Messages      []domain.Message `json:"messages"`
}

// ConversationService is the conversation router. It reads the persisted
// active handler, dispatches the turn, watches for a transfer directive and
// persists the new routing state before the turn completes.
type ConversationService struct {
	Store    store.Store
	Handlers *agent.Registry
	Audit    *AuditService
}

// Turn processes one user message on a thread.
func (s *ConversationService) Turn(ctx context.Context, in TurnInput) (*TurnOutput, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	// 1. Load routing state. A missing session is a fresh thread; a store
	// read failure falls back to the sentinel so one bad read cannot
	// wedge a thread, at the cost of restarting it at the entry handler.
	created := false
	sess, err := s.Store.Sessions().GetSession(ctx, in.TenantID, in.UserID, in.ThreadID)
	if errors.Is(err, store.ErrNotFound) {
		created = true
		sess = domain.Session{
			TenantID:      in.TenantID,
			UserID:        in.UserID,
			ThreadID:      in.ThreadID,
			ActiveHandler: domain.HandlerUnset,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	} else if err != nil {
		l.Error("session read failed, routing to entry handler",
			slog.Any("error", err),
			slog.String("thread_id", in.ThreadID),
		)
		created = true
		sess = domain.Session{
			TenantID:      in.TenantID,
			UserID:        in.UserID,
			ThreadID:      in.ThreadID,
			ActiveHandler: domain.HandlerUnset,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	// 2. Deterministic dispatch off the persisted handler
	handler := s.Handlers.Resolve(sess.ActiveHandler)

	userMsg := domain.Message{
		ID:        idx.New().String(),
		Role:      domain.MessageRoleUser,
		Sender:    "user",
		Text:      in.Text,
		CreatedAt: now,
	}

	turn := agent.TurnContext{
		TenantID:    in.TenantID,
		UserID:      in.UserID,
		ThreadID:    in.ThreadID,
		BearerToken: in.BearerToken,
		ClientAddr:  in.ClientAddr,
		History:     sess.Messages,
		UserText:    in.Text,
	}

	// 3. Run the handler. On failure the persisted routing state is left
	// untouched and the turn fails.
	result, err := handler.Handle(ctx, turn)
	if err != nil {
		return nil, fmt.Errorf("handler %s: %w", handler.Name(), err)
	}

	// 4. Detect a transfer directive among the produced tool messages
	next := sess.ActiveHandler
	for _, msg := range result.Messages {
		target, ok := agent.TransferTarget(msg)
		if !ok {
			continue
		}
		if !s.Handlers.Known(target) {
			l.Warn("transfer directive to unknown handler ignored",
				slog.String("target", target),
			)
			continue
		}
		next = target
	}

	// 5. Persist routing state, then messages, in one transaction. The
	// active handler must be settled before the turn is complete.
	messages := append([]domain.Message{userMsg}, result.Messages...)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if created {
			if err := tx.Sessions().CreateSession(ctx, sess); err != nil {
				return err
			}
		}
		if next != sess.ActiveHandler {
			if err := tx.Sessions().SetActiveHandler(ctx, in.TenantID, in.UserID, in.ThreadID, next); err != nil {
				return err
			}
		}
		return tx.Sessions().AppendMessages(ctx, in.TenantID, in.UserID, in.ThreadID, messages)
	})
	if err != nil {
		l.Error("failed to persist turn", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrRoutingStorage, err)
	}

	if next != sess.ActiveHandler {
		s.Audit.Record(ctx, domain.AuditEvent{
			Type:       domain.AuditAgentHandoff,
			TenantID:   in.TenantID,
			UserID:     in.UserID,
			Detail:     fmt.Sprintf("%s -> %s", handler.Name(), next),
			ClientAddr: in.ClientAddr,
			Success:    true,
		})
	}

	return &TurnOutput{
		ActiveHandler: next,
		Messages:      result.Messages,
	}, nil
}

// GatewayAdapter lets handlers call tools through the gateway while the
// router keeps control of the identity fields.
type GatewayAdapter struct {
	Gateway *GatewayService
}

func (a *GatewayAdapter) Call(ctx context.Context, turn agent.TurnContext, toolName string, args map[string]any) (domain.ToolResult, error) {
	return a.Gateway.Invoke(ctx, InvokeRequest{
		ToolName:         toolName,
		Arguments:        args,
		BearerToken:      turn.BearerToken,
		DeclaredThreadID: turn.ThreadID,
		ClientAddr:       turn.ClientAddr,
	})
}
