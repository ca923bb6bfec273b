package agent

import (
	"context"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
)

// TurnContext carries the verified identity and transcript for one turn. The
// ids come from the router, sourced from the caller's token, never from model
// output.
type TurnContext struct {
	TenantID    string
	UserID      string
	ThreadID    string
	BearerToken string
	ClientAddr  string

	History  []domain.Message
	UserText string
}

// HandleResult is everything a handler produced during its part of the turn.
// Tool messages carrying a transfer directive are how a handler asks the
// router to move the conversation.
type HandleResult struct {
	Messages []domain.Message
}

// Handler processes one conversation turn for its specialty.
type Handler interface {
	Name() string
	Handle(ctx context.Context, turn TurnContext) (HandleResult, error)
}

// Gateway is the narrow view of the tool invocation gateway a handler needs.
type Gateway interface {
	Call(ctx context.Context, turn TurnContext, toolName string, args map[string]any) (domain.ToolResult, error)
}

// Registry resolves handler names to handlers. Unknown names and the unset
// sentinel resolve to the entry handler.
type Registry struct {
	entry    Handler
	handlers map[string]Handler
}

func NewRegistry(entry Handler, specialists ...Handler) *Registry {
	r := &Registry{
		entry:    entry,
		handlers: map[string]Handler{entry.Name(): entry},
	}
	for _, h := range specialists {
		r.handlers[h.Name()] = h
	}
	return r
}

// Resolve returns the handler for name, falling back to the entry handler
// for the sentinel or anything unrecognised.
func (r *Registry) Resolve(name string) Handler {
	if h, ok := r.handlers[name]; ok {
		return h
	}
	return r.entry
}

// Known reports whether name is a registered handler.
func (r *Registry) Known(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// EntryName returns the entry handler's name.
func (r *Registry) EntryName() string {
	return r.entry.Name()
}
