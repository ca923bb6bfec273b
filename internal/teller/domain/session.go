package domain

import "time"

// HandlerUnset is the sentinel active handler for a thread no specialist has
// claimed yet. It routes identically to the entry handler.
const HandlerUnset = "unset"

// Session is the per-thread conversation record. ActiveHandler is the single
// source of truth for routing and is updated exactly once per turn, at turn
// end, by the conversation router.
type Session struct {
	TenantID      string
	UserID        string
	ThreadID      string
	ActiveHandler string
	Messages      []Message
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Message roles as stored on session messages.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleTool      = "tool"
)

// Message is a single conversation entry. Immutable once stored; the message
// list is append-only.
type Message struct {
	ID         string
	Role       string // user, assistant or tool
	Sender     string // handler name or "user"
	Text       string
	TokensUsed int
	CreatedAt  time.Time
}
