package domain

import "time"

// AuditEventType categorises audit events.
type AuditEventType string

const (
	AuditAuthLogin         AuditEventType = "auth.login"
	AuditAuthLoginFailed   AuditEventType = "auth.login_failed"
	AuditAuthRefresh       AuditEventType = "auth.refresh"
	AuditAuthRevoked       AuditEventType = "auth.revoked"
	AuditAuthRejected      AuditEventType = "auth.rejected"
	AuditToolCall          AuditEventType = "tool.call"
	AuditToolDenied        AuditEventType = "tool.denied"
	AuditRateLimitExceeded AuditEventType = "ratelimit.exceeded"
	AuditAgentHandoff      AuditEventType = "agent.handoff"
)

// AuditEvent is a persisted security-relevant event.
type AuditEvent struct {
	ID         string
	Type       AuditEventType
	TenantID   string
	UserID     string
	ToolName   string
	Detail     string
	ClientAddr string
	Success    bool
	CreatedAt  time.Time
}
