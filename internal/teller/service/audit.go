package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store"
	"github.com/aussiebroadwan/tellerdesk/pkg/idx"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
)

// AuditService records security-relevant events both as structured log lines
// and as persisted rows. Recording never fails the caller; a broken audit
// path is logged and swallowed.
type AuditService struct {
	Store store.Store
}

// Record persists and logs one audit event.
func (s *AuditService) Record(ctx context.Context, e domain.AuditEvent) {
	l := slogx.FromContext(ctx)

	if e.ID == "" {
		e.ID = idx.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	l.Info("audit event",
		slog.String("event", string(e.Type)),
		slog.String("tenant_id", e.TenantID),
		slog.String("user_id", e.UserID),
		slog.String("tool", e.ToolName),
		slog.String("detail", e.Detail),
		slog.String("client_addr", e.ClientAddr),
		slog.Bool("success", e.Success),
	)

	if s.Store == nil {
		return
	}
	if err := s.Store.AuditEvents().CreateAuditEvent(ctx, e); err != nil {
		l.Error("failed to persist audit event",
			slog.Any("error", err),
			slog.String("event", string(e.Type)),
		)
	}
}

const (
	defaultAuditListLimit = 100
	maxAuditListLimit     = 1000
)

// ListRecent returns the newest audit events, newest first. The limit is
// clamped so an operator cannot page the whole table in one call.
func (s *AuditService) ListRecent(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	if limit <= 0 {
		limit = defaultAuditListLimit
	}
	if limit > maxAuditListLimit {
		limit = maxAuditListLimit
	}
	return s.Store.AuditEvents().ListRecentAuditEvents(ctx, limit)
}
