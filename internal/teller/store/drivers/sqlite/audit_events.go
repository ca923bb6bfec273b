package sqlite

import (
	"context"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
)

type auditEventsRepo struct {
	db dbtx
}

func (r *auditEventsRepo) CreateAuditEvent(ctx context.Context, e domain.AuditEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, type, tenant_id, user_id, tool_name, detail, client_addr, success, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Type), e.TenantID, e.UserID, e.ToolName, e.Detail, e.ClientAddr, e.Success, e.CreatedAt,
	)
	return err
}

func (r *auditEventsRepo) ListRecentAuditEvents(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, tenant_id, user_id, tool_name, detail, client_addr, success, created_at
		 FROM audit_events
		 ORDER BY created_at DESC
		 LIMIT ?`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEvent
	for rows.Next() {
		var (
			e         domain.AuditEvent
			eventType string
		)
		if err := rows.Scan(&e.ID, &eventType, &e.TenantID, &e.UserID, &e.ToolName, &e.Detail, &e.ClientAddr, &e.Success, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = domain.AuditEventType(eventType)
		out = append(out, e)
	}
	return out, rows.Err()
}
