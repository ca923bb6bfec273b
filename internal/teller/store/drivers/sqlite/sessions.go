package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) GetSession(ctx context.Context, tenantID, userID, threadID string) (domain.Session, error) {
	var s domain.Session
	err := r.db.QueryRowContext(ctx,
		`SELECT tenant_id, user_id, thread_id, active_handler, created_at, updated_at
		 FROM sessions WHERE tenant_id = ? AND user_id = ? AND thread_id = ?`,
		tenantID, userID, threadID).
		Scan(&s.TenantID, &s.UserID, &s.ThreadID, &s.ActiveHandler, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}

	// Replay in insertion order. Timestamps come from callers and are not
	// trusted to be monotonic, so the append order is the rowid order.
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, role, sender, text, tokens_used, created_at
		 FROM session_messages
		 WHERE tenant_id = ? AND user_id = ? AND thread_id = ?
		 ORDER BY rowid ASC`,
		tenantID, userID, threadID)
	if err != nil {
		return domain.Session{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.Role, &m.Sender, &m.Text, &m.TokensUsed, &m.CreatedAt); err != nil {
			return domain.Session{}, err
		}
		s.Messages = append(s.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return domain.Session{}, err
	}

	return s, nil
}

// CreateSession records a new thread. Creating a thread that already exists
// is a no-op so a turn that lost a read race can still commit.
func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (tenant_id, user_id, thread_id, active_handler, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, user_id, thread_id) DO NOTHING`,
		s.TenantID, s.UserID, s.ThreadID, s.ActiveHandler, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *sessionsRepo) SetActiveHandler(ctx context.Context, tenantID, userID, threadID, handler string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET active_handler = ?, updated_at = ?
		 WHERE tenant_id = ? AND user_id = ? AND thread_id = ?`,
		handler, time.Now().UTC(), tenantID, userID, threadID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *sessionsRepo) AppendMessages(ctx context.Context, tenantID, userID, threadID string, msgs []domain.Message) error {
	for _, m := range msgs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO session_messages (id, tenant_id, user_id, thread_id, role, sender, text, tokens_used, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, tenantID, userID, threadID, m.Role, m.Sender, m.Text, m.TokensUsed, m.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
