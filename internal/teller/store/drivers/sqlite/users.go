package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, tenant_id, username, password_hash, role, mfa_enabled, mfa_secret, created_at, updated_at`

func (r *usersRepo) scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u          domain.User
		role       string
		mfaEnabled sql.NullTime
		mfaSecret  sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.TenantID, &u.Username, &u.PasswordHash, &role,
		&mfaEnabled, &mfaSecret, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	u.MFAEnabled = mapNullTimePtr(mfaEnabled)
	u.MFASecret = mapNullStringPtr(mfaSecret)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, tenantID, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = ? AND username = ?`,
		tenantID, username)
	return r.scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, tenant_id, username, password_hash, role, mfa_enabled, mfa_secret, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.TenantID, u.Username, u.PasswordHash, string(u.Role),
		mapOptionalTime(u.MFAEnabled), mapOptionalString(u.MFASecret),
		u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (r *usersRepo) UpdateUserRole(ctx context.Context, userID string, role domain.Role) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		string(role), time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID, secret string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET mfa_secret = ?, updated_at = ? WHERE id = ?`,
		secret, time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET mfa_enabled = ?, updated_at = ? WHERE id = ?`,
		now, now, userID)
	return err
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET mfa_enabled = NULL, mfa_secret = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID)
	return err
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
