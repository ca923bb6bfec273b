package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
)

type revokedTokensRepo struct {
	db dbtx
}

func (r *revokedTokensRepo) RevokeJTI(ctx context.Context, t domain.RevokedToken) error {
	// ON CONFLICT keeps revocation idempotent; re-revoking an already
	// revoked token is not an error.
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at, revoked_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (jti) DO NOTHING`,
		t.JTI, t.ExpiresAt, t.RevokedAt,
	)
	return err
}

func (r *revokedTokensRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *revokedTokensRepo) DeleteExpiredRevocations(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
