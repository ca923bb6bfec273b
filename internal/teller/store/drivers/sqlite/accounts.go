package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, tenant_id, user_id, number, name, balance_cents, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID, &a.TenantID, &a.UserID, &a.Number, &a.Name,
		&a.BalanceCents, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, tenant_id, user_id, number, name, balance_cents, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.TenantID, a.UserID, a.Number, a.Name, a.BalanceCents, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByNumber(ctx context.Context, tenantID, number string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE tenant_id = ? AND number = ?`,
		tenantID, number)
	return scanAccount(row)
}

func (r *accountsRepo) ListAccountsByUser(ctx context.Context, tenantID, userID string) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE tenant_id = ? AND user_id = ?
		 ORDER BY created_at ASC`,
		tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) AdjustBalance(ctx context.Context, accountID string, deltaCents int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ?, updated_at = ?
		 WHERE id = ?`,
		deltaCents, time.Now().UTC(), accountID)
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

type transactionsRepo struct {
	db dbtx
}

func (r *transactionsRepo) CreateTransaction(ctx context.Context, t domain.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, account_id, type, amount_cents, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.AccountID, t.Type, t.AmountCents, t.Description, t.CreatedAt,
	)
	return err
}

func (r *transactionsRepo) ListTransactions(ctx context.Context, accountID string, from, to time.Time) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, type, amount_cents, description, created_at
		 FROM transactions
		 WHERE account_id = ? AND created_at >= ? AND created_at <= ?
		 ORDER BY created_at DESC`,
		accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.AmountCents, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
