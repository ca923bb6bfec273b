package sqlite

import (
	"context"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
)

type serviceRequestsRepo struct {
	db dbtx
}

func (r *serviceRequestsRepo) CreateServiceRequest(ctx context.Context, sr domain.ServiceRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO service_requests (id, tenant_id, user_id, kind, details, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sr.ID, sr.TenantID, sr.UserID, sr.Kind, sr.Details, sr.Status, sr.CreatedAt, sr.UpdatedAt,
	)
	return err
}

func (r *serviceRequestsRepo) ListServiceRequestsByUser(ctx context.Context, tenantID, userID string) ([]domain.ServiceRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, user_id, kind, details, status, created_at, updated_at
		 FROM service_requests
		 WHERE tenant_id = ? AND user_id = ?
		 ORDER BY created_at DESC`,
		tenantID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ServiceRequest
	for rows.Next() {
		var sr domain.ServiceRequest
		if err := rows.Scan(&sr.ID, &sr.TenantID, &sr.UserID, &sr.Kind, &sr.Details, &sr.Status, &sr.CreatedAt, &sr.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

type branchesRepo struct {
	db dbtx
}

func (r *branchesRepo) ListBranches(ctx context.Context, city string) ([]domain.Branch, error) {
	query := `SELECT id, name, address, city FROM branches`
	args := []any{}
	if city != "" {
		query += ` WHERE city = ?`
		args = append(args, city)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Branch
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.City); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
