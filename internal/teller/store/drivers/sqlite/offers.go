package sqlite

import (
	"context"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
)

type offersRepo struct {
	db dbtx
}

func (r *offersRepo) CreateOffer(ctx context.Context, o domain.Offer) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO offers (id, tenant_id, name, category, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.TenantID, o.Name, o.Category, o.Description, o.CreatedAt,
	)
	return err
}

func (r *offersRepo) SearchOffers(ctx context.Context, tenantID, keyword string) ([]domain.Offer, error) {
	pattern := "%" + keyword + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, name, category, description, created_at
		 FROM offers
		 WHERE tenant_id = ?
		   AND (name LIKE ? OR category LIKE ? OR description LIKE ?)
		 ORDER BY name ASC`,
		tenantID, pattern, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Offer
	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(&o.ID, &o.TenantID, &o.Name, &o.Category, &o.Description, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
