package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/bodyshop/internal/platform/db"
	"github.com/odyssey-erp/bodyshop/internal/shared"
)

type Repository interface {
	ListPartDescriptions(ctx context.Context, tenantID int64) ([]PartDescription, error)
	CreatePartDescription(ctx context.Context, p PartDescription) (PartDescription, error)
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) ListPartDescriptions(ctx context.Context, tenantID int64) ([]PartDescription, error) {
	rows, err := r.db.Query(ctx, `SELECT id, tenant_id, description, operation, sort_order, created_at
		FROM part_descriptions
		WHERE tenant_id = $1
		ORDER BY sort_order, description`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PartDescription, 0)
	for rows.Next() {
		var p PartDescription
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Description, &p.Operation, &p.SortOrder, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) CreatePartDescription(ctx context.Context, p PartDescription) (PartDescription, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO part_descriptions (tenant_id, description, operation, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		p.TenantID, p.Description, p.Operation, p.SortOrder,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return PartDescription{}, fmt.Errorf("part description %q already exists: %w", p.Description, shared.ErrValidation)
		}
		return PartDescription{}, err
	}
	return p, nil
}
