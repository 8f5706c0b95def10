package rates

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/bodyshop/internal/platform/db"
	"github.com/odyssey-erp/bodyshop/internal/shared"
)

type Repository interface {
	Store
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, tenantID, id int64) (*Schedule, error)
	Create(ctx context.Context, s Schedule) (int64, error)
	LockInsurer(ctx context.Context, tenantID, insurerID int64) error
	ListInsurers(ctx context.Context) ([]InsurerRef, error)
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const scheduleColumns = `id, tenant_id, insurer_id, name, effective_from, effective_to,
	labour, paint, parts, towing, outwork, sundries, created_at, updated_at`

func (r *repository) ListSchedules(ctx context.Context, tenantID, insurerID int64) ([]Schedule, error) {
	rows, err := r.db.Query(ctx, `SELECT `+scheduleColumns+`
		FROM sla_schedules
		WHERE tenant_id = $1 AND insurer_id = $2
		ORDER BY effective_from`, tenantID, insurerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *repository) Get(ctx context.Context, tenantID, id int64) (*Schedule, error) {
	row := r.db.QueryRow(ctx, `SELECT `+scheduleColumns+`
		FROM sla_schedules WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	s, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sla schedule %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) Create(ctx context.Context, s Schedule) (int64, error) {
	outwork := s.Outwork
	if outwork == nil {
		outwork = []OutworkRule{}
	}
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sla_schedules (tenant_id, insurer_id, name, effective_from, effective_to,
			labour, paint, parts, towing, outwork, sundries)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		s.TenantID, s.InsurerID, s.Name, s.EffectiveFrom, s.EffectiveTo,
		s.Labour, s.Paint, s.Parts, s.Towing, outwork, s.Sundries,
	).Scan(&id)
	if err != nil {
		if db.IsExclusionViolation(err) {
			return 0, fmt.Errorf("insurer %d: overlapping effective range: %w", s.InsurerID, shared.ErrScheduleConflict)
		}
		return 0, err
	}
	return id, nil
}

// LockInsurer serialises schedule writes for one insurer until the transaction ends.
func (r *repository) LockInsurer(ctx context.Context, tenantID, insurerID int64) error {
	_, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended('sla_schedules:' || $1::text || ':' || $2::text, 0))`,
		tenantID, insurerID)
	return err
}

func (r *repository) ListInsurers(ctx context.Context) ([]InsurerRef, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT tenant_id, insurer_id FROM sla_schedules ORDER BY tenant_id, insurer_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []InsurerRef
	for rows.Next() {
		var ref InsurerRef
		if err := rows.Scan(&ref.TenantID, &ref.InsurerID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func scanSchedule(row pgx.Row) (Schedule, error) {
	var s Schedule
	err := row.Scan(
		&s.ID, &s.TenantID, &s.InsurerID, &s.Name, &s.EffectiveFrom, &s.EffectiveTo,
		&s.Labour, &s.Paint, &s.Parts, &s.Towing, &s.Outwork, &s.Sundries,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if s.Outwork == nil {
		s.Outwork = []OutworkRule{}
	}
	return s, err
}
