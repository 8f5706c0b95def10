package quotations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/bodyshop/internal/platform/db"
	"github.com/odyssey-erp/bodyshop/internal/quoting/items"
	"github.com/odyssey-erp/bodyshop/internal/quoting/totals"
	"github.com/odyssey-erp/bodyshop/internal/shared"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, tenantID, id int64) (*Quotation, error)
	GetForUpdate(ctx context.Context, tenantID, id int64) (*Quotation, error)
	List(ctx context.Context, tenantID int64, req ListQuotationsRequest) ([]Quotation, int, error)
	Create(ctx context.Context, q Quotation) (int64, error)
	LoadItems(ctx context.Context, quotationID int64) ([]items.QuoteItem, error)
	DeleteItems(ctx context.Context, quotationID int64) error
	InsertItems(ctx context.Context, quotationID int64, list []items.QuoteItem) error
	UpdateTotals(ctx context.Context, id int64, t totals.Totals) (int, error)
	InsertVersion(ctx context.Context, v Version) error
	ListVersions(ctx context.Context, quotationID int64) ([]VersionInfo, error)
	GetVersion(ctx context.Context, quotationID int64, number int) (*Version, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status, reason *string, at time.Time) error
	UpdateOptions(ctx context.Context, id int64, opts Options) error
	GenerateNumber(ctx context.Context, tenantID int64, date time.Time) (string, error)
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// saveTxOptions runs quotation writes at ReadCommitted: a save blocked on another save's
// row lock reads the committed row and then overwrites it.
var saveTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTxOptions(ctx, r.pool, saveTxOptions, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const quotationColumns = `id, quote_number, tenant_id, organization_id, job_id, insurer_id, status,
	version_number, quote_type, warranty, options,
	parts_total, labour_total, paint_total, strip_total, frame_total, outwork_total, grand_total,
	rejection_reason, created_by, sent_at, decided_at, created_at, updated_at`

func (r *repository) Get(ctx context.Context, tenantID, id int64) (*Quotation, error) {
	return r.get(ctx, tenantID, id, "")
}

func (r *repository) GetForUpdate(ctx context.Context, tenantID, id int64) (*Quotation, error) {
	return r.get(ctx, tenantID, id, " FOR UPDATE")
}

func (r *repository) get(ctx context.Context, tenantID, id int64, suffix string) (*Quotation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+quotationColumns+`
		FROM quotations WHERE tenant_id = $1 AND id = $2`+suffix, tenantID, id)
	q, err := scanQuotation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("quotation %d: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	return &q, nil
}

func (r *repository) List(ctx context.Context, tenantID int64, req ListQuotationsRequest) ([]Quotation, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []any{tenantID}
	argPos := 2

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.JobID != nil {
		conditions = append(conditions, fmt.Sprintf("job_id = $%d", argPos))
		args = append(args, *req.JobID)
		argPos++
	}
	if req.InsurerID != nil {
		conditions = append(conditions, fmt.Sprintf("insurer_id = $%d", argPos))
		args = append(args, *req.InsurerID)
		argPos++
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM quotations "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM quotations %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, quotationColumns, where, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (quote_number, tenant_id, organization_id, job_id, insurer_id, status,
			version_number, quote_type, warranty, options,
			parts_total, labour_total, paint_total, strip_total, frame_total, outwork_total, grand_total,
			created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id`,
		q.QuoteNumber, q.TenantID, q.OrganizationID, q.JobID, q.InsurerID, q.Status,
		q.VersionNumber, q.QuoteType, q.Warranty, q.Options,
		q.Totals.Parts, q.Totals.Labour, q.Totals.Paint, q.Totals.Strip, q.Totals.Frame, q.Totals.Outwork, q.Totals.GrandTotal,
		q.CreatedBy,
	).Scan(&id)
	return id, err
}

func (r *repository) LoadItems(ctx context.Context, quotationID int64) ([]items.QuoteItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, sequence_number, operation, description, markup_percent, betterment_percent, quantity,
		       part_cost, labour_cost, paint_cost, strip_cost, frame_cost, inhouse_outwork_cost, line_total
		FROM quotation_items
		WHERE quotation_id = $1
		ORDER BY sequence_number`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]items.QuoteItem, 0)
	for rows.Next() {
		var it items.QuoteItem
		if err := rows.Scan(
			&it.ID, &it.SequenceNumber, &it.Operation, &it.Description, &it.MarkupPercent, &it.BettermentPercent,
			&it.Quantity, &it.PartCost, &it.LabourCost, &it.PaintCost, &it.StripCost, &it.FrameCost,
			&it.InhouseOutworkCost, &it.LineTotal,
		); err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (r *repository) DeleteItems(ctx context.Context, quotationID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM quotation_items WHERE quotation_id = $1`, quotationID)
	return err
}

func (r *repository) InsertItems(ctx context.Context, quotationID int64, list []items.QuoteItem) error {
	if len(list) == 0 {
		return nil
	}
	const query = `
		INSERT INTO quotation_items (id, quotation_id, sequence_number, operation, description,
			markup_percent, betterment_percent, quantity,
			part_cost, labour_cost, paint_cost, strip_cost, frame_cost, inhouse_outwork_cost, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	batch := &pgx.Batch{}
	for _, it := range list {
		batch.Queue(query,
			it.ID, quotationID, it.SequenceNumber, it.Operation, it.Description,
			it.MarkupPercent, it.BettermentPercent, it.Quantity,
			it.PartCost, it.LabourCost, it.PaintCost, it.StripCost, it.FrameCost, it.InhouseOutworkCost, it.LineTotal,
		)
	}
	results := r.db.SendBatch(ctx, batch)
	for i := range list {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert item %d: %w", i+1, err)
		}
	}
	return results.Close()
}

// UpdateTotals stores new totals and bumps the version, returning the new version number.
func (r *repository) UpdateTotals(ctx context.Context, id int64, t totals.Totals) (int, error) {
	var version int
	err := r.db.QueryRow(ctx, `
		UPDATE quotations
		SET parts_total = $2, labour_total = $3, paint_total = $4, strip_total = $5, frame_total = $6,
		    outwork_total = $7, grand_total = $8, version_number = version_number + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING version_number`,
		id, t.Parts, t.Labour, t.Paint, t.Strip, t.Frame, t.Outwork, t.GrandTotal,
	).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("quotation %d: %w", id, shared.ErrNotFound)
	}
	return version, err
}

func (r *repository) InsertVersion(ctx context.Context, v Version) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO quotation_versions (quotation_id, version_number, items, totals, saved_by, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		v.QuotationID, v.VersionNumber, v.Items, v.Totals, v.SavedBy, v.SavedAt)
	return err
}

func (r *repository) ListVersions(ctx context.Context, quotationID int64) ([]VersionInfo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT version_number, jsonb_array_length(items), totals, saved_by, saved_at
		FROM quotation_versions
		WHERE quotation_id = $1
		ORDER BY version_number DESC`, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]VersionInfo, 0)
	for rows.Next() {
		var v VersionInfo
		if err := rows.Scan(&v.VersionNumber, &v.ItemCount, &v.Totals, &v.SavedBy, &v.SavedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repository) GetVersion(ctx context.Context, quotationID int64, number int) (*Version, error) {
	v := Version{QuotationID: quotationID}
	err := r.db.QueryRow(ctx, `
		SELECT version_number, items, totals, saved_by, saved_at
		FROM quotation_versions
		WHERE quotation_id = $1 AND version_number = $2`, quotationID, number,
	).Scan(&v.VersionNumber, &v.Items, &v.Totals, &v.SavedBy, &v.SavedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("quotation %d version %d: %w", quotationID, number, shared.ErrNotFound)
		}
		return nil, err
	}
	return &v, nil
}

// UpdateStatus moves a quotation from one status to another. It fails with ErrInvalidStatus
// when the stored status is no longer from.
func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to Status, reason *string, at time.Time) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if to == StatusSent {
		tag, err = r.db.Exec(ctx, `UPDATE quotations SET status = $3, sent_at = $4, updated_at = NOW()
			WHERE id = $1 AND status = $2`, id, from, to, at)
	} else {
		tag, err = r.db.Exec(ctx, `UPDATE quotations SET status = $3, rejection_reason = $4, decided_at = $5, updated_at = NOW()
			WHERE id = $1 AND status = $2`, id, from, to, reason, at)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quotation %d is no longer %s: %w", id, from, shared.ErrInvalidStatus)
	}
	return nil
}

func (r *repository) UpdateOptions(ctx context.Context, id int64, opts Options) error {
	tag, err := r.db.Exec(ctx, `UPDATE quotations SET options = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, opts, StatusDraft)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quotation %d is not a draft: %w", id, shared.ErrInvalidStatus)
	}
	return nil
}

// GenerateNumber allocates QT-{YY}{MM}-{SEQ} from the tenant's monthly sequence.
func (r *repository) GenerateNumber(ctx context.Context, tenantID int64, date time.Time) (string, error) {
	var seq int64
	period := date.Format("200601")
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (tenant_id, doc_type, period, seq)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (tenant_id, doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, tenantID, "QT", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return FormatNumber(date, seq), nil
}

// FormatNumber renders a quote number for a month and sequence.
func FormatNumber(date time.Time, seq int64) string {
	return fmt.Sprintf("QT-%s-%04d", date.Format("0601"), seq)
}

func scanQuotation(row pgx.Row) (Quotation, error) {
	var q Quotation
	err := row.Scan(
		&q.ID, &q.QuoteNumber, &q.TenantID, &q.OrganizationID, &q.JobID, &q.InsurerID, &q.Status,
		&q.VersionNumber, &q.QuoteType, &q.Warranty, &q.Options,
		&q.Totals.Parts, &q.Totals.Labour, &q.Totals.Paint, &q.Totals.Strip, &q.Totals.Frame,
		&q.Totals.Outwork, &q.Totals.GrandTotal,
		&q.RejectionReason, &q.CreatedBy, &q.SentAt, &q.DecidedAt, &q.CreatedAt, &q.UpdatedAt,
	)
	return q, err
}
