package quotations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/odyssey-erp/bodyshop/internal/quoting/items"
	"github.com/odyssey-erp/bodyshop/internal/quoting/rates"
	quotingShared "github.com/odyssey-erp/bodyshop/internal/quoting/shared"
	"github.com/odyssey-erp/bodyshop/internal/quoting/totals"
	"github.com/odyssey-erp/bodyshop/internal/shared"
)

const idempotencyModule = "quotations.save"

// ScheduleResolver returns the SLA schedule in force for an insurer.
type ScheduleResolver interface {
	Resolve(ctx context.Context, pc shared.PricingContext, insurerID int64) (*rates.Schedule, error)
}

// Observer receives save and transition outcomes.
type Observer interface {
	ObserveSave(outcome string)
	ObserveTransition(trigger, outcome string)
}

// ServiceConfig groups optional collaborators. Nil fields are skipped.
type ServiceConfig struct {
	Audit       shared.AuditRecorder
	Idempotency shared.IdempotencyGuard
	Publisher   Publisher
	Observer    Observer
	Formatter   *quotingShared.Formatter
	Logger      *slog.Logger
	Clock       func() time.Time
}

type Service struct {
	repo        Repository
	resolver    ScheduleResolver
	audit       shared.AuditRecorder
	idempotency shared.IdempotencyGuard
	publisher   Publisher
	observer    Observer
	formatter   *quotingShared.Formatter
	logger      *slog.Logger
	clock       func() time.Time
}

func NewService(repo Repository, resolver ScheduleResolver, cfg ServiceConfig) *Service {
	s := &Service{
		repo:        repo,
		resolver:    resolver,
		audit:       cfg.Audit,
		idempotency: cfg.Idempotency,
		publisher:   cfg.Publisher,
		observer:    cfg.Observer,
		formatter:   cfg.Formatter,
		logger:      cfg.Logger,
		clock:       cfg.Clock,
	}
	if s.formatter == nil {
		s.formatter = quotingShared.NewFormatter("R", "en")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.clock == nil {
		s.clock = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Create opens a draft at version 0 with a freshly allocated quote number.
func (s *Service) Create(ctx context.Context, pc shared.PricingContext, req CreateQuotationRequest, createdBy int64) (*Quotation, error) {
	if err := quotingShared.ValidateStruct(req); err != nil {
		return nil, err
	}
	list := ItemsFromInput(req.Items)
	if err := items.ValidateAll(list); err != nil {
		return nil, err
	}

	q := Quotation{
		TenantID:       pc.TenantID,
		OrganizationID: pc.OrganizationID,
		JobID:          req.JobID,
		InsurerID:      req.InsurerID,
		Status:         StatusDraft,
		QuoteType:      req.QuoteType,
		Warranty:       req.Warranty,
		Options:        req.Options,
		Items:          list,
		Totals:         totals.Compute(list),
		CreatedBy:      createdBy,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.GenerateNumber(ctx, pc.TenantID, pc.Date())
		if err != nil {
			return fmt.Errorf("generate quote number: %w", err)
		}
		q.QuoteNumber = number
		id, err := repo.Create(ctx, q)
		if err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		q.ID = id
		if err := repo.InsertItems(ctx, id, list); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrPersistence, err)
	}

	s.record(ctx, pc, createdBy, "quotation.create", q.ID, map[string]any{"quote_number": q.QuoteNumber, "job_id": q.JobID})
	return s.Get(ctx, pc, q.ID)
}

// Get returns a quotation with its persisted items.
func (s *Service) Get(ctx context.Context, pc shared.PricingContext, id int64) (*Quotation, error) {
	q, err := s.repo.Get(ctx, pc.TenantID, id)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.LoadItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	q.Items = list
	return q, nil
}

func (s *Service) List(ctx context.Context, pc shared.PricingContext, req ListQuotationsRequest) ([]Quotation, shared.Pagination, error) {
	if req.Limit == 0 {
		req.Limit = 20
	}
	if err := quotingShared.ValidateStruct(req); err != nil {
		return nil, shared.Pagination{}, err
	}
	out, total, err := s.repo.List(ctx, pc.TenantID, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	page := req.Offset/req.Limit + 1
	return out, shared.NewPagination(page, req.Limit, total), nil
}

// LoadItems returns the persisted items ordered by sequence number.
func (s *Service) LoadItems(ctx context.Context, pc shared.PricingContext, id int64) ([]items.QuoteItem, error) {
	if _, err := s.repo.Get(ctx, pc.TenantID, id); err != nil {
		return nil, err
	}
	return s.repo.LoadItems(ctx, id)
}

// Edit opens an editing session over the persisted quotation.
func (s *Service) Edit(ctx context.Context, pc shared.PricingContext, id int64) (*Editor, error) {
	q, err := s.Get(ctx, pc, id)
	if err != nil {
		return nil, err
	}
	return NewEditor(*q), nil
}

// ApplyEdits runs ops through an Editor and saves the result. The first failing op aborts
// the whole batch and nothing is saved.
func (s *Service) ApplyEdits(ctx context.Context, pc shared.PricingContext, id int64, req EditRequest, actorID int64) (*Quotation, error) {
	if err := quotingShared.ValidateStruct(req); err != nil {
		return nil, err
	}
	editor, err := s.Edit(ctx, pc, id)
	if err != nil {
		return nil, err
	}
	for i, op := range req.Ops {
		if err := applyOp(editor, op); err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i, op.Kind, err)
		}
	}
	return s.Save(ctx, pc, id, editor.Items(), actorID)
}

func applyOp(e *Editor, op EditOp) error {
	switch op.Kind {
	case EditAdd, EditUpdate:
		if op.Item == nil {
			return shared.NewValidationError("item", "is required")
		}
		if op.Kind == EditAdd {
			return e.Add(op.After, op.Item.Item())
		}
		return e.Update(op.Index, op.Item.Item())
	case EditDelete:
		return e.Delete(op.Index)
	case EditDuplicate:
		return e.Duplicate(op.Index)
	case EditQuickAdd:
		if op.Quick == nil {
			return shared.NewValidationError("quick", "is required")
		}
		return e.QuickAdd(*op.Quick)
	}
	return shared.NewValidationError("kind", fmt.Sprintf("unknown edit %q", op.Kind))
}

// Save replaces the persisted items with list and bumps the version in one transaction.
// On failure the stored quotation is unchanged and the error wraps ErrPersistence; list is
// never modified. Saving zero items is valid.
func (s *Service) Save(ctx context.Context, pc shared.PricingContext, id int64, list []items.QuoteItem, savedBy int64) (*Quotation, error) {
	if err := items.ValidateAll(list); err != nil {
		s.observeSave("invalid")
		return nil, err
	}
	staged := items.Renumber(items.Clone(list))
	t := totals.Compute(staged)
	savedAt := s.clock()

	var saved Quotation
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.GetForUpdate(ctx, pc.TenantID, id)
		if err != nil {
			return err
		}
		if !q.Editable() {
			return fmt.Errorf("quotation %s is %s: %w", q.QuoteNumber, q.Status, shared.ErrInvalidStatus)
		}
		if err := repo.DeleteItems(ctx, id); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := repo.InsertItems(ctx, id, staged); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
		version, err := repo.UpdateTotals(ctx, id, t)
		if err != nil {
			return fmt.Errorf("update totals: %w", err)
		}
		if err := repo.InsertVersion(ctx, Version{
			QuotationID:   id,
			VersionNumber: version,
			Items:         staged,
			Totals:        t,
			SavedBy:       savedBy,
			SavedAt:       savedAt,
		}); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
		q.Items = staged
		q.Totals = t
		q.VersionNumber = version
		saved = *q
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) || errors.Is(err, shared.ErrInvalidStatus) {
			s.observeSave("rejected")
			return nil, err
		}
		s.observeSave("failed")
		s.logger.Error("quotation save failed", slog.Int64("quotation_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("save quotation %d: %w: %w", id, shared.ErrPersistence, err)
	}

	s.observeSave("saved")
	s.record(ctx, pc, savedBy, "quotation.save", id, map[string]any{
		"version":     saved.VersionNumber,
		"items":       len(staged),
		"grand_total": t.GrandTotal.String(),
	})
	return &saved, nil
}

// SaveIdempotent saves once per key. A repeated key returns ErrIdempotencyConflict; a failed
// save releases the key so the client can retry.
func (s *Service) SaveIdempotent(ctx context.Context, pc shared.PricingContext, id int64, key string, list []items.QuoteItem, savedBy int64) (*Quotation, error) {
	if key == "" || s.idempotency == nil {
		return s.Save(ctx, pc, id, list, savedBy)
	}
	scoped := strconv.FormatInt(pc.TenantID, 10) + ":" + key
	if err := s.idempotency.CheckAndInsert(ctx, scoped, idempotencyModule); err != nil {
		return nil, err
	}
	saved, err := s.Save(ctx, pc, id, list, savedBy)
	if err != nil {
		if delErr := s.idempotency.Delete(ctx, scoped); delErr != nil {
			s.logger.Warn("release idempotency key", slog.String("key", scoped), slog.Any("error", delErr))
		}
		return nil, err
	}
	return saved, nil
}

// UpdateOptions replaces a draft's options. Options never change any amount.
func (s *Service) UpdateOptions(ctx context.Context, pc shared.PricingContext, id int64, opts Options, actorID int64) (*Quotation, error) {
	q, err := s.repo.Get(ctx, pc.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !q.Editable() {
		return nil, fmt.Errorf("quotation %s is %s: %w", q.QuoteNumber, q.Status, shared.ErrInvalidStatus)
	}
	if err := s.repo.UpdateOptions(ctx, id, opts); err != nil {
		return nil, err
	}
	s.record(ctx, pc, actorID, "quotation.options", id, map[string]any{"options": opts})
	return s.Get(ctx, pc, id)
}

func (s *Service) Send(ctx context.Context, pc shared.PricingContext, id int64, actorID int64) (*Quotation, error) {
	return s.transition(ctx, pc, id, TriggerSend, nil, actorID)
}

func (s *Service) Approve(ctx context.Context, pc shared.PricingContext, id int64, actorID int64) (*Quotation, error) {
	return s.transition(ctx, pc, id, TriggerApprove, nil, actorID)
}

func (s *Service) Reject(ctx context.Context, pc shared.PricingContext, id int64, reason string, actorID int64) (*Quotation, error) {
	if err := quotingShared.ValidateStruct(RejectRequest{Reason: reason}); err != nil {
		return nil, err
	}
	var r *string
	if reason != "" {
		r = &reason
	}
	return s.transition(ctx, pc, id, TriggerReject, r, actorID)
}

func (s *Service) transition(ctx context.Context, pc shared.PricingContext, id int64, trigger Trigger, reason *string, actorID int64) (*Quotation, error) {
	q, err := s.repo.Get(ctx, pc.TenantID, id)
	if err != nil {
		return nil, err
	}
	from := q.Status
	to, err := Transition(ctx, from, trigger)
	if err != nil {
		s.observeTransition(trigger, "invalid")
		return nil, err
	}
	at := s.clock()
	if err := s.repo.UpdateStatus(ctx, id, from, to, reason, at); err != nil {
		s.observeTransition(trigger, "failed")
		return nil, err
	}
	s.observeTransition(trigger, "ok")

	meta := map[string]any{"from": from, "to": to}
	if reason != nil {
		meta["reason"] = *reason
	}
	s.record(ctx, pc, actorID, "quotation."+string(trigger), id, meta)

	if s.publisher != nil {
		event := StatusChangedEvent{
			TenantID:    pc.TenantID,
			QuotationID: id,
			QuoteNumber: q.QuoteNumber,
			JobID:       q.JobID,
			From:        from,
			To:          to,
			ActorID:     actorID,
			ChangedAt:   at,
		}
		if reason != nil {
			event.Reason = *reason
		}
		if err := s.publisher.PublishStatusChanged(ctx, event); err != nil {
			s.logger.Warn("publish status change", slog.Int64("quotation_id", id), slog.String("to", string(to)), slog.Any("error", err))
		}
	}
	return s.Get(ctx, pc, id)
}

// Versions lists persisted snapshots, newest first.
func (s *Service) Versions(ctx context.Context, pc shared.PricingContext, id int64) ([]VersionInfo, error) {
	if _, err := s.repo.Get(ctx, pc.TenantID, id); err != nil {
		return nil, err
	}
	return s.repo.ListVersions(ctx, id)
}

// Version returns snapshot n.
func (s *Service) Version(ctx context.Context, pc shared.PricingContext, id int64, n int) (*Version, error) {
	if _, err := s.repo.Get(ctx, pc.TenantID, id); err != nil {
		return nil, err
	}
	return s.repo.GetVersion(ctx, id, n)
}

// PriceSLAPart prices a part from the quotation insurer's schedule and saves it as a new line.
func (s *Service) PriceSLAPart(ctx context.Context, pc shared.PricingContext, id int64, req SLAPartRequest, actorID int64) (*Quotation, error) {
	if err := quotingShared.ValidateStruct(req); err != nil {
		return nil, err
	}
	editor, err := s.Edit(ctx, pc, id)
	if err != nil {
		return nil, err
	}
	q := editor.Quotation()
	if q.InsurerID == nil {
		return nil, shared.NewValidationError("insurer_id", "quotation has no insurer; SLA part costing needs one")
	}
	schedule, err := s.resolver.Resolve(ctx, pc, *q.InsurerID)
	if err != nil {
		return nil, err
	}
	price, err := schedule.PartPrice(req.CatalogPrice, req.Source, req.InStock)
	if err != nil {
		return nil, err
	}
	if err := editor.QuickAdd(items.QuickItem{
		Operation:   items.OperationPart,
		Description: req.Description,
		Quantity:    max(req.Quantity, 1),
		PartCost:    price,
		LabourCost:  req.LabourCost,
		PaintCost:   req.PaintCost,
	}); err != nil {
		return nil, err
	}
	return s.Save(ctx, pc, id, editor.Items(), actorID)
}

// Preview prices a list of items without touching any quotation.
func (s *Service) Preview(req PreviewRequest) (Preview, error) {
	list := ItemsFromInput(req.Items)
	if err := items.ValidateAll(list); err != nil {
		return Preview{}, err
	}
	return Preview{Items: list, Totals: totals.Compute(list)}, nil
}

// Summary reports totals, currency totals for time quotes, sundries and formatted amounts.
func (s *Service) Summary(ctx context.Context, pc shared.PricingContext, id int64) (Summary, error) {
	q, err := s.Get(ctx, pc, id)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		QuotationID:    q.ID,
		QuoteNumber:    q.QuoteNumber,
		Status:         q.Status,
		QuoteType:      q.QuoteType,
		VersionNumber:  q.VersionNumber,
		Totals:         q.Totals,
		CurrencyTotals: q.Totals,
		Adjustments:    make([]LineAdjustment, 0, len(q.Items)),
		Triggers:       AllowedTriggers(ctx, q.Status),
	}
	for _, it := range q.Items {
		adj := items.Adjustments(it)
		sum.Adjustments = append(sum.Adjustments, LineAdjustment{ItemID: it.ID, Markup: adj.Markup, Betterment: adj.Betterment})
	}

	var schedule *rates.Schedule
	if q.InsurerID != nil {
		schedule, err = s.resolver.Resolve(ctx, pc, *q.InsurerID)
		if err != nil {
			if q.QuoteType == QuoteTypeTime {
				return Summary{}, err
			}
			s.logger.Debug("summary without schedule", slog.Int64("quotation_id", id), slog.Any("error", err))
		}
	}
	if q.QuoteType == QuoteTypeTime {
		if schedule == nil {
			return Summary{}, shared.NewValidationError("insurer_id", "time quotations need an insurer schedule for currency totals")
		}
		sum.CurrencyTotals = q.Totals.ToCurrency(schedule.LabourRate(q.Warranty), schedule.PaintRate(q.Warranty))
	}
	if schedule != nil {
		scheduleID := schedule.ID
		sundries := schedule.SundriesAmount(sum.CurrencyTotals.Parts)
		sum.ScheduleID = &scheduleID
		sum.Sundries = &sundries
	}

	sum.Formatted = make(map[string]string, len(items.Categories())+2)
	for _, c := range items.Categories() {
		sum.Formatted[string(c)] = s.formatter.Format(sum.CurrencyTotals.Subtotal(c))
	}
	sum.Formatted["grand_total"] = s.formatter.Format(sum.CurrencyTotals.GrandTotal)
	if sum.Sundries != nil {
		sum.Formatted["sundries"] = s.formatter.Format(*sum.Sundries)
	}
	return sum, nil
}

func (s *Service) record(ctx context.Context, pc shared.PricingContext, actorID int64, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		TenantID: pc.TenantID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "quotation",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
		At:       s.clock(),
	})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Int64("quotation_id", id), slog.Any("error", err))
	}
}

func (s *Service) observeSave(outcome string) {
	if s.observer != nil {
		s.observer.ObserveSave(outcome)
	}
}

func (s *Service) observeTransition(trigger Trigger, outcome string) {
	if s.observer != nil {
		s.observer.ObserveTransition(string(trigger), outcome)
	}
}
