package quotations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/odyssey-erp/bodyshop/internal/quoting/items"
	"github.com/odyssey-erp/bodyshop/internal/quoting/totals"
	"github.com/odyssey-erp/bodyshop/internal/shared"
)

// memState is the committed content of the in-memory store.
type memState struct {
	quotations map[int64]Quotation
	items      map[int64][]items.QuoteItem
	versions   map[int64][]Version
	sequences  map[string]int64
	nextID     int64
}

func newMemState() *memState {
	return &memState{
		quotations: make(map[int64]Quotation),
		items:      make(map[int64][]items.QuoteItem),
		versions:   make(map[int64][]Version),
		sequences:  make(map[string]int64),
		nextID:     1,
	}
}

func (s *memState) clone() *memState {
	out := newMemState()
	out.nextID = s.nextID
	for k, v := range s.quotations {
		out.quotations[k] = v
	}
	for k, v := range s.items {
		out.items[k] = items.Clone(v)
	}
	for k, v := range s.versions {
		out.versions[k] = append([]Version(nil), v...)
	}
	for k, v := range s.sequences {
		out.sequences[k] = v
	}
	return out
}

// mockRepository stages writes made inside WithTx and only commits them when fn succeeds.
type mockRepository struct {
	state *memState
	inTx  bool

	// Error injection
	txError           error
	insertItemsError  error
	updateTotalsError error
	updateStatusError error

	deleteCalls int
	insertCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{state: newMemState()}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if m.txError != nil {
		return m.txError
	}
	tx := &mockRepository{
		state:             m.state.clone(),
		inTx:              true,
		insertItemsError:  m.insertItemsError,
		updateTotalsError: m.updateTotalsError,
		updateStatusError: m.updateStatusError,
	}
	err := fn(ctx, tx)
	m.deleteCalls += tx.deleteCalls
	m.insertCalls += tx.insertCalls
	if err != nil {
		return err
	}
	m.state = tx.state
	return nil
}

func (m *mockRepository) Get(ctx context.Context, tenantID, id int64) (*Quotation, error) {
	q, ok := m.state.quotations[id]
	if !ok || q.TenantID != tenantID {
		return nil, fmt.Errorf("quotation %d: %w", id, shared.ErrNotFound)
	}
	q.Items = nil
	return &q, nil
}

func (m *mockRepository) GetForUpdate(ctx context.Context, tenantID, id int64) (*Quotation, error) {
	if !m.inTx {
		return nil, errors.New("GetForUpdate outside transaction")
	}
	return m.Get(ctx, tenantID, id)
}

func (m *mockRepository) List(ctx context.Context, tenantID int64, req ListQuotationsRequest) ([]Quotation, int, error) {
	var out []Quotation
	for _, q := range m.state.quotations {
		if q.TenantID != tenantID {
			continue
		}
		if req.Status != nil && q.Status != *req.Status {
			continue
		}
		if req.JobID != nil && q.JobID != *req.JobID {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := len(out)
	if req.Offset >= len(out) {
		return nil, total, nil
	}
	end := min(req.Offset+req.Limit, len(out))
	return out[req.Offset:end], total, nil
}

func (m *mockRepository) Create(ctx context.Context, q Quotation) (int64, error) {
	q.ID = m.state.nextID
	m.state.nextID++
	q.Items = nil
	q.CreatedAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	q.UpdatedAt = q.CreatedAt
	m.state.quotations[q.ID] = q
	return q.ID, nil
}

func (m *mockRepository) LoadItems(ctx context.Context, quotationID int64) ([]items.QuoteItem, error) {
	return items.Clone(m.state.items[quotationID]), nil
}

func (m *mockRepository) DeleteItems(ctx context.Context, quotationID int64) error {
	m.deleteCalls++
	delete(m.state.items, quotationID)
	return nil
}

func (m *mockRepository) InsertItems(ctx context.Context, quotationID int64, list []items.QuoteItem) error {
	m.insertCalls++
	if m.insertItemsError != nil {
		return m.insertItemsError
	}
	m.state.items[quotationID] = append(m.state.items[quotationID], items.Clone(list)...)
	return nil
}

func (m *mockRepository) UpdateTotals(ctx context.Context, id int64, t totals.Totals) (int, error) {
	if m.updateTotalsError != nil {
		return 0, m.updateTotalsError
	}
	q, ok := m.state.quotations[id]
	if !ok {
		return 0, fmt.Errorf("quotation %d: %w", id, shared.ErrNotFound)
	}
	q.Totals = t
	q.VersionNumber++
	m.state.quotations[id] = q
	return q.VersionNumber, nil
}

func (m *mockRepository) InsertVersion(ctx context.Context, v Version) error {
	v.Items = items.Clone(v.Items)
	m.state.versions[v.QuotationID] = append(m.state.versions[v.QuotationID], v)
	return nil
}

func (m *mockRepository) ListVersions(ctx context.Context, quotationID int64) ([]VersionInfo, error) {
	versions := m.state.versions[quotationID]
	out := make([]VersionInfo, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		out = append(out, VersionInfo{VersionNumber: v.VersionNumber, ItemCount: len(v.Items), Totals: v.Totals, SavedBy: v.SavedBy, SavedAt: v.SavedAt})
	}
	return out, nil
}

func (m *mockRepository) GetVersion(ctx context.Context, quotationID int64, number int) (*Version, error) {
	for _, v := range m.state.versions[quotationID] {
		if v.VersionNumber == number {
			return &v, nil
		}
	}
	return nil, fmt.Errorf("quotation %d version %d: %w", quotationID, number, shared.ErrNotFound)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, from, to Status, reason *string, at time.Time) error {
	if m.updateStatusError != nil {
		return m.updateStatusError
	}
	q, ok := m.state.quotations[id]
	if !ok || q.Status != from {
		return fmt.Errorf("quotation %d is no longer %s: %w", id, from, shared.ErrInvalidStatus)
	}
	q.Status = to
	q.RejectionReason = reason
	if to == StatusSent {
		q.SentAt = &at
	} else {
		q.DecidedAt = &at
	}
	m.state.quotations[id] = q
	return nil
}

func (m *mockRepository) UpdateOptions(ctx context.Context, id int64, opts Options) error {
	q, ok := m.state.quotations[id]
	if !ok || q.Status != StatusDraft {
		return fmt.Errorf("quotation %d is not a draft: %w", id, shared.ErrInvalidStatus)
	}
	q.Options = opts
	m.state.quotations[id] = q
	return nil
}

func (m *mockRepository) GenerateNumber(ctx context.Context, tenantID int64, date time.Time) (string, error) {
	key := fmt.Sprintf("%d:%s", tenantID, date.Format("200601"))
	m.state.sequences[key]++
	return FormatNumber(date, m.state.sequences[key]), nil
}
