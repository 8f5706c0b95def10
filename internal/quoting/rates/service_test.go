package rates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/bodyshop/internal/platform/cache"
	"github.com/odyssey-erp/bodyshop/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	mu        sync.Mutex
	schedules map[int64]Schedule
	nextID    int64
	listCalls int
	locks     int

	// Error injection
	txError     error
	listError   error
	createError error
}

func newMockRepository(schedules ...Schedule) *mockRepository {
	m := &mockRepository{schedules: make(map[int64]Schedule), nextID: 1}
	for _, s := range schedules {
		m.schedules[s.ID] = s
		if s.ID >= m.nextID {
			m.nextID = s.ID + 1
		}
	}
	return m
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(ctx, m)
}

func (m *mockRepository) ListSchedules(ctx context.Context, tenantID, insurerID int64) ([]Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listError != nil {
		return nil, m.listError
	}
	out := make([]Schedule, 0)
	for id := int64(1); id < m.nextID; id++ {
		s, ok := m.schedules[id]
		if ok && s.TenantID == tenantID && s.InsurerID == insurerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, tenantID, id int64) (*Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok || s.TenantID != tenantID {
		return nil, fmt.Errorf("sla schedule %d: %w", id, shared.ErrNotFound)
	}
	return &s, nil
}

func (m *mockRepository) Create(ctx context.Context, s Schedule) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return 0, m.createError
	}
	s.ID = m.nextID
	m.nextID++
	m.schedules[s.ID] = s
	return s.ID, nil
}

func (m *mockRepository) LockInsurer(ctx context.Context, tenantID, insurerID int64) error {
	m.locks++
	return nil
}

func (m *mockRepository) ListInsurers(ctx context.Context) ([]InsurerRef, error) {
	seen := map[InsurerRef]bool{}
	var refs []InsurerRef
	for id := int64(1); id < m.nextID; id++ {
		s, ok := m.schedules[id]
		if !ok {
			continue
		}
		ref := InsurerRef{TenantID: s.TenantID, InsurerID: s.InsurerID}
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

type recordingObserver struct {
	outcomes []string
}

func (o *recordingObserver) ObserveResolution(outcome string) {
	o.outcomes = append(o.outcomes, outcome)
}

func newTestService(t *testing.T, repo *mockRepository) (*Service, *recordingObserver) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	observer := &recordingObserver{}
	resolver := NewResolver(repo, cache.NewVersioned(client, "rates", time.Minute), observer)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, resolver, logger), observer
}

func validRequest(from time.Time, to *time.Time) CreateScheduleRequest {
	s := sampleSchedule(0, from, to)
	return CreateScheduleRequest{
		Name:          "Standard SLA",
		EffectiveFrom: s.EffectiveFrom,
		EffectiveTo:   s.EffectiveTo,
		Labour:        s.Labour,
		Paint:         s.Paint,
		Parts:         s.Parts,
		Towing:        s.Towing,
		Outwork:       s.Outwork,
		Sundries:      s.Sundries,
	}
}

// ============================================================================
// TESTS
// ============================================================================

func TestResolveScenario(t *testing.T) {
	repo := newMockRepository(
		sampleSchedule(1, date(2023, 1, 1), datePtr(2023, 7, 1)),
		sampleSchedule(2, date(2023, 7, 1), nil),
	)
	svc, observer := newTestService(t, repo)
	ctx := context.Background()

	got, err := svc.Resolve(ctx, shared.NewPricingContext(1, 0, date(2023, 4, 15)), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	got, err = svc.Resolve(ctx, shared.NewPricingContext(1, 0, date(2024, 1, 1)), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ID)

	_, err = svc.Resolve(ctx, shared.NewPricingContext(1, 0, date(2022, 12, 31)), 42)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.Equal(t, []string{"resolved", "resolved", "not_found"}, observer.outcomes)
	assert.Equal(t, 1, repo.listCalls, "schedule list should be served from cache after the first load")
}

func TestResolveUnknownInsurer(t *testing.T) {
	svc, observer := newTestService(t, newMockRepository())
	_, err := svc.Resolve(context.Background(), shared.NewPricingContext(1, 0, date(2023, 1, 1)), 99)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, []string{"not_found"}, observer.outcomes)
}

func TestResolveOverlapInDataIsConflict(t *testing.T) {
	repo := newMockRepository(
		sampleSchedule(1, date(2023, 1, 1), nil),
		sampleSchedule(2, date(2023, 6, 1), nil),
	)
	svc, observer := newTestService(t, repo)
	_, err := svc.Resolve(context.Background(), shared.NewPricingContext(1, 0, date(2023, 8, 1)), 42)
	assert.ErrorIs(t, err, shared.ErrScheduleConflict)
	assert.Equal(t, []string{"conflict"}, observer.outcomes)
}

func TestResolveStoreError(t *testing.T) {
	repo := newMockRepository()
	repo.listError = errors.New("connection refused")
	svc, observer := newTestService(t, repo)
	_, err := svc.Resolve(context.Background(), shared.NewPricingContext(1, 0, date(2023, 8, 1)), 42)
	require.Error(t, err)
	assert.Equal(t, []string{"error"}, observer.outcomes)
}

func TestResolveIsTenantScoped(t *testing.T) {
	other := sampleSchedule(1, date(2023, 1, 1), nil)
	other.TenantID = 2
	svc, _ := newTestService(t, newMockRepository(other))
	_, err := svc.Resolve(context.Background(), shared.NewPricingContext(1, 0, date(2023, 8, 1)), 42)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateScheduleRejectsOverlap(t *testing.T) {
	repo := newMockRepository(sampleSchedule(1, date(2023, 1, 1), datePtr(2023, 7, 1)))
	svc, _ := newTestService(t, repo)
	pc := shared.NewPricingContext(1, 0, date(2023, 1, 1))

	_, err := svc.CreateSchedule(context.Background(), pc, 42, validRequest(date(2023, 6, 1), nil))
	assert.ErrorIs(t, err, shared.ErrScheduleConflict)
	assert.Len(t, repo.schedules, 1)
	assert.Equal(t, 1, repo.locks)
}

func TestCreateScheduleInvalidatesCache(t *testing.T) {
	repo := newMockRepository(sampleSchedule(1, date(2023, 1, 1), datePtr(2023, 7, 1)))
	svc, _ := newTestService(t, repo)
	ctx := context.Background()
	pc := shared.NewPricingContext(1, 0, date(2024, 2, 1))

	_, err := svc.Resolve(ctx, pc, 42)
	require.ErrorIs(t, err, shared.ErrNotFound)

	created, err := svc.CreateSchedule(ctx, pc, 42, validRequest(date(2023, 7, 1), nil))
	require.NoError(t, err)
	assert.Equal(t, int64(2), created.ID)
	assert.Equal(t, "Standard SLA", created.Name)

	got, err := svc.Resolve(ctx, pc, 42)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestCreateScheduleValidation(t *testing.T) {
	svc, _ := newTestService(t, newMockRepository())
	pc := shared.NewPricingContext(1, 0, date(2023, 1, 1))

	cases := []struct {
		name   string
		mutate func(*CreateScheduleRequest)
		field  string
	}{
		{"missing name", func(r *CreateScheduleRequest) { r.Name = "" }, "name"},
		{"range reversed", func(r *CreateScheduleRequest) { r.EffectiveTo = datePtr(2022, 1, 1) }, "effective_to"},
		{"empty range", func(r *CreateScheduleRequest) { r.EffectiveTo = datePtr(2023, 1, 1) }, "effective_to"},
		{"negative labour", func(r *CreateScheduleRequest) { r.Labour.Warranty = dec("-1") }, "labour.warranty"},
		{"bad rate type", func(r *CreateScheduleRequest) { r.Labour.RateType = "hourly" }, "labour.rate_type"},
		{"factor above one", func(r *CreateScheduleRequest) {
			r.Parts.UsedInStockFactor = decimal.NewNullDecimal(dec("1.5"))
		}, "parts.used_in_stock_factor"},
		{"outwork with both", func(r *CreateScheduleRequest) { r.Outwork[0].FixedMinutes = minutes(30) }, "outwork[0]"},
		{"outwork with neither", func(r *CreateScheduleRequest) { r.Outwork[1].FixedMinutes = nil }, "outwork[1]"},
		{"duplicate outwork", func(r *CreateScheduleRequest) { r.Outwork[1].Type = OutworkWheelAlignment }, "outwork[1].type"},
		{"unknown outwork", func(r *CreateScheduleRequest) { r.Outwork[1].Type = "paintless" }, "outwork[1].type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest(date(2023, 1, 1), nil)
			req.Outwork = append([]OutworkRule(nil), req.Outwork...)
			tc.mutate(&req)
			_, err := svc.CreateSchedule(context.Background(), pc, 42, req)
			var verr *shared.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestCreateScheduleMapsStoreConflict(t *testing.T) {
	repo := newMockRepository()
	repo.createError = fmt.Errorf("insurer 42: overlapping effective range: %w", shared.ErrScheduleConflict)
	svc, _ := newTestService(t, repo)
	_, err := svc.CreateSchedule(context.Background(), shared.NewPricingContext(1, 0, date(2023, 1, 1)), 42, validRequest(date(2023, 1, 1), nil))
	assert.ErrorIs(t, err, shared.ErrScheduleConflict)
}

func TestServicePartPriceAndTowing(t *testing.T) {
	repo := newMockRepository(sampleSchedule(1, date(2023, 1, 1), nil))
	svc, _ := newTestService(t, repo)
	ctx := context.Background()
	pc := shared.NewPricingContext(1, 0, date(2023, 3, 1))

	res, err := svc.PartPrice(ctx, pc, 42, PartPriceRequest{CatalogPrice: dec("1000"), Source: SourceNewOEM, InStock: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ScheduleID)
	assert.True(t, res.EffectivePercent.Equal(dec("10")))
	assert.True(t, res.Price.Equal(dec("1100")))

	tow, err := svc.Towing(ctx, pc, 42, TowingRequest{DaysStored: 2, KmTravelled: dec("90")})
	require.NoError(t, err)
	assert.True(t, tow.Cost.Equal(dec("670")))

	_, err = svc.Towing(ctx, pc, 42, TowingRequest{DaysStored: -2})
	assert.ErrorIs(t, err, shared.ErrValidation)

	allowance, err := svc.OutworkAllowance(ctx, pc, 42, OutworkJigHire)
	require.NoError(t, err)
	assert.Equal(t, 90, allowance.FixedMinutes)
}

func TestPartPriceWithoutScheduleFails(t *testing.T) {
	svc, _ := newTestService(t, newMockRepository())
	_, err := svc.PartPrice(context.Background(), shared.NewPricingContext(1, 0, date(2023, 3, 1)), 42,
		PartPriceRequest{CatalogPrice: dec("1000"), Source: SourceNewOEM})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestWarmupLoadsEveryInsurer(t *testing.T) {
	a := sampleSchedule(1, date(2023, 1, 1), nil)
	b := sampleSchedule(2, date(2023, 1, 1), nil)
	b.InsurerID = 43
	repo := newMockRepository(a, b)
	svc, _ := newTestService(t, repo)

	warmed, failed, err := svc.Warmup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, warmed)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 2, repo.listCalls)

	_, err = svc.Resolve(context.Background(), shared.NewPricingContext(1, 0, date(2023, 5, 1)), 43)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}
