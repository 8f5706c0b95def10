package rates

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/bodyshop/internal/platform/cache"
	"github.com/odyssey-erp/bodyshop/internal/shared"
)

// Store lists every schedule an insurer has within a tenant.
type Store interface {
	ListSchedules(ctx context.Context, tenantID, insurerID int64) ([]Schedule, error)
}

// Observer receives resolution outcomes: resolved, not_found, conflict or error.
type Observer interface {
	ObserveResolution(outcome string)
}

// Resolver finds the single schedule that applies to an insurer on a date.
type Resolver struct {
	store    Store
	cache    *cache.Versioned
	observer Observer
	group    singleflight.Group
}

// NewResolver builds a resolver. cache and observer may be nil.
func NewResolver(store Store, c *cache.Versioned, observer Observer) *Resolver {
	return &Resolver{store: store, cache: c, observer: observer}
}

// Resolve returns the schedule covering pc's pricing date. It never falls back to a default.
func (r *Resolver) Resolve(ctx context.Context, pc shared.PricingContext, insurerID int64) (*Schedule, error) {
	schedules, err := r.Schedules(ctx, pc.TenantID, insurerID)
	if err != nil {
		r.observe("error")
		return nil, err
	}
	if len(schedules) == 0 {
		r.observe("not_found")
		return nil, fmt.Errorf("insurer %d has no sla schedules: %w", insurerID, shared.ErrNotFound)
	}
	schedule, err := Select(schedules, pc.Date())
	switch {
	case errors.Is(err, shared.ErrNotFound):
		r.observe("not_found")
		return nil, fmt.Errorf("insurer %d: %w", insurerID, err)
	case errors.Is(err, shared.ErrScheduleConflict):
		r.observe("conflict")
		return nil, fmt.Errorf("insurer %d: %w", insurerID, err)
	case err != nil:
		r.observe("error")
		return nil, err
	}
	r.observe("resolved")
	return schedule, nil
}

// Schedules loads an insurer's schedules through the cache. Concurrent loads of the same key
// share one store call.
func (r *Resolver) Schedules(ctx context.Context, tenantID, insurerID int64) ([]Schedule, error) {
	scope := strconv.FormatInt(tenantID, 10)
	key, err := r.cache.BuildKey(ctx, scope, "schedules", strconv.FormatInt(insurerID, 10))
	if err != nil {
		return nil, fmt.Errorf("rates: cache key: %w", err)
	}
	ch := r.group.DoChan(key, func() (any, error) {
		var schedules []Schedule
		err := r.cache.FetchJSON(ctx, key, &schedules, func(ctx context.Context) (any, error) {
			return r.store.ListSchedules(ctx, tenantID, insurerID)
		})
		return schedules, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Schedule), nil
	}
}

// Invalidate drops every cached schedule list for a tenant.
func (r *Resolver) Invalidate(ctx context.Context, tenantID int64) error {
	return r.cache.Bump(ctx, strconv.FormatInt(tenantID, 10))
}

func (r *Resolver) observe(outcome string) {
	if r.observer != nil {
		r.observer.ObserveResolution(outcome)
	}
}
