package rates

import (
	"context"
	"fmt"
	"log/slog"

	quotingShared "github.com/odyssey-erp/bodyshop/internal/quoting/shared"
	"github.com/odyssey-erp/bodyshop/internal/shared"
)

// Service manages SLA schedules and prices against the resolved schedule.
type Service struct {
	repo     Repository
	resolver *Resolver
	logger   *slog.Logger
}

func NewService(repo Repository, resolver *Resolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, resolver: resolver, logger: logger}
}

// Resolver exposes the schedule resolver for other pricing components.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// CreateSchedule stores a new schedule unless its range overlaps an existing one for the insurer.
func (s *Service) CreateSchedule(ctx context.Context, pc shared.PricingContext, insurerID int64, req CreateScheduleRequest) (*Schedule, error) {
	if insurerID <= 0 {
		return nil, shared.NewValidationError("insurer_id", "must be a positive integer")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	schedule := req.Schedule(pc.TenantID, insurerID)

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.LockInsurer(ctx, pc.TenantID, insurerID); err != nil {
			return fmt.Errorf("lock insurer: %w", err)
		}
		existing, err := repo.ListSchedules(ctx, pc.TenantID, insurerID)
		if err != nil {
			return fmt.Errorf("list schedules: %w", err)
		}
		for _, other := range existing {
			if schedule.Overlaps(other) {
				return fmt.Errorf("overlaps schedule %d (%s): %w", other.ID, other.Name, shared.ErrScheduleConflict)
			}
		}
		id, err := repo.Create(ctx, schedule)
		if err != nil {
			return fmt.Errorf("create schedule: %w", err)
		}
		schedule.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.resolver.Invalidate(ctx, pc.TenantID); err != nil {
		s.logger.Warn("rate cache bump failed", slog.Int64("tenant_id", pc.TenantID), slog.Any("error", err))
	}
	s.logger.Info("sla schedule created",
		slog.Int64("tenant_id", pc.TenantID),
		slog.Int64("insurer_id", insurerID),
		slog.Int64("schedule_id", schedule.ID),
	)
	return s.repo.Get(ctx, pc.TenantID, schedule.ID)
}

// ListSchedules returns every schedule of an insurer ordered by effective date.
func (s *Service) ListSchedules(ctx context.Context, pc shared.PricingContext, insurerID int64) ([]Schedule, error) {
	return s.repo.ListSchedules(ctx, pc.TenantID, insurerID)
}

// Resolve returns the schedule in force on pc's pricing date.
func (s *Service) Resolve(ctx context.Context, pc shared.PricingContext, insurerID int64) (*Schedule, error) {
	return s.resolver.Resolve(ctx, pc, insurerID)
}

// PartPrice resolves the insurer's schedule and prices a catalog part against it.
func (s *Service) PartPrice(ctx context.Context, pc shared.PricingContext, insurerID int64, req PartPriceRequest) (PartPriceResult, error) {
	if err := quotingShared.ValidateStruct(req); err != nil {
		return PartPriceResult{}, err
	}
	schedule, err := s.resolver.Resolve(ctx, pc, insurerID)
	if err != nil {
		return PartPriceResult{}, err
	}
	pct, err := schedule.EffectivePartPercent(req.Source, req.InStock)
	if err != nil {
		return PartPriceResult{}, err
	}
	price, err := schedule.PartPrice(req.CatalogPrice, req.Source, req.InStock)
	if err != nil {
		return PartPriceResult{}, err
	}
	return PartPriceResult{ScheduleID: schedule.ID, EffectivePercent: pct, Price: price}, nil
}

// Towing resolves the insurer's schedule and computes a towing and storage charge.
func (s *Service) Towing(ctx context.Context, pc shared.PricingContext, insurerID int64, req TowingRequest) (TowingResult, error) {
	if err := quotingShared.ValidateStruct(req); err != nil {
		return TowingResult{}, err
	}
	schedule, err := s.resolver.Resolve(ctx, pc, insurerID)
	if err != nil {
		return TowingResult{}, err
	}
	return TowingResult{ScheduleID: schedule.ID, Cost: schedule.TowingCost(req.DaysStored, req.KmTravelled)}, nil
}

// OutworkAllowance resolves the insurer's schedule and returns the rule for an outwork sub-type.
func (s *Service) OutworkAllowance(ctx context.Context, pc shared.PricingContext, insurerID int64, t OutworkType) (Allowance, error) {
	schedule, err := s.resolver.Resolve(ctx, pc, insurerID)
	if err != nil {
		return Allowance{}, err
	}
	return schedule.OutworkAllowance(t)
}

// Warmup resolves every insurer with schedules so their lists are cached. Failures are logged
// and counted; the remaining insurers still load.
func (s *Service) Warmup(ctx context.Context) (warmed int, failed int, err error) {
	refs, err := s.repo.ListInsurers(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list insurers: %w", err)
	}
	for _, ref := range refs {
		if _, err := s.resolver.Schedules(ctx, ref.TenantID, ref.InsurerID); err != nil {
			failed++
			s.logger.Warn("rate cache warmup failed",
				slog.Int64("tenant_id", ref.TenantID),
				slog.Int64("insurer_id", ref.InsurerID),
				slog.Any("error", err),
			)
			continue
		}
		warmed++
	}
	return warmed, failed, nil
}
