package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/odyssey-erp/bodyshop/internal/platform/cache"
	"github.com/odyssey-erp/bodyshop/internal/quoting/items"
	quotingShared "github.com/odyssey-erp/bodyshop/internal/quoting/shared"
)

type Service struct {
	repo   Repository
	cache  *cache.Versioned
	logger *slog.Logger
}

// NewService builds the catalog service. c may be nil, in which case every read hits the store.
func NewService(repo Repository, c *cache.Versioned, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: c, logger: logger}
}

// ListOperations returns the fixed operation list in display order.
func (s *Service) ListOperations() []items.Option {
	return items.Operations()
}

// ListPartDescriptions returns a tenant's part descriptions ordered for display.
func (s *Service) ListPartDescriptions(ctx context.Context, tenantID int64) ([]PartDescription, error) {
	scope := strconv.FormatInt(tenantID, 10)
	key, err := s.cache.BuildKey(ctx, scope, "part-descriptions")
	if err != nil {
		return nil, fmt.Errorf("catalog: cache key: %w", err)
	}
	var out []PartDescription
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.ListPartDescriptions(ctx, tenantID)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePartDescription adds a description and drops the tenant's cached list.
func (s *Service) CreatePartDescription(ctx context.Context, tenantID int64, req CreatePartDescriptionRequest) (PartDescription, error) {
	if err := quotingShared.ValidateStruct(req); err != nil {
		return PartDescription{}, err
	}
	op := req.Operation
	if op == "" {
		op = items.OperationPart
	}
	p, err := s.repo.CreatePartDescription(ctx, PartDescription{
		TenantID:    tenantID,
		Description: req.Description,
		Operation:   op,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		return PartDescription{}, err
	}
	if err := s.cache.Bump(ctx, strconv.FormatInt(tenantID, 10)); err != nil {
		s.logger.Warn("catalog cache invalidation failed", slog.Int64("tenant_id", tenantID), slog.Any("error", err))
	}
	return p, nil
}
