package httpx

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/bodyshop/internal/shared"
)

const (
	HeaderTenantID       = "X-Tenant-ID"
	HeaderOrganizationID = "X-Organization-ID"
	HeaderActorID        = "X-Actor-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// PricingContext builds a PricingContext from tenant headers and the optional as_of query
// parameter (YYYY-MM-DD). A missing tenant header is a validation error.
func PricingContext(r *http.Request) (shared.PricingContext, error) {
	tenantID, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderTenantID)), 10, 64)
	if err != nil || tenantID <= 0 {
		return shared.PricingContext{}, shared.NewValidationError("tenant_id", "header "+HeaderTenantID+" is required")
	}
	var orgID int64
	if raw := strings.TrimSpace(r.Header.Get(HeaderOrganizationID)); raw != "" {
		orgID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return shared.PricingContext{}, shared.NewValidationError("organization_id", "must be an integer")
		}
	}
	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		asOf, err = time.Parse(time.DateOnly, raw)
		if err != nil {
			return shared.PricingContext{}, shared.NewValidationError("as_of", "must be a date (YYYY-MM-DD)")
		}
	}
	return shared.NewPricingContext(tenantID, orgID, asOf), nil
}

// ActorID returns the acting user id from the X-Actor-ID header, or 0 when absent.
func ActorID(r *http.Request) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderActorID)), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// IDParam parses a positive int64 chi URL parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// IntQuery parses an integer query parameter, falling back to def when absent or malformed.
func IntQuery(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
