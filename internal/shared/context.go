package shared

import "time"

// PricingContext carries the tenant, organisation and pricing date explicitly into every
// resolver and quotation call.
type PricingContext struct {
	TenantID       int64
	OrganizationID int64
	AsOf           time.Time
}

// NewPricingContext normalises AsOf to a UTC calendar date.
func NewPricingContext(tenantID, organizationID int64, asOf time.Time) PricingContext {
	return PricingContext{TenantID: tenantID, OrganizationID: organizationID, AsOf: DateOnly(asOf)}
}

// Date returns the pricing date, defaulting to today when unset.
func (pc PricingContext) Date() time.Time {
	if pc.AsOf.IsZero() {
		return DateOnly(time.Now())
	}
	return DateOnly(pc.AsOf)
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
