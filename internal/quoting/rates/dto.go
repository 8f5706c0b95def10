package rates

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	quotingShared "github.com/odyssey-erp/bodyshop/internal/quoting/shared"
	"github.com/odyssey-erp/bodyshop/internal/shared"
)

// CreateScheduleRequest is the input for a new SLA schedule.
type CreateScheduleRequest struct {
	Name          string        `json:"name" validate:"required,max=120"`
	EffectiveFrom time.Time     `json:"effective_from" validate:"required"`
	EffectiveTo   *time.Time    `json:"effective_to,omitempty"`
	Labour        LabourRates   `json:"labour"`
	Paint         PaintRates    `json:"paint"`
	Parts         PartRates     `json:"parts"`
	Towing        TowingRates   `json:"towing"`
	Outwork       []OutworkRule `json:"outwork" validate:"dive"`
	Sundries      SundriesRates `json:"sundries"`
}

// Validate checks field rules, effective-range order and outwork rule exclusivity.
func (req CreateScheduleRequest) Validate() error {
	verr := &shared.ValidationError{Fields: map[string]string{}}
	if err := quotingShared.ValidateStruct(req); err != nil {
		fieldErr, ok := err.(*shared.ValidationError)
		if !ok {
			return err
		}
		for k, v := range fieldErr.Fields {
			verr.Fields[k] = v
		}
	}
	if req.EffectiveTo != nil && !shared.DateOnly(*req.EffectiveTo).After(shared.DateOnly(req.EffectiveFrom)) {
		verr.Fields["effective_to"] = "must be after effective_from"
	}
	seen := make(map[OutworkType]bool, len(req.Outwork))
	for i, rule := range req.Outwork {
		field := fmt.Sprintf("outwork[%d]", i)
		if !rule.Type.Valid() {
			verr.Fields[field+".type"] = fmt.Sprintf("unknown outwork type %q", rule.Type)
		}
		if seen[rule.Type] {
			verr.Fields[field+".type"] = "duplicate outwork type"
		}
		seen[rule.Type] = true
		hasCap, hasMinutes := rule.CapPercent.Valid, rule.FixedMinutes != nil
		if hasCap == hasMinutes {
			verr.Fields[field] = "set exactly one of cap_percent or fixed_minutes"
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// Schedule converts the request into a Schedule for the given tenant and insurer.
func (req CreateScheduleRequest) Schedule(tenantID, insurerID int64) Schedule {
	s := Schedule{
		TenantID:      tenantID,
		InsurerID:     insurerID,
		Name:          req.Name,
		EffectiveFrom: shared.DateOnly(req.EffectiveFrom),
		Labour:        req.Labour,
		Paint:         req.Paint,
		Parts:         req.Parts,
		Towing:        req.Towing,
		Outwork:       append([]OutworkRule(nil), req.Outwork...),
		Sundries:      req.Sundries,
	}
	if req.EffectiveTo != nil {
		to := shared.DateOnly(*req.EffectiveTo)
		s.EffectiveTo = &to
	}
	return s
}

// OutworkTypes lists the outwork sub-types.
func OutworkTypes() []OutworkType {
	return []OutworkType{
		OutworkWheelAlignment, OutworkAirCon, OutworkDiagnostics, OutworkElectrical, OutworkMechanical,
		OutworkJigHire, OutworkGlass, OutworkUpholstery, OutworkOther,
	}
}

// Valid reports whether t is a known outwork sub-type.
func (t OutworkType) Valid() bool {
	for _, known := range OutworkTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// PartPriceRequest asks for the SLA price of a catalog part.
type PartPriceRequest struct {
	CatalogPrice decimal.Decimal `json:"catalog_price" validate:"gte=0"`
	Source       PartSource      `json:"source" validate:"required"`
	InStock      bool            `json:"in_stock"`
}

// PartPriceResult reports the effective percentage and resulting price.
type PartPriceResult struct {
	ScheduleID       int64           `json:"schedule_id"`
	EffectivePercent decimal.Decimal `json:"effective_percent"`
	Price            decimal.Decimal `json:"price"`
}

// TowingRequest is the input for a towing and storage charge.
type TowingRequest struct {
	DaysStored  int             `json:"days_stored" validate:"gte=0"`
	KmTravelled decimal.Decimal `json:"km_travelled" validate:"gte=0"`
}

// TowingResult is the towing and storage charge under the resolved schedule.
type TowingResult struct {
	ScheduleID int64           `json:"schedule_id"`
	Cost       decimal.Decimal `json:"cost"`
}
