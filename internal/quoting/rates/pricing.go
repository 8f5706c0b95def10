package rates

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/bodyshop/internal/shared"
)

var hundred = decimal.NewFromInt(100)

// PartSources lists the part sources in display order.
func PartSources() []PartSource {
	return []PartSource{SourceNewOEM, SourceAltManufacturer, SourceAltNonManufacturer, SourceUsed, SourceAftermarket}
}

// Valid reports whether s is a known part source.
func (s PartSource) Valid() bool {
	for _, known := range PartSources() {
		if s == known {
			return true
		}
	}
	return false
}

func (p PartRates) forSource(source PartSource) (decimal.Decimal, decimal.NullDecimal, error) {
	switch source {
	case SourceNewOEM:
		return p.NewOEMPercent, p.NewOEMInStockFactor, nil
	case SourceAltManufacturer:
		return p.AltManufacturerPercent, p.AltManufacturerInStockFactor, nil
	case SourceAltNonManufacturer:
		return p.AltNonManufacturerPercent, p.AltNonManufacturerInStockFactor, nil
	case SourceUsed:
		return p.UsedPercent, p.UsedInStockFactor, nil
	case SourceAftermarket:
		return p.AftermarketPercent, p.AftermarketInStockFactor, nil
	}
	return decimal.Zero, decimal.NullDecimal{}, shared.NewValidationError("source", fmt.Sprintf("unknown part source %q", source))
}

// EffectivePartPercent returns the markup percentage for a part source. An in-stock part with a
// configured factor gets base*(1-factor); otherwise the base percentage applies.
func (s Schedule) EffectivePartPercent(source PartSource, inStock bool) (decimal.Decimal, error) {
	base, factor, err := s.Parts.forSource(source)
	if err != nil {
		return decimal.Zero, err
	}
	if inStock && factor.Valid {
		return base.Mul(decimal.NewFromInt(1).Sub(factor.Decimal)), nil
	}
	return base, nil
}

// PartPrice applies the effective percentage to a catalog price.
func (s Schedule) PartPrice(catalogPrice decimal.Decimal, source PartSource, inStock bool) (decimal.Decimal, error) {
	if catalogPrice.IsNegative() {
		return decimal.Zero, shared.NewValidationError("catalog_price", "must be at least 0")
	}
	pct, err := s.EffectivePartPercent(source, inStock)
	if err != nil {
		return decimal.Zero, err
	}
	return catalogPrice.Mul(decimal.NewFromInt(1).Add(pct.Div(hundred))), nil
}

// AllowanceKind distinguishes percentage-capped outwork from fixed-minutes outwork.
type AllowanceKind string

const (
	AllowancePercentCap   AllowanceKind = "percent_cap"
	AllowanceFixedMinutes AllowanceKind = "fixed_minutes"
)

// Allowance is the resolved rule for one outwork sub-type.
type Allowance struct {
	Type         OutworkType     `json:"type"`
	Kind         AllowanceKind   `json:"kind"`
	CapPercent   decimal.Decimal `json:"cap_percent,omitempty"`
	FixedMinutes int             `json:"fixed_minutes,omitempty"`
}

// Cap limits an outwork amount to CapPercent of base. Fixed-minutes allowances return amount unchanged.
func (a Allowance) Cap(amount, base decimal.Decimal) decimal.Decimal {
	if a.Kind != AllowancePercentCap {
		return amount
	}
	return decimal.Min(amount, base.Mul(a.CapPercent).Div(hundred))
}

// OutworkAllowance looks up the rule for an outwork sub-type.
func (s Schedule) OutworkAllowance(t OutworkType) (Allowance, error) {
	for _, rule := range s.Outwork {
		if rule.Type != t {
			continue
		}
		if rule.FixedMinutes != nil {
			return Allowance{Type: t, Kind: AllowanceFixedMinutes, FixedMinutes: *rule.FixedMinutes}, nil
		}
		return Allowance{Type: t, Kind: AllowancePercentCap, CapPercent: rule.CapPercent.Decimal}, nil
	}
	return Allowance{}, fmt.Errorf("outwork rule %q: %w", t, shared.ErrNotFound)
}

// TowingCost charges storage per day plus every kilometre beyond the free allowance.
func (s Schedule) TowingCost(daysStored int, kmTravelled decimal.Decimal) decimal.Decimal {
	if daysStored < 0 {
		daysStored = 0
	}
	storage := s.Towing.StoragePerDay.Mul(decimal.NewFromInt(int64(daysStored)))
	chargeable := decimal.Max(decimal.Zero, kmTravelled.Sub(s.Towing.FirstKmFree))
	return storage.Add(chargeable.Mul(s.Towing.PerKmRate))
}

// SundriesAmount returns the consumables allowance for a parts total, capped when a cap is set.
func (s Schedule) SundriesAmount(partsTotal decimal.Decimal) decimal.Decimal {
	amount := partsTotal.Mul(s.Sundries.Percent).Div(hundred)
	if s.Sundries.Cap.Valid {
		return decimal.Min(amount, s.Sundries.Cap.Decimal)
	}
	return amount
}

// LabourRate returns the warranty or non-warranty labour rate.
func (s Schedule) LabourRate(warranty bool) decimal.Decimal {
	if warranty {
		return s.Labour.Warranty
	}
	return s.Labour.NonWarranty
}

// PaintRate returns the warranty or non-warranty paint rate.
func (s Schedule) PaintRate(warranty bool) decimal.Decimal {
	if warranty {
		return s.Paint.Warranty
	}
	return s.Paint.NonWarranty
}

// Surcharge returns a named paint surcharge.
func (p PaintRates) Surcharge(kind PaintSurcharge) (decimal.Decimal, error) {
	switch kind {
	case SurchargeBlending:
		return p.Blending, nil
	case SurchargeSmallPanel:
		return p.SmallPanel, nil
	case SurchargeSmallRepair:
		return p.SmallRepair, nil
	case SurchargeWaterBased:
		return p.WaterBased, nil
	case SurchargePearlescent1:
		return p.PearlescentGrade1, nil
	case SurchargePearlescent2:
		return p.PearlescentGrade2, nil
	}
	return decimal.Zero, fmt.Errorf("paint surcharge %q: %w", kind, shared.ErrNotFound)
}
