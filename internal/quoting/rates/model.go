package rates

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateType says whether labour is billed by time units or directly in currency.
type RateType string

const (
	RateTypeTime     RateType = "time"
	RateTypeCurrency RateType = "currency"
)

// LabourRates is the labour sub-schedule.
type LabourRates struct {
	Warranty    decimal.Decimal `json:"warranty" validate:"gte=0"`
	NonWarranty decimal.Decimal `json:"non_warranty" validate:"gte=0"`
	RateType    RateType        `json:"rate_type" validate:"required,oneof=time currency"`
}

// PaintSurcharge names a paint surcharge.
type PaintSurcharge string

const (
	SurchargeBlending     PaintSurcharge = "blending"
	SurchargeSmallPanel   PaintSurcharge = "small_panel"
	SurchargeSmallRepair  PaintSurcharge = "small_repair"
	SurchargeWaterBased   PaintSurcharge = "water_based"
	SurchargePearlescent1 PaintSurcharge = "pearlescent_1"
	SurchargePearlescent2 PaintSurcharge = "pearlescent_2"
)

// PaintRates is the paint sub-schedule: per-panel rates plus named surcharges.
type PaintRates struct {
	Warranty          decimal.Decimal `json:"warranty" validate:"gte=0"`
	NonWarranty       decimal.Decimal `json:"non_warranty" validate:"gte=0"`
	Blending          decimal.Decimal `json:"blending" validate:"gte=0"`
	SmallPanel        decimal.Decimal `json:"small_panel" validate:"gte=0"`
	SmallRepair       decimal.Decimal `json:"small_repair" validate:"gte=0"`
	WaterBased        decimal.Decimal `json:"water_based" validate:"gte=0"`
	PearlescentGrade1 decimal.Decimal `json:"pearlescent_1" validate:"gte=0"`
	PearlescentGrade2 decimal.Decimal `json:"pearlescent_2" validate:"gte=0"`
}

// PartSource is where a part comes from; each source carries its own markup percentage.
type PartSource string

const (
	SourceNewOEM             PartSource = "new_oem"
	SourceAltManufacturer    PartSource = "alt_manufacturer"
	SourceAltNonManufacturer PartSource = "alt_non_manufacturer"
	SourceUsed               PartSource = "used"
	SourceAftermarket        PartSource = "aftermarket"
)

// PartRates holds percentages by source and optional in-stock discount factors (0..1).
type PartRates struct {
	NewOEMPercent                   decimal.Decimal     `json:"new_oem_percent"`
	AltManufacturerPercent          decimal.Decimal     `json:"alt_manufacturer_percent"`
	AltNonManufacturerPercent       decimal.Decimal     `json:"alt_non_manufacturer_percent"`
	UsedPercent                     decimal.Decimal     `json:"used_percent"`
	AftermarketPercent              decimal.Decimal     `json:"aftermarket_percent"`
	NewOEMInStockFactor             decimal.NullDecimal `json:"new_oem_in_stock_factor" validate:"omitempty,gte=0,lte=1"`
	AltManufacturerInStockFactor    decimal.NullDecimal `json:"alt_manufacturer_in_stock_factor" validate:"omitempty,gte=0,lte=1"`
	AltNonManufacturerInStockFactor decimal.NullDecimal `json:"alt_non_manufacturer_in_stock_factor" validate:"omitempty,gte=0,lte=1"`
	UsedInStockFactor               decimal.NullDecimal `json:"used_in_stock_factor" validate:"omitempty,gte=0,lte=1"`
	AftermarketInStockFactor        decimal.NullDecimal `json:"aftermarket_in_stock_factor" validate:"omitempty,gte=0,lte=1"`
}

// TowingRates is the towing and storage sub-schedule.
type TowingRates struct {
	StoragePerDay decimal.Decimal `json:"storage_per_day" validate:"gte=0"`
	FirstKmFree   decimal.Decimal `json:"first_km_free" validate:"gte=0"`
	PerKmRate     decimal.Decimal `json:"per_km_rate" validate:"gte=0"`
}

// OutworkType is an outwork sub-type.
type OutworkType string

const (
	OutworkWheelAlignment OutworkType = "wheel_alignment"
	OutworkAirCon         OutworkType = "air_con"
	OutworkDiagnostics    OutworkType = "diagnostics"
	OutworkElectrical     OutworkType = "electrical"
	OutworkMechanical     OutworkType = "mechanical"
	OutworkJigHire        OutworkType = "jig_hire"
	OutworkGlass          OutworkType = "glass"
	OutworkUpholstery     OutworkType = "upholstery"
	OutworkOther          OutworkType = "other"
)

// OutworkRule configures one sub-type with either a percentage cap or a fixed-minutes allowance.
type OutworkRule struct {
	Type         OutworkType         `json:"type" validate:"required,max=40"`
	CapPercent   decimal.NullDecimal `json:"cap_percent,omitempty" validate:"omitempty,gte=0"`
	FixedMinutes *int                `json:"fixed_minutes,omitempty" validate:"omitempty,gte=0"`
}

// SundriesRates bills consumables as a percentage of parts, optionally capped.
type SundriesRates struct {
	Percent decimal.Decimal     `json:"percent" validate:"gte=0"`
	Cap     decimal.NullDecimal `json:"cap,omitempty" validate:"omitempty,gte=0"`
}

// Schedule is an insurer's SLA rate schedule for [EffectiveFrom, EffectiveTo).
// A nil EffectiveTo leaves the schedule open-ended.
type Schedule struct {
	ID            int64         `json:"id"`
	TenantID      int64         `json:"tenant_id"`
	InsurerID     int64         `json:"insurer_id"`
	Name          string        `json:"name"`
	EffectiveFrom time.Time     `json:"effective_from"`
	EffectiveTo   *time.Time    `json:"effective_to,omitempty"`
	Labour        LabourRates   `json:"labour"`
	Paint         PaintRates    `json:"paint"`
	Parts         PartRates     `json:"parts"`
	Towing        TowingRates   `json:"towing"`
	Outwork       []OutworkRule `json:"outwork"`
	Sundries      SundriesRates `json:"sundries"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// InsurerRef identifies an insurer within a tenant.
type InsurerRef struct {
	TenantID  int64 `json:"tenant_id"`
	InsurerID int64 `json:"insurer_id"`
}
