package rates

import (
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func minutes(n int) *int {
	return &n
}

func sampleSchedule(id int64, from time.Time, to *time.Time) Schedule {
	return Schedule{
		ID:            id,
		TenantID:      1,
		InsurerID:     42,
		Name:          "schedule",
		EffectiveFrom: from,
		EffectiveTo:   to,
		Labour:        LabourRates{Warranty: dec("420"), NonWarranty: dec("380"), RateType: RateTypeTime},
		Paint:         PaintRates{Warranty: dec("510"), NonWarranty: dec("470"), Blending: dec("150")},
		Parts: PartRates{
			NewOEMPercent:       dec("20"),
			NewOEMInStockFactor: decimal.NewNullDecimal(dec("0.5")),
			UsedPercent:         dec("25"),
		},
		Towing: TowingRates{StoragePerDay: dec("85"), FirstKmFree: dec("50"), PerKmRate: dec("12.5")},
		Outwork: []OutworkRule{
			{Type: OutworkWheelAlignment, CapPercent: decimal.NewNullDecimal(dec("10"))},
			{Type: OutworkJigHire, FixedMinutes: minutes(90)},
		},
		Sundries: SundriesRates{Percent: dec("5"), Cap: decimal.NewNullDecimal(dec("250"))},
	}
}
