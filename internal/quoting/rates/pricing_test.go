package rates

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/bodyshop/internal/shared"
)

func TestPartPriceInStockFactor(t *testing.T) {
	s := sampleSchedule(1, date(2023, 1, 1), nil)

	pct, err := s.EffectivePartPercent(SourceNewOEM, true)
	require.NoError(t, err)
	assert.True(t, pct.Equal(dec("10")), "got %s", pct)

	price, err := s.PartPrice(dec("1000"), SourceNewOEM, true)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("1100")), "got %s", price)
}

func TestPartPriceWithoutFactor(t *testing.T) {
	s := sampleSchedule(1, date(2023, 1, 1), nil)

	price, err := s.PartPrice(dec("1000"), SourceNewOEM, false)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("1200")), "got %s", price)

	// used parts have no in-stock factor configured
	price, err = s.PartPrice(dec("1000"), SourceUsed, true)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("1250")), "got %s", price)

	price, err = s.PartPrice(dec("1000"), SourceAftermarket, true)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("1000")), "got %s", price)
}

func TestPartPriceRejectsUnknownSourceAndNegativePrice(t *testing.T) {
	s := sampleSchedule(1, date(2023, 1, 1), nil)

	_, err := s.PartPrice(dec("10"), PartSource("salvage"), false)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = s.PartPrice(dec("-1"), SourceNewOEM, false)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestOutworkAllowance(t *testing.T) {
	s := sampleSchedule(1, date(2023, 1, 1), nil)

	a, err := s.OutworkAllowance(OutworkWheelAlignment)
	require.NoError(t, err)
	assert.Equal(t, AllowancePercentCap, a.Kind)
	assert.True(t, a.Cap(dec("500"), dec("2000")).Equal(dec("200")))
	assert.True(t, a.Cap(dec("150"), dec("2000")).Equal(dec("150")))

	a, err = s.OutworkAllowance(OutworkJigHire)
	require.NoError(t, err)
	assert.Equal(t, AllowanceFixedMinutes, a.Kind)
	assert.Equal(t, 90, a.FixedMinutes)
	assert.True(t, a.Cap(dec("500"), dec("10")).Equal(dec("500")))

	_, err = s.OutworkAllowance(OutworkGlass)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTowingCost(t *testing.T) {
	s := sampleSchedule(1, date(2023, 1, 1), nil)

	cases := []struct {
		name string
		days int
		km   string
		want string
	}{
		{"within free km", 0, "30", "0"},
		{"storage only", 3, "50", "255"},
		{"chargeable km", 2, "90", "670"},
		{"negative days treated as zero", -1, "60", "125"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.TowingCost(tc.days, dec(tc.km))
			assert.True(t, got.Equal(dec(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestSundries(t *testing.T) {
	s := sampleSchedule(1, date(2023, 1, 1), nil)
	assert.True(t, s.SundriesAmount(dec("2000")).Equal(dec("100")))
	assert.True(t, s.SundriesAmount(dec("10000")).Equal(dec("250")))

	s.Sundries.Cap = decimal.NullDecimal{}
	assert.True(t, s.SundriesAmount(dec("10000")).Equal(dec("500")))
}

func TestLabourAndPaintRates(t *testing.T) {
	s := sampleSchedule(1, date(2023, 1, 1), nil)
	assert.True(t, s.LabourRate(true).Equal(dec("420")))
	assert.True(t, s.LabourRate(false).Equal(dec("380")))
	assert.True(t, s.PaintRate(true).Equal(dec("510")))
	assert.True(t, s.PaintRate(false).Equal(dec("470")))

	blending, err := s.Paint.Surcharge(SurchargeBlending)
	require.NoError(t, err)
	assert.True(t, blending.Equal(dec("150")))

	_, err = s.Paint.Surcharge(PaintSurcharge("chrome"))
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}
