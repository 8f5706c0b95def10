package totals

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/odyssey-erp/bodyshop/internal/quoting/items"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeEmptyList(t *testing.T) {
	for _, list := range [][]items.QuoteItem{nil, {}} {
		got := Compute(list)
		for _, c := range items.Categories() {
			assert.True(t, got.Subtotal(c).IsZero(), "category %s", c)
		}
		assert.True(t, got.GrandTotal.IsZero())
	}
}

func TestComputeCategorySubtotals(t *testing.T) {
	list := []items.QuoteItem{
		{Quantity: 2, PartCost: d("100"), LabourCost: d("50")},
		{Quantity: 1, PaintCost: d("320.40"), StripCost: d("80"), FrameCost: d("15.5")},
		{Quantity: 3, InhouseOutworkCost: d("10"), LabourCost: d("1.25")},
	}
	got := Compute(list)
	assert.True(t, got.Parts.Equal(d("200")))
	assert.True(t, got.Labour.Equal(d("103.75")))
	assert.True(t, got.Paint.Equal(d("320.40")))
	assert.True(t, got.Strip.Equal(d("80")))
	assert.True(t, got.Frame.Equal(d("15.5")))
	assert.True(t, got.Outwork.Equal(d("30")))
	assert.True(t, got.GrandTotal.Equal(d("749.65")), "got %s", got.GrandTotal)
}

func TestComputeGrandTotalMatchesLineTotals(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	list := make([]items.QuoteItem, 0, 200)
	for i := 0; i < 200; i++ {
		list = append(list, items.QuoteItem{
			Quantity:           1 + rng.Intn(4),
			PartCost:           decimal.New(int64(rng.Intn(100000)), -2),
			LabourCost:         decimal.New(int64(rng.Intn(100000)), -2),
			PaintCost:          decimal.New(int64(rng.Intn(100000)), -2),
			StripCost:          decimal.New(int64(rng.Intn(1000)), -2),
			FrameCost:          decimal.New(int64(rng.Intn(1000)), -2),
			InhouseOutworkCost: decimal.New(int64(rng.Intn(1000)), -2),
		})
	}
	got := Compute(list)

	lineSum := decimal.Zero
	for _, item := range list {
		lineSum = lineSum.Add(items.LineTotal(item))
	}
	assert.True(t, got.GrandTotal.Equal(lineSum))
	for _, c := range items.Categories() {
		assert.False(t, got.Subtotal(c).IsNegative(), "category %s", c)
	}
}

func TestComputeIgnoresMarkupAndBetterment(t *testing.T) {
	base := []items.QuoteItem{{Quantity: 1, PartCost: d("500")}}
	adjusted := []items.QuoteItem{{Quantity: 1, PartCost: d("500"), MarkupPercent: d("30"), BettermentPercent: d("20")}}
	assert.True(t, Compute(base).GrandTotal.Equal(Compute(adjusted).GrandTotal))
}

func TestToCurrencyConvertsTimeCategories(t *testing.T) {
	list := []items.QuoteItem{{Quantity: 1, LabourCost: d("2.5"), PaintCost: d("4"), PartCost: d("1000")}}
	got := Compute(list).ToCurrency(d("420"), d("380"))
	assert.True(t, got.Labour.Equal(d("1050")))
	assert.True(t, got.Paint.Equal(d("1520")))
	assert.True(t, got.Parts.Equal(d("1000")))
	assert.True(t, got.GrandTotal.Equal(d("3570")))
}
