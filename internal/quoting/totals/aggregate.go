// Package totals sums quotation items into category subtotals and a grand total.
package totals

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/bodyshop/internal/quoting/items"
)

// Totals holds the six category subtotals and their sum.
type Totals struct {
	Parts      decimal.Decimal `json:"parts"`
	Labour     decimal.Decimal `json:"labour"`
	Paint      decimal.Decimal `json:"paint"`
	Strip      decimal.Decimal `json:"strip"`
	Frame      decimal.Decimal `json:"frame"`
	Outwork    decimal.Decimal `json:"outwork"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// Zero returns totals with every figure explicitly zero.
func Zero() Totals {
	return Totals{
		Parts:      decimal.Zero,
		Labour:     decimal.Zero,
		Paint:      decimal.Zero,
		Strip:      decimal.Zero,
		Frame:      decimal.Zero,
		Outwork:    decimal.Zero,
		GrandTotal: decimal.Zero,
	}
}

// Compute recomputes every subtotal from scratch. It never fails; an empty list yields Zero.
func Compute(list []items.QuoteItem) Totals {
	t := Zero()
	for _, item := range list {
		qty := decimal.NewFromInt(int64(item.Quantity))
		for _, c := range items.Categories() {
			t.add(c, item.Component(c).Mul(qty))
		}
	}
	t.GrandTotal = t.sum()
	return t
}

// Subtotal returns the subtotal for category c.
func (t Totals) Subtotal(c items.Category) decimal.Decimal {
	switch c {
	case items.CategoryParts:
		return t.Parts
	case items.CategoryLabour:
		return t.Labour
	case items.CategoryPaint:
		return t.Paint
	case items.CategoryStrip:
		return t.Strip
	case items.CategoryFrame:
		return t.Frame
	case items.CategoryOutwork:
		return t.Outwork
	}
	return decimal.Zero
}

// ToCurrency converts labour and paint subtotals held in time units into money at the given
// rates. Other categories are already currency and pass through unchanged.
func (t Totals) ToCurrency(labourRate, paintRate decimal.Decimal) Totals {
	out := t
	out.Labour = t.Labour.Mul(labourRate)
	out.Paint = t.Paint.Mul(paintRate)
	out.GrandTotal = out.sum()
	return out
}

func (t *Totals) add(c items.Category, amount decimal.Decimal) {
	switch c {
	case items.CategoryParts:
		t.Parts = t.Parts.Add(amount)
	case items.CategoryLabour:
		t.Labour = t.Labour.Add(amount)
	case items.CategoryPaint:
		t.Paint = t.Paint.Add(amount)
	case items.CategoryStrip:
		t.Strip = t.Strip.Add(amount)
	case items.CategoryFrame:
		t.Frame = t.Frame.Add(amount)
	case items.CategoryOutwork:
		t.Outwork = t.Outwork.Add(amount)
	}
}

func (t Totals) sum() decimal.Decimal {
	return t.Parts.Add(t.Labour).Add(t.Paint).Add(t.Strip).Add(t.Frame).Add(t.Outwork)
}
