package items

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/bodyshop/internal/quoting/shared"
)

var hundred = decimal.NewFromInt(100)

// RawSum is the sum of the six per-unit cost components.
func RawSum(item QuoteItem) decimal.Decimal {
	sum := decimal.Zero
	for _, c := range Categories() {
		sum = sum.Add(item.Component(c))
	}
	return sum
}

// LineTotal is RawSum multiplied by quantity. Markup and betterment are not applied.
func LineTotal(item QuoteItem) decimal.Decimal {
	return RawSum(item).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Price returns item with LineTotal refreshed from its components.
func Price(item QuoteItem) QuoteItem {
	item.LineTotal = LineTotal(item)
	return item
}

// Adjustment holds the informational markup and betterment amounts shown to the estimator.
// They are never folded into LineTotal or quotation totals.
type Adjustment struct {
	Markup     decimal.Decimal `json:"markup"`
	Betterment decimal.Decimal `json:"betterment"`
}

// Adjustments derives the markup and betterment amounts from the line total.
func Adjustments(item QuoteItem) Adjustment {
	total := LineTotal(item)
	return Adjustment{
		Markup:     total.Mul(item.MarkupPercent).Div(hundred),
		Betterment: total.Mul(item.BettermentPercent).Div(hundred),
	}
}

// Coerce clamps an item to the accepted boundary: quantity at least 1 and no negative
// cost component. Used where raw form input is accepted; engine mutations use Validate.
func Coerce(item QuoteItem) QuoteItem {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.PartCost = nonNegative(item.PartCost)
	item.LabourCost = nonNegative(item.LabourCost)
	item.PaintCost = nonNegative(item.PaintCost)
	item.StripCost = nonNegative(item.StripCost)
	item.FrameCost = nonNegative(item.FrameCost)
	item.InhouseOutworkCost = nonNegative(item.InhouseOutworkCost)
	return Price(item)
}

// Validate rejects items that violate the boundary rules.
func Validate(item QuoteItem) error {
	return shared.ValidateStruct(item)
}

// New builds a priced item from the quick-add field set with a fresh ID.
func New(q QuickItem) QuoteItem {
	return Price(QuoteItem{
		ID:                 NewID(),
		Operation:          q.Operation,
		Description:        q.Description,
		MarkupPercent:      q.MarkupPercent,
		BettermentPercent:  q.BettermentPercent,
		Quantity:           q.Quantity,
		PartCost:           q.PartCost,
		LabourCost:         q.LabourCost,
		PaintCost:          q.PaintCost,
		StripCost:          q.StripCost,
		FrameCost:          q.FrameCost,
		InhouseOutworkCost: q.InhouseOutworkCost,
	})
}

// NewID generates an opaque item identifier.
func NewID() string {
	return uuid.NewString()
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
