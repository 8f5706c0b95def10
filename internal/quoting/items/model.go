package items

import "github.com/shopspring/decimal"

// Operation tags a line for grouping and display colour; it has no effect on costing.
type Operation string

const (
	OperationLabour  Operation = "labour"
	OperationPaint   Operation = "paint"
	OperationStrip   Operation = "strip"
	OperationFrame   Operation = "frame"
	OperationPart    Operation = "part"
	OperationOutwork Operation = "outwork"
	OperationOther   Operation = "other"
)

// Option is a selectable value/label pair.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Operations lists the operations in display order.
func Operations() []Option {
	return []Option{
		{Value: string(OperationLabour), Label: "Labour"},
		{Value: string(OperationPaint), Label: "Paint"},
		{Value: string(OperationStrip), Label: "Strip & Fit"},
		{Value: string(OperationFrame), Label: "Frame"},
		{Value: string(OperationPart), Label: "Part"},
		{Value: string(OperationOutwork), Label: "Outwork"},
		{Value: string(OperationOther), Label: "Other"},
	}
}

// Category is one of the six cost buckets summed by the aggregator.
type Category string

const (
	CategoryParts   Category = "parts"
	CategoryLabour  Category = "labour"
	CategoryPaint   Category = "paint"
	CategoryStrip   Category = "strip"
	CategoryFrame   Category = "frame"
	CategoryOutwork Category = "outwork"
)

// Categories returns the cost categories in report order.
func Categories() []Category {
	return []Category{CategoryParts, CategoryLabour, CategoryPaint, CategoryStrip, CategoryFrame, CategoryOutwork}
}

// QuoteItem is one operation on a quotation. Cost components are per unit.
type QuoteItem struct {
	ID                 string          `json:"id" validate:"omitempty,uuid"`
	SequenceNumber     int             `json:"sequence_number"`
	Operation          Operation       `json:"operation" validate:"required,max=30"`
	Description        string          `json:"description" validate:"required,max=500"`
	MarkupPercent      decimal.Decimal `json:"markup_percent"`
	BettermentPercent  decimal.Decimal `json:"betterment_percent"`
	Quantity           int             `json:"quantity" validate:"gte=1"`
	PartCost           decimal.Decimal `json:"part_cost" validate:"gte=0"`
	LabourCost         decimal.Decimal `json:"labour_cost" validate:"gte=0"`
	PaintCost          decimal.Decimal `json:"paint_cost" validate:"gte=0"`
	StripCost          decimal.Decimal `json:"strip_cost" validate:"gte=0"`
	FrameCost          decimal.Decimal `json:"frame_cost" validate:"gte=0"`
	InhouseOutworkCost decimal.Decimal `json:"inhouse_outwork_cost" validate:"gte=0"`
	LineTotal          decimal.Decimal `json:"line_total"`
}

// Component returns the per-unit cost for category c.
func (i QuoteItem) Component(c Category) decimal.Decimal {
	switch c {
	case CategoryParts:
		return i.PartCost
	case CategoryLabour:
		return i.LabourCost
	case CategoryPaint:
		return i.PaintCost
	case CategoryStrip:
		return i.StripCost
	case CategoryFrame:
		return i.FrameCost
	case CategoryOutwork:
		return i.InhouseOutworkCost
	}
	return decimal.Zero
}

// QuickItem is the minimal field set accepted by QuickAdd.
type QuickItem struct {
	Operation          Operation       `json:"operation"`
	Description        string          `json:"description"`
	MarkupPercent      decimal.Decimal `json:"markup_percent"`
	BettermentPercent  decimal.Decimal `json:"betterment_percent"`
	Quantity           int             `json:"quantity"`
	PartCost           decimal.Decimal `json:"part_cost"`
	LabourCost         decimal.Decimal `json:"labour_cost"`
	PaintCost          decimal.Decimal `json:"paint_cost"`
	StripCost          decimal.Decimal `json:"strip_cost"`
	FrameCost          decimal.Decimal `json:"frame_cost"`
	InhouseOutworkCost decimal.Decimal `json:"inhouse_outwork_cost"`
}
