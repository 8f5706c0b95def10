package quotations

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/bodyshop/internal/quoting/items"
	"github.com/odyssey-erp/bodyshop/internal/quoting/rates"
	"github.com/odyssey-erp/bodyshop/internal/quoting/totals"
)

type CreateQuotationRequest struct {
	JobID     int64       `json:"job_id" validate:"required,gt=0"`
	InsurerID *int64      `json:"insurer_id,omitempty" validate:"omitempty,gt=0"`
	QuoteType QuoteType   `json:"quote_type" validate:"required,oneof=money time"`
	Warranty  bool        `json:"warranty"`
	Options   Options     `json:"options"`
	Items     []ItemInput `json:"items"`
}

// ItemInput is a line as submitted by a client. LineTotal is never accepted; it is derived.
type ItemInput struct {
	ID                 string          `json:"id,omitempty"`
	Operation          items.Operation `json:"operation"`
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

// Item maps the input to a priced QuoteItem, clamping quantity and negative costs the way
// the estimator form does.
func (in ItemInput) Item() items.QuoteItem {
	return items.Coerce(items.QuoteItem{
		ID:                 in.ID,
		Operation:          in.Operation,
		Description:        in.Description,
		MarkupPercent:      in.MarkupPercent,
		BettermentPercent:  in.BettermentPercent,
		Quantity:           in.Quantity,
		PartCost:           in.PartCost,
		LabourCost:         in.LabourCost,
		PaintCost:          in.PaintCost,
		StripCost:          in.StripCost,
		FrameCost:          in.FrameCost,
		InhouseOutworkCost: in.InhouseOutworkCost,
	})
}

// ItemsFromInput maps inputs in order, assigning IDs to new lines.
func ItemsFromInput(in []ItemInput) []items.QuoteItem {
	out := make([]items.QuoteItem, 0, len(in))
	for _, it := range in {
		item := it.Item()
		if item.ID == "" {
			item.ID = items.NewID()
		}
		out = append(out, item)
	}
	return items.Renumber(out)
}

type ListQuotationsRequest struct {
	Status    *Status `json:"status,omitempty" validate:"omitempty,oneof=draft sent approved rejected"`
	JobID     *int64  `json:"job_id,omitempty"`
	InsurerID *int64  `json:"insurer_id,omitempty"`
	Limit     int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset    int     `json:"offset" validate:"gte=0"`
}

type SaveRequest struct {
	Items []ItemInput `json:"items"`
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// EditKind names an Editor operation.
type EditKind string

const (
	EditAdd       EditKind = "add"
	EditUpdate    EditKind = "update"
	EditDelete    EditKind = "delete"
	EditDuplicate EditKind = "duplicate"
	EditQuickAdd  EditKind = "quick_add"
)

// EditOp is one editing step. After is the insert-after index for add (nil appends); Index
// targets update, delete and duplicate.
type EditOp struct {
	Kind  EditKind         `json:"kind" validate:"required,oneof=add update delete duplicate quick_add"`
	After *int             `json:"after_index,omitempty"`
	Index int              `json:"index"`
	Item  *ItemInput       `json:"item,omitempty"`
	Quick *items.QuickItem `json:"quick,omitempty"`
}

type EditRequest struct {
	Ops []EditOp `json:"ops" validate:"required,min=1,dive"`
}

// SLAPartRequest adds a part line priced from the insurer's schedule.
type SLAPartRequest struct {
	Description  string           `json:"description" validate:"required,max=500"`
	CatalogPrice decimal.Decimal  `json:"catalog_price" validate:"gte=0"`
	Source       rates.PartSource `json:"source" validate:"required"`
	InStock      bool             `json:"in_stock"`
	Quantity     int              `json:"quantity" validate:"gte=0"`
	LabourCost   decimal.Decimal  `json:"labour_cost" validate:"gte=0"`
	PaintCost    decimal.Decimal  `json:"paint_cost" validate:"gte=0"`
}

type PreviewRequest struct {
	Items []ItemInput `json:"items"`
}

type Preview struct {
	Items  []items.QuoteItem `json:"items"`
	Totals totals.Totals     `json:"totals"`
}

// LineAdjustment reports the informational markup and betterment of one line.
type LineAdjustment struct {
	ItemID     string          `json:"item_id"`
	Markup     decimal.Decimal `json:"markup"`
	Betterment decimal.Decimal `json:"betterment"`
}

// Summary is the priced view of a quotation.
type Summary struct {
	QuotationID    int64             `json:"quotation_id"`
	QuoteNumber    string            `json:"quote_number"`
	Status         Status            `json:"status"`
	QuoteType      QuoteType         `json:"quote_type"`
	VersionNumber  int               `json:"version_number"`
	ScheduleID     *int64            `json:"schedule_id,omitempty"`
	Totals         totals.Totals     `json:"totals"`
	CurrencyTotals totals.Totals     `json:"currency_totals"`
	Sundries       *decimal.Decimal  `json:"sundries,omitempty"`
	Formatted      map[string]string `json:"formatted"`
	Adjustments    []LineAdjustment  `json:"adjustments"`
	Triggers       []Trigger         `json:"allowed_triggers"`
}
