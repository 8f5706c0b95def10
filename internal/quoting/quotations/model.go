package quotations

import (
	"time"

	"github.com/odyssey-erp/bodyshop/internal/quoting/items"
	"github.com/odyssey-erp/bodyshop/internal/quoting/totals"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// QuoteType says whether labour and paint lines are held in money or in time units.
type QuoteType string

const (
	QuoteTypeMoney QuoteType = "money"
	QuoteTypeTime  QuoteType = "time"
)

// Options are quotation flags. They are metadata only and never change any amount.
type Options struct {
	WasteDisposal bool `json:"waste_disposal"`
	Covid19       bool `json:"covid19"`
	WriteOff      bool `json:"write_off"`
	OnSite        bool `json:"on_site"`
	Polish        bool `json:"polish"`
	AgreedOnly    bool `json:"agreed_only"`
	Authorized    bool `json:"authorized"`
}

type Quotation struct {
	ID              int64             `json:"id"`
	QuoteNumber     string            `json:"quote_number"`
	TenantID        int64             `json:"tenant_id"`
	OrganizationID  int64             `json:"organization_id"`
	JobID           int64             `json:"job_id"`
	InsurerID       *int64            `json:"insurer_id,omitempty"`
	Status          Status            `json:"status"`
	VersionNumber   int               `json:"version_number"`
	QuoteType       QuoteType         `json:"quote_type"`
	Warranty        bool              `json:"warranty"`
	Options         Options           `json:"options"`
	Items           []items.QuoteItem `json:"items"`
	Totals          totals.Totals     `json:"totals"`
	RejectionReason *string           `json:"rejection_reason,omitempty"`
	CreatedBy       int64             `json:"created_by"`
	SentAt          *time.Time        `json:"sent_at,omitempty"`
	DecidedAt       *time.Time        `json:"decided_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Editable reports whether items and options may still change.
func (q Quotation) Editable() bool {
	return q.Status == StatusDraft
}

// Version is the snapshot written by each successful save.
type Version struct {
	QuotationID   int64             `json:"quotation_id"`
	VersionNumber int               `json:"version_number"`
	Items         []items.QuoteItem `json:"items"`
	Totals        totals.Totals     `json:"totals"`
	SavedBy       int64             `json:"saved_by"`
	SavedAt       time.Time         `json:"saved_at"`
}

// VersionInfo is a version without its item snapshot, for listings.
type VersionInfo struct {
	VersionNumber int           `json:"version_number"`
	ItemCount     int           `json:"item_count"`
	Totals        totals.Totals `json:"totals"`
	SavedBy       int64         `json:"saved_by"`
	SavedAt       time.Time     `json:"saved_at"`
}
