package catalog

import (
	"time"

	"github.com/odyssey-erp/bodyshop/internal/quoting/items"
)

// PartDescription is a reusable part name offered when keying part lines.
type PartDescription struct {
	ID          int64           `json:"id"`
	TenantID    int64           `json:"-"`
	Description string          `json:"description"`
	Operation   items.Operation `json:"operation"`
	SortOrder   int             `json:"sort_order"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CreatePartDescriptionRequest struct {
	Description string          `json:"description" validate:"required,max=500"`
	Operation   items.Operation `json:"operation" validate:"omitempty,oneof=labour paint strip frame part outwork other"`
	SortOrder   int             `json:"sort_order" validate:"gte=0"`
}
