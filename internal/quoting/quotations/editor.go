package quotations

import (
	"fmt"

	"github.com/odyssey-erp/bodyshop/internal/quoting/items"
	"github.com/odyssey-erp/bodyshop/internal/quoting/totals"
	"github.com/odyssey-erp/bodyshop/internal/shared"
)

// Editor is an in-memory editing session over a quotation's items. Every mutation validates
// first, applies all-or-nothing and recomputes totals before returning. It is not safe for
// concurrent use.
type Editor struct {
	quotation Quotation
	items     []items.QuoteItem
	totals    totals.Totals
}

// NewEditor opens a session over a copy of q's items.
func NewEditor(q Quotation) *Editor {
	list := items.Renumber(items.Clone(q.Items))
	return &Editor{quotation: q, items: list, totals: totals.Compute(list)}
}

// Items returns a copy of the current items.
func (e *Editor) Items() []items.QuoteItem {
	return items.Clone(e.items)
}

// Totals returns the totals of the current items.
func (e *Editor) Totals() totals.Totals {
	return e.totals
}

// Len returns the number of items.
func (e *Editor) Len() int {
	return len(e.items)
}

// Quotation returns the quotation with the session's items and totals.
func (e *Editor) Quotation() Quotation {
	q := e.quotation
	q.Items = e.Items()
	q.Totals = e.totals
	return q
}

// Add inserts item after the given index, or appends when after is nil. An after of -1 inserts
// at the front.
func (e *Editor) Add(after *int, item items.QuoteItem) error {
	return e.apply(func(list []items.QuoteItem) ([]items.QuoteItem, error) {
		if after == nil {
			return items.Append(list, item)
		}
		return items.InsertAfter(list, *after, item)
	})
}

// Update replaces the item at index, keeping its ID.
func (e *Editor) Update(index int, item items.QuoteItem) error {
	return e.apply(func(list []items.QuoteItem) ([]items.QuoteItem, error) {
		return items.Replace(list, index, item)
	})
}

// Delete removes the item at index.
func (e *Editor) Delete(index int) error {
	return e.apply(func(list []items.QuoteItem) ([]items.QuoteItem, error) {
		return items.Remove(list, index)
	})
}

// Duplicate copies the item at index to index+1 with a new ID.
func (e *Editor) Duplicate(index int) error {
	return e.apply(func(list []items.QuoteItem) ([]items.QuoteItem, error) {
		return items.Duplicate(list, index)
	})
}

// QuickAdd appends an item built from the minimal field set.
func (e *Editor) QuickAdd(q items.QuickItem) error {
	return e.apply(func(list []items.QuoteItem) ([]items.QuoteItem, error) {
		return items.QuickAdd(list, q)
	})
}

func (e *Editor) apply(fn func([]items.QuoteItem) ([]items.QuoteItem, error)) error {
	if !e.quotation.Editable() {
		return fmt.Errorf("quotation %s is %s: %w", e.quotation.QuoteNumber, e.quotation.Status, shared.ErrInvalidStatus)
	}
	next, err := fn(e.items)
	if err != nil {
		return err
	}
	e.items = next
	e.totals = totals.Compute(next)
	return nil
}
