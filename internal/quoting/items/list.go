package items

import (
	"fmt"

	internalShared "github.com/odyssey-erp/bodyshop/internal/shared"
)

// The list operations never modify their input slice. Each returns a new, densely
// renumbered and repriced list, or an error with the input left as it was.

// InsertAfter inserts item at position index+1. index -1 inserts at the front.
func InsertAfter(list []QuoteItem, index int, item QuoteItem) ([]QuoteItem, error) {
	if index < -1 || index >= len(list) {
		return nil, indexError("after_index", index, len(list))
	}
	if item.ID == "" {
		item.ID = NewID()
	}
	if err := Validate(item); err != nil {
		return nil, err
	}
	if indexOfID(list, item.ID) >= 0 {
		return nil, duplicateIDError(item.ID)
	}
	out := make([]QuoteItem, 0, len(list)+1)
	out = append(out, list[:index+1]...)
	out = append(out, item)
	out = append(out, list[index+1:]...)
	return Renumber(out), nil
}

// Append adds item at the end of the list.
func Append(list []QuoteItem, item QuoteItem) ([]QuoteItem, error) {
	return InsertAfter(list, len(list)-1, item)
}

// Duplicate copies the item at index under a fresh ID and places the copy right after it.
func Duplicate(list []QuoteItem, index int) ([]QuoteItem, error) {
	if index < 0 || index >= len(list) {
		return nil, indexError("index", index, len(list))
	}
	dup := list[index]
	dup.ID = NewID()
	return InsertAfter(list, index, dup)
}

// QuickAdd builds an item from the minimal field set and appends it.
func QuickAdd(list []QuoteItem, q QuickItem) ([]QuoteItem, error) {
	return Append(list, New(q))
}

// Replace swaps the item at index for item, keeping the existing ID.
func Replace(list []QuoteItem, index int, item QuoteItem) ([]QuoteItem, error) {
	if index < 0 || index >= len(list) {
		return nil, indexError("index", index, len(list))
	}
	item.ID = list[index].ID
	if err := Validate(item); err != nil {
		return nil, err
	}
	out := Clone(list)
	out[index] = item
	return Renumber(out), nil
}

// Remove deletes the item at index.
func Remove(list []QuoteItem, index int) ([]QuoteItem, error) {
	if index < 0 || index >= len(list) {
		return nil, indexError("index", index, len(list))
	}
	out := make([]QuoteItem, 0, len(list)-1)
	out = append(out, list[:index]...)
	out = append(out, list[index+1:]...)
	return Renumber(out), nil
}

// Renumber assigns sequence numbers 1..n in slice order and refreshes every line total.
// It mutates and returns list.
func Renumber(list []QuoteItem) []QuoteItem {
	for i := range list {
		list[i].SequenceNumber = i + 1
		list[i] = Price(list[i])
	}
	return list
}

// Clone returns a shallow copy of list; QuoteItem holds no shared mutable state.
func Clone(list []QuoteItem) []QuoteItem {
	if list == nil {
		return []QuoteItem{}
	}
	out := make([]QuoteItem, len(list))
	copy(out, list)
	return out
}

// ValidateAll checks every item and reports the first failure with its position. IDs must be
// unique within the list.
func ValidateAll(list []QuoteItem) error {
	seen := make(map[string]struct{}, len(list))
	for i, item := range list {
		if err := Validate(item); err != nil {
			return fmt.Errorf("item %d: %w", i+1, err)
		}
		if item.ID == "" {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("item %d: %w", i+1, duplicateIDError(item.ID))
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

func indexOfID(list []QuoteItem, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func duplicateIDError(id string) error {
	return internalShared.NewValidationError("id", fmt.Sprintf("%s is already on the quotation", id))
}

func indexError(field string, index, n int) error {
	return internalShared.NewValidationError(field, fmt.Sprintf("index %d out of range for %d items", index, n))
}
