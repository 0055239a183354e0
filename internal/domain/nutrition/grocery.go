package nutrition

import (
	"strings"

	"github.com/google/uuid"
)

// Grocery categories assigned by the two ways items enter the list
const (
	CategoryUncategorized = "Uncategorized"
	CategoryManual        = "Manual"
)

// DefaultQuantity is used when no quantity could be determined
const DefaultQuantity = "1 unit"

// GroceryItem is one entry of the shopping list.
// Quantity is free text and best effort.
type GroceryItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category,omitempty"`
	Checked  bool   `json:"checked"`
}

// NewManualGroceryItem builds an item entered by hand
func NewManualGroceryItem(name, quantity string) (GroceryItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return GroceryItem{}, ErrEmptyGroceryName
	}

	quantity = strings.TrimSpace(quantity)
	if quantity == "" {
		quantity = DefaultQuantity
	}

	return GroceryItem{
		ID:       uuid.NewString(),
		Name:     name,
		Quantity: quantity,
		Category: CategoryManual,
	}, nil
}

// ToggleGroceryItem flips the checked flag of the item with the given id
func ToggleGroceryItem(items []GroceryItem, id string) ([]GroceryItem, error) {
	for i := range items {
		if items[i].ID == id {
			items[i].Checked = !items[i].Checked
			return items, nil
		}
	}
	return items, ErrGroceryItemNotFound
}

// RemoveGroceryItem drops the item with the given id
func RemoveGroceryItem(items []GroceryItem, id string) ([]GroceryItem, error) {
	for i := range items {
		if items[i].ID == id {
			return append(items[:i:i], items[i+1:]...), nil
		}
	}
	return items, ErrGroceryItemNotFound
}
