package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/ports/inbound"
)

// GroceryHandlers handles shopping list requests
type GroceryHandlers struct {
	responder
	grocery inbound.GroceryService
}

// NewGroceryHandlers creates grocery handlers
func NewGroceryHandlers(grocery inbound.GroceryService, validator Validator, logger *zap.Logger) *GroceryHandlers {
	return &GroceryHandlers{
		responder: responder{logger: logger, validator: validator},
		grocery:   grocery,
	}
}

// AddItemRequest adds a manual item. A blank quantity becomes "1 unit".
type AddItemRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Quantity string `json:"quantity" validate:"max=100"`
}

// List handles GET /api/v1/grocery
func (h *GroceryHandlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.grocery.ListItems(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, items, "")
}

// Add handles POST /api/v1/grocery
func (h *GroceryHandlers) Add(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	item, err := h.grocery.AddItem(r.Context(), req.Name, req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, item, "Grocery item added")
}

// Toggle handles PATCH /api/v1/grocery/{id}/toggle
func (h *GroceryHandlers) Toggle(w http.ResponseWriter, r *http.Request) {
	item, err := h.grocery.ToggleItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, item, "")
}

// Remove handles DELETE /api/v1/grocery/{id}
func (h *GroceryHandlers) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.grocery.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, nil, "Grocery item removed")
}

// Clear handles DELETE /api/v1/grocery
func (h *GroceryHandlers) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.grocery.Clear(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, nil, "Grocery list cleared")
}
