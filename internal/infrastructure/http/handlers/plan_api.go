package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/internal/ports/inbound"
)

// PlanHandlers handles weekly meal plan requests
type PlanHandlers struct {
	responder
	plans   inbound.PlanService
	grocery inbound.GroceryService
	metrics DomainMetrics
}

// NewPlanHandlers creates meal plan handlers
func NewPlanHandlers(plans inbound.PlanService, grocery inbound.GroceryService, validator Validator, metrics DomainMetrics, logger *zap.Logger) *PlanHandlers {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &PlanHandlers{
		responder: responder{logger: logger, validator: validator},
		plans:     plans,
		grocery:   grocery,
		metrics:   metrics,
	}
}

// GeneratePlanRequest asks for a new weekly plan. An empty profile id means
// the active profile; an empty mode means Balanced.
type GeneratePlanRequest struct {
	ProfileID string             `json:"profileId"`
	Mode      nutrition.PlanMode `json:"mode" validate:"omitempty,plan_mode"`
}

// Generate handles POST /api/v1/plans
func (h *PlanHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req GeneratePlanRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	plan, err := h.plans.GeneratePlan(r.Context(), req.ProfileID, req.Mode)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = nutrition.PlanModeBalanced
	}
	h.metrics.PlanGenerated(string(mode))
	h.ok(w, http.StatusCreated, plan, "Weekly plan generated")
}

// List handles GET /api/v1/plans
func (h *PlanHandlers) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.ListPlans(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, plans, "")
}

// Get handles GET /api/v1/plans/{userId}
func (h *PlanHandlers) Get(w http.ResponseWriter, r *http.Request) {
	plan, err := h.plans.GetPlan(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, plan, "")
}

// Delete handles DELETE /api/v1/plans/{userId}
func (h *PlanHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.plans.DeletePlan(r.Context(), chi.URLParam(r, "userId")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, nil, "Weekly plan deleted")
}

// GroceryList handles POST /api/v1/plans/{userId}/grocery. The extracted
// items replace the current shopping list.
func (h *PlanHandlers) GroceryList(w http.ResponseWriter, r *http.Request) {
	items, err := h.grocery.GenerateFromPlan(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.metrics.GroceryItemsExtracted(len(items))
	h.ok(w, http.StatusOK, items, "Grocery list generated from plan")
}
