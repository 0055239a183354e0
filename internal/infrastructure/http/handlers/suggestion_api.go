package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/ports/inbound"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

// SuggestionHandlers handles one-shot AI suggestion requests
type SuggestionHandlers struct {
	responder
	suggestions inbound.SuggestionService
}

// NewSuggestionHandlers creates suggestion handlers
func NewSuggestionHandlers(suggestions inbound.SuggestionService, validator Validator, logger *zap.Logger) *SuggestionHandlers {
	return &SuggestionHandlers{
		responder:   responder{logger: logger, validator: validator},
		suggestions: suggestions,
	}
}

// IngredientsRequest asks for meal ideas from what is at hand
type IngredientsRequest struct {
	Ingredients []string `json:"ingredients" validate:"max=50,dive,max=100"`
	ProfileID   string   `json:"profileId"`
}

// MealIdeas is the text answer to an ingredients request. Fallback is set
// when Text is a canned message rather than model output.
type MealIdeas struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// ProteinSources handles GET /api/v1/suggestions/protein?profileId=
func (h *SuggestionHandlers) ProteinSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.suggestions.ProteinSources(r.Context(), r.URL.Query().Get("profileId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, sources, "")
}

// BabyFood handles GET /api/v1/suggestions/baby-food?ageMonths=
func (h *SuggestionHandlers) BabyFood(w http.ResponseWriter, r *http.Request) {
	ageMonths, err := strconv.Atoi(r.URL.Query().Get("ageMonths"))
	if err != nil {
		h.fail(w, r, apperrors.NewValidationError("ageMonths must be a whole number of months"))
		return
	}

	suggestion, err := h.suggestions.BabyFood(r.Context(), ageMonths)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, suggestion, "")
}

// MealIdeas handles POST /api/v1/suggestions/ingredients. The answer is
// always displayable, so model failures still return 200 with fallback text.
func (h *SuggestionHandlers) MealIdeas(w http.ResponseWriter, r *http.Request) {
	var req IngredientsRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	text, err := h.suggestions.MealIdeas(r.Context(), req.Ingredients, req.ProfileID)
	if err != nil {
		if text == "" {
			h.fail(w, r, err)
			return
		}
		h.logger.Warn("Meal ideas answered with fallback text", zap.Error(err))
		h.ok(w, http.StatusOK, MealIdeas{Text: text, Fallback: true}, apperrors.Wrap(err, "").Message)
		return
	}
	h.ok(w, http.StatusOK, MealIdeas{Text: text}, "")
}
