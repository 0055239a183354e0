package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/internal/ports/inbound"
)

// ProfileHandlers handles dietary profile requests
type ProfileHandlers struct {
	responder
	profiles inbound.ProfileService
}

// NewProfileHandlers creates profile handlers
func NewProfileHandlers(profiles inbound.ProfileService, validator Validator, logger *zap.Logger) *ProfileHandlers {
	return &ProfileHandlers{
		responder: responder{logger: logger, validator: validator},
		profiles:  profiles,
	}
}

// SetActiveRequest selects the active profile
type SetActiveRequest struct {
	ProfileID string `json:"profileId" validate:"required"`
}

// List handles GET /api/v1/profiles
func (h *ProfileHandlers) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.ListProfiles(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, profiles, "")
}

// Create handles POST /api/v1/profiles
func (h *ProfileHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var profile nutrition.UserProfile
	if err := readJSON(r, &profile); err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.profiles.CreateProfile(r.Context(), profile)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusCreated, created, "Profile created")
}

// Get handles GET /api/v1/profiles/{id}
func (h *ProfileHandlers) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, profile, "")
}

// Update handles PUT /api/v1/profiles/{id}; the path id wins over the body
func (h *ProfileHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var profile nutrition.UserProfile
	if err := readJSON(r, &profile); err != nil {
		h.fail(w, r, err)
		return
	}
	profile.ID = chi.URLParam(r, "id")

	updated, err := h.profiles.UpdateProfile(r.Context(), profile)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, updated, "Profile updated")
}

// Delete handles DELETE /api/v1/profiles/{id}
func (h *ProfileHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.DeleteProfile(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, nil, "Profile deleted")
}

// Active handles GET /api/v1/profiles/active
func (h *ProfileHandlers) Active(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.ActiveProfile(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, profile, "")
}

// SetActive handles PUT /api/v1/profiles/active
func (h *ProfileHandlers) SetActive(w http.ResponseWriter, r *http.Request) {
	var req SetActiveRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.profiles.SetActiveProfile(r.Context(), req.ProfileID); err != nil {
		h.fail(w, r, err)
		return
	}

	profile, err := h.profiles.ActiveProfile(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, profile, "Active profile changed")
}
