package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/internal/ports/inbound"
)

// ProgressHandlers handles body metric history requests
type ProgressHandlers struct {
	responder
	progress inbound.ProgressService
	metrics  DomainMetrics
}

// NewProgressHandlers creates progress handlers. Entries are validated by
// the progress service, so no request validator is needed.
func NewProgressHandlers(progress inbound.ProgressService, metrics DomainMetrics, logger *zap.Logger) *ProgressHandlers {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &ProgressHandlers{
		responder: responder{logger: logger},
		progress:  progress,
		metrics:   metrics,
	}
}

// History handles GET /api/v1/profiles/{id}/progress
func (h *ProgressHandlers) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.progress.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, history, "")
}

// Record handles PUT /api/v1/profiles/{id}/progress
func (h *ProgressHandlers) Record(w http.ResponseWriter, r *http.Request) {
	var entry nutrition.ProgressData
	if err := readJSON(r, &entry); err != nil {
		h.fail(w, r, err)
		return
	}

	history, err := h.progress.Record(r.Context(), chi.URLParam(r, "id"), entry)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.metrics.ProgressRecorded()
	h.ok(w, http.StatusOK, history, "Progress recorded")
}

// Remove handles DELETE /api/v1/profiles/{id}/progress/{date}
func (h *ProgressHandlers) Remove(w http.ResponseWriter, r *http.Request) {
	history, err := h.progress.Remove(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "date"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, history, "Progress entry removed")
}

// Summary handles GET /api/v1/profiles/{id}/progress/summary
func (h *ProgressHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.progress.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, summary, "")
}
