// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/infrastructure/monitoring"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool                    `json:"success"`
	Data    interface{}             `json:"data,omitempty"`
	Error   *apperrors.ErrorDetails `json:"error,omitempty"`
	Message string                  `json:"message,omitempty"`
}

// Validator checks decoded request bodies
type Validator interface {
	Struct(s interface{}) error
}

// DomainMetrics counts domain events triggered through the API
type DomainMetrics interface {
	PlanGenerated(mode string)
	GroceryItemsExtracted(n int)
	ChatMessageAnswered()
	ProgressRecorded()
}

type nopMetrics struct{}

func (nopMetrics) PlanGenerated(string)      {}
func (nopMetrics) GroceryItemsExtracted(int) {}
func (nopMetrics) ChatMessageAnswered()      {}
func (nopMetrics) ProgressRecorded()         {}

// NopMetrics discards domain events
func NopMetrics() DomainMetrics { return nopMetrics{} }

// responder holds what every handler group needs to answer a request
type responder struct {
	logger    *zap.Logger
	validator Validator
}

func (h responder) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func (h responder) ok(w http.ResponseWriter, status int, data interface{}, message string) {
	h.writeJSON(w, status, APIResponse{Success: true, Data: data, Message: message})
}

// fail maps err to its status code. Errors that are not AppErrors are
// reported as internal errors without exposing their text.
func (h responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.Wrap(err, "")
	status := appErr.StatusCode()

	log := monitoring.LoggerFromContext(r.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.String("code", string(appErr.Code)), zap.Error(err))
	} else {
		log.Debug("Request rejected", zap.String("code", string(appErr.Code)), zap.Error(err))
	}

	resp := apperrors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context()))
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   &resp.Error,
		Message: appErr.Message,
	})
}

// decode reads a JSON body into dst and validates it
func (h responder) decode(r *http.Request, dst interface{}) error {
	if err := readJSON(r, dst); err != nil {
		return err
	}
	if h.validator == nil {
		return nil
	}
	return h.validator.Struct(dst)
}

// readJSON reads a JSON body for services that validate their own input
func readJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.NewBadRequestError("request body too large")
		}
		return apperrors.NewBadRequestError("invalid JSON body").WithCause(err)
	}
	return nil
}
