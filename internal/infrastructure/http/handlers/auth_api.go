package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/infrastructure/http/middleware"
	"github.com/nutrismart/planner/internal/ports/inbound"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

// AuthHandlers handles sign-in and session requests
type AuthHandlers struct {
	responder
	auth inbound.AuthService
}

// NewAuthHandlers creates authentication handlers
func NewAuthHandlers(auth inbound.AuthService, validator Validator, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		responder: responder{logger: logger, validator: validator},
		auth:      auth,
	}
}

// TokenRequest carries a Google OAuth access token
type TokenRequest struct {
	AccessToken string `json:"accessToken" validate:"required"`
}

// Google handles POST /api/v1/auth/google
func (h *AuthHandlers) Google(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	session, err := h.auth.SignIn(r.Context(), req.AccessToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, session, "Signed in")
}

// Me handles GET /api/v1/auth/me behind the session middleware
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.fail(w, r, apperrors.NewUnauthorizedError(""))
		return
	}
	h.ok(w, http.StatusOK, u.Info(), "")
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.auth.SignOut(r.Context(), req.AccessToken); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, nil, "Signed out")
}
