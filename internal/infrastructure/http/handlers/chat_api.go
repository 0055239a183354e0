package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/ports/inbound"
)

// ChatHandlers handles diet coach conversation requests
type ChatHandlers struct {
	responder
	chat    inbound.ChatService
	metrics DomainMetrics
}

// NewChatHandlers creates chat handlers
func NewChatHandlers(chat inbound.ChatService, validator Validator, metrics DomainMetrics, logger *zap.Logger) *ChatHandlers {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &ChatHandlers{
		responder: responder{logger: logger, validator: validator},
		chat:      chat,
		metrics:   metrics,
	}
}

// SendMessageRequest is one user turn
type SendMessageRequest struct {
	Text      string `json:"text" validate:"required"`
	ProfileID string `json:"profileId"`
}

// Messages handles GET /api/v1/chat/messages
func (h *ChatHandlers) Messages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chat.Messages(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, messages, "")
}

// Send handles POST /api/v1/chat/messages
func (h *ChatHandlers) Send(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	exchange, err := h.chat.Send(r.Context(), req.Text, req.ProfileID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !exchange.Fallback {
		h.metrics.ChatMessageAnswered()
	}
	h.ok(w, http.StatusCreated, exchange, "")
}

// Clear handles DELETE /api/v1/chat/messages
func (h *ChatHandlers) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.Clear(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, http.StatusOK, nil, "Chat cleared")
}
