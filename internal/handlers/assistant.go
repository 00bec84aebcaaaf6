package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"moschee-backend/internal/assistant"
	"moschee-backend/internal/models"
	"moschee-backend/internal/services"
	"moschee-backend/internal/telemetry"
)

type sessionRegistry interface {
	Create() *assistant.Session
	Get(id uuid.UUID) (*assistant.Session, bool)
	Remove(id uuid.UUID) bool
}

// AssistantHandler exposes the chat widget sessions.
type AssistantHandler struct {
	registry sessionRegistry
	metrics  *telemetry.AssistantMetrics
	logger   *slog.Logger
}

func NewAssistantHandler(registry sessionRegistry, metrics *telemetry.AssistantMetrics, logger *slog.Logger) *AssistantHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistantHandler{registry: registry, metrics: metrics, logger: logger}
}

// POST /api/v1/assistant/sessions
func (h *AssistantHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.registry.Create()
	h.metrics.SessionCreated(r.Context())
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

// GET /api/v1/assistant/sessions/{id}
func (h *AssistantHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// DELETE /api/v1/assistant/sessions/{id}
func (h *AssistantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return
	}
	if !h.registry.Remove(id) {
		handleServiceError(w, r, &services.NotFoundError{Message: "Session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/assistant/sessions/{id}/open
func (h *AssistantHandler) Open(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Open()
	writeJSON(w, http.StatusOK, models.VisibilityResponse{Open: true})
}

// POST /api/v1/assistant/sessions/{id}/close
func (h *AssistantHandler) Close(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Close()
	writeJSON(w, http.StatusOK, models.VisibilityResponse{Open: false})
}

// POST /api/v1/assistant/sessions/{id}/toggle
func (h *AssistantHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.VisibilityResponse{Open: s.Toggle()})
}

// Submit handles POST /api/v1/assistant/sessions/{id}/messages.
//
// A blank message is ignored (200, accepted=false). While a reply is
// pending further messages get 409. An accepted message is answered
// with the reply when it arrives before the client goes away; otherwise
// 202 tells the page to wait for the websocket push.
func (h *AssistantHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusOK, models.ChatResponse{Accepted: false, Session: s.Snapshot()})
		return
	}

	done, accepted := s.Submit(r.Context(), req.Message)
	if !accepted {
		handleServiceError(w, r, &services.ConflictError{Message: "A reply is still pending"})
		return
	}
	h.metrics.Submitted(r.Context())

	select {
	case reply := <-done:
		writeJSON(w, http.StatusOK, models.ChatResponse{Accepted: true, Reply: &reply, Session: s.Snapshot()})
	case <-r.Context().Done():
		h.logger.Debug("client left before the assistant replied", "session_id", s.ID())
		writeJSON(w, http.StatusAccepted, models.ChatResponse{Accepted: true, Session: s.Snapshot()})
	}
}

func (h *AssistantHandler) session(w http.ResponseWriter, r *http.Request) (*assistant.Session, bool) {
	id, ok := parseSessionID(w, r)
	if !ok {
		return nil, false
	}
	s, found := h.registry.Get(id)
	if !found {
		handleServiceError(w, r, &services.NotFoundError{Message: "Session not found"})
		return nil, false
	}
	return s, true
}

func parseSessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("INVALID_ID", "Invalid session ID", r))
		return uuid.Nil, false
	}
	return id, true
}
