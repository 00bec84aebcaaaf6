package handlers

import (
	"context"
	"net/http"
)

type pinger interface {
	Healthy(ctx context.Context) error
}

type HealthHandler struct {
	redis pinger
}

func NewHealthHandler(redis pinger) *HealthHandler {
	return &HealthHandler{redis: redis}
}

// GET /health. Redis is only needed for cache and push, so a failing
// ping degrades the status but still answers 200.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "redis": "ok"}
	if h.redis != nil {
		if err := h.redis.Healthy(r.Context()); err != nil {
			status["status"] = "degraded"
			status["redis"] = "unreachable"
		}
	}
	writeJSON(w, http.StatusOK, status)
}
