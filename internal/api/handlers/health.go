package handlers

import (
	"net/http"

	"github.com/cloo-solutions/aula/internal/api"
	"github.com/cloo-solutions/aula/internal/api/middleware"
	"github.com/cloo-solutions/aula/internal/domain"
)

type HealthHandler struct {
	index middleware.ReadinessChecker
}

func NewHealthHandler(index middleware.ReadinessChecker) *HealthHandler {
	return &HealthHandler{index: index}
}

// Health reports liveness only.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the document index is loaded.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.index.Ready() {
		api.HandleError(w, domain.IndexUnavailable("document index is not loaded", nil))
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"status": "ready"})
}
