package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/venuelab/directory-engine/pkg/database"
)

// HealthHandler reports service and database liveness.
type HealthHandler struct {
	db *database.DB
}

// NewHealthHandler creates a health check handler.
func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// RegisterRoutes registers the health endpoint.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		_ = ErrorResponse(w, http.StatusServiceUnavailable, "database_unreachable", err.Error())
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
