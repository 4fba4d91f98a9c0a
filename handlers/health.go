package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/you/trainticker/models"
)

// Pinger is the database connectivity probe used by the health endpoint
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health data
type HealthHandler struct {
	db         Pinger
	instanceID uuid.UUID
}

// NewHealthHandler creates a new handler probing the given database
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{
		db:         db,
		instanceID: uuid.New(),
	}
}

// GetHealth handles GET /health with a live database connectivity check
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := models.HealthStatus{
		Status:     "ok",
		Database:   "connected",
		InstanceID: h.instanceID.String(),
		Timestamp:  time.Now().UTC(),
	}

	if err := h.db.Ping(ctx); err != nil {
		status.Status = "error"
		status.Database = "disconnected"
		status.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
