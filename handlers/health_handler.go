package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cybe4sent1nel/CODERIPPER-sub001/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ReadinessChecker reports whether a dependency is reachable
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// ChainStatus reports whether live providers are configured
type ChainStatus interface {
	Degraded() bool
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	store  ReadinessChecker
	chain  ChainStatus
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. chain may be nil.
func NewHealthHandler(store ReadinessChecker, chain ChainStatus, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		store:  store,
		chain:  chain,
		logger: logger,
	}
}

// HandleHealth handles GET /healthz
// Basic health check - always returns 200 if service is running
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /readyz
// Degraded mode is reported but does not fail readiness
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	if h.store != nil {
		if err := h.store.Ready(ctx); err != nil {
			h.logger.Warn("execution store health check failed", zap.Error(err))
			checks["execution_store"] = "unhealthy"
			allHealthy = false
		} else {
			checks["execution_store"] = "healthy"
		}
	}

	if h.chain != nil {
		if h.chain.Degraded() {
			checks["providers"] = "degraded"
		} else {
			checks["providers"] = "configured"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	if err := utils.WriteJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
