package controllers

import (
	"context"
	"log/slog"
	"net/http"
)

// Pinger checks that a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports liveness and store readiness
type HealthController struct {
	store  Pinger
	logger *slog.Logger
}

// NewHealthController creates a new HealthController
func NewHealthController(store Pinger, logger *slog.Logger) *HealthController {
	return &HealthController{store: store, logger: logger}
}

// Root answers the plain liveness check.
func (hc *HealthController) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("backend is running"))
}

// Healthz pings the store.
func (hc *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	if err := hc.store.Ping(ctx); err != nil {
		hc.logger.WarnContext(ctx, "health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
