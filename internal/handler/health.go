package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/mediaplay-sync/internal/config"
)

// Pinger is the part of the store the health checks need.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and database probes.
type HealthHandler struct {
	db     Pinger
	app    config.AppConfig
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler probing db.
func NewHealthHandler(db Pinger, app config.AppConfig, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, app: app, logger: logger}
}

// HandleHealth: GET /health. It never touches the database.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"name":    h.app.Name,
		"version": h.app.Version,
	})
}

// HandleSmoke: GET /debug/smoke. Reports the app, the database and the
// version in one answer; 503 when the database does not answer.
func (h *HealthHandler) HandleSmoke(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, db := http.StatusOK, "ok"
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("smoke check failed", slog.String("error", err.Error()))
		status, db = http.StatusServiceUnavailable, "error"
	}
	writeJSON(w, status, map[string]string{
		"app":     "ok",
		"db":      db,
		"version": h.app.Version,
	})
}

// HandleDebugDB: GET /debug/db. Runs one store round trip; 503 when it
// fails or takes longer than two seconds.
func (h *HealthHandler) HandleDebugDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("database probe failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"db": "error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"db":      "ok",
		"latency": time.Since(start).String(),
	})
}
