package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/mediaplay-sync/internal/auth"
	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/service"
)

// PreferencesHandler serves /settings and /statistics.
//
// An authenticated GET returns the caller's row, creating it with defaults
// on first read. An anonymous GET under public reads returns the list of
// every user's rows instead: there is no owner to create defaults for.
type PreferencesHandler struct {
	prefs  *service.PreferencesService
	scope  ReadScope
	logger *slog.Logger
}

// NewPreferencesHandler creates a PreferencesHandler.
func NewPreferencesHandler(prefs *service.PreferencesService, scope ReadScope, logger *slog.Logger) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs, scope: scope, logger: logger}
}

// HandleGetSettings: GET /settings
func (h *PreferencesHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	if _, err := h.scope.owner(r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		all, err := h.prefs.AllSettings(r.Context())
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, all)
		return
	}

	st, err := h.prefs.Settings(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleUpdateSettings: POST /settings
//
// Omitted fields take their defaults (light, 1.0, false), not the stored
// values: the body is the full new state.
func (h *PreferencesHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	in := model.DefaultSettingInput()
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	st, err := h.prefs.UpdateSettings(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleGetStatistics: GET /statistics
func (h *PreferencesHandler) HandleGetStatistics(w http.ResponseWriter, r *http.Request) {
	if _, err := h.scope.owner(r); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		all, err := h.prefs.AllStatistics(r.Context())
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, all)
		return
	}

	st, err := h.prefs.Statistics(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleUpdateStatistics: POST /statistics
//
// The counters are absolute values computed by the client; the last write
// wins.
func (h *PreferencesHandler) HandleUpdateStatistics(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var in model.StatisticsInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	st, err := h.prefs.UpdateStatistics(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
