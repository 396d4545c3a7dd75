package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/mediaplay-sync/internal/apperror"
	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/service"
)

// MediaHandler serves /favorites and /history.
type MediaHandler struct {
	media  *service.MediaService
	scope  ReadScope
	logger *slog.Logger
}

// NewMediaHandler creates a MediaHandler.
func NewMediaHandler(media *service.MediaService, scope ReadScope, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{media: media, scope: scope, logger: logger}
}

// HandleListFavorites: GET /favorites
func (h *MediaHandler) HandleListFavorites(w http.ResponseWriter, r *http.Request) {
	owner, err := h.scope.owner(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	favs, err := h.media.ListFavorites(r.Context(), owner)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

// HandleAddFavorite: POST /favorites
//
// Re-posting the same (media_uri, media_type) updates the stored favorite.
func (h *MediaHandler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var in model.FavoriteInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	fav, err := h.media.AddFavorite(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, fav)
}

// HandleRemoveFavorite: DELETE /favorites?media_uri=...&media_type=audio
func (h *MediaHandler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	q := r.URL.Query()
	kind, err := model.ParseMediaType(q.Get("media_type"))
	if err != nil {
		writeError(w, h.logger, apperror.ValidationFailed("media_type", err.Error()))
		return
	}
	key := model.MediaKey{MediaURI: q.Get("media_uri"), MediaType: kind}

	if err := h.media.RemoveFavorite(r.Context(), user.ID, key); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListHistory: GET /history, most recently played first.
func (h *MediaHandler) HandleListHistory(w http.ResponseWriter, r *http.Request) {
	owner, err := h.scope.owner(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	items, err := h.media.ListHistory(r.Context(), owner)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleRecordPlay: POST /history
//
// Each call counts one play; play_count is never taken from the body.
func (h *MediaHandler) HandleRecordPlay(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var in model.HistoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.media.RecordPlay(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}
