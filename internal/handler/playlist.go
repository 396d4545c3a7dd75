package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/service"
)

// PlaylistHandler serves /playlists and /playlists/{id}/items.
type PlaylistHandler struct {
	playlists *service.PlaylistService
	scope     ReadScope
	logger    *slog.Logger
}

// NewPlaylistHandler creates a PlaylistHandler.
func NewPlaylistHandler(playlists *service.PlaylistService, scope ReadScope, logger *slog.Logger) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, scope: scope, logger: logger}
}

// HandleList: GET /playlists, each with its items.
func (h *PlaylistHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, err := h.scope.owner(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	lists, err := h.playlists.List(r.Context(), owner)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// HandleCreate: POST /playlists {"name": "...", "description": "..."}
func (h *PlaylistHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var in model.PlaylistInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.playlists.Create(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleGet: GET /playlists/{id}
func (h *PlaylistHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	owner, err := h.scope.owner(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.playlists.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdate: PUT /playlists/{id}
func (h *PlaylistHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var in model.PlaylistInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	p, err := h.playlists.Update(r.Context(), user.ID, id, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDelete: DELETE /playlists/{id}
func (h *PlaylistHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.playlists.Delete(r.Context(), user.ID, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListItems: GET /playlists/{id}/items, ordered by position.
func (h *PlaylistHandler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	owner, err := h.scope.owner(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	items, err := h.playlists.ListItems(r.Context(), owner, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleAddItem: POST /playlists/{id}/items
//
// An item with the same (media_uri, media_type) is updated in place and
// keeps its id.
func (h *PlaylistHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var in model.PlaylistItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	item, err := h.playlists.AddItem(r.Context(), user.ID, id, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// HandleRemoveItem: DELETE /playlists/{id}/items/{item_id}
func (h *PlaylistHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	itemID, err := pathID(r, "item_id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.playlists.RemoveItem(r.Context(), user.ID, id, itemID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
