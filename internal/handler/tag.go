package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/mediaplay-sync/internal/apperror"
	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/service"
)

// TagHandler serves /tags and /tags/media.
type TagHandler struct {
	tags   *service.TagService
	scope  ReadScope
	logger *slog.Logger
}

// NewTagHandler creates a TagHandler.
func NewTagHandler(tags *service.TagService, scope ReadScope, logger *slog.Logger) *TagHandler {
	return &TagHandler{tags: tags, scope: scope, logger: logger}
}

// HandleList: GET /tags
func (h *TagHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, err := h.scope.owner(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	tags, err := h.tags.List(r.Context(), owner)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// HandleCreate: POST /tags {"name": "chill", "color": "#00aaff"}
func (h *TagHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var in model.TagInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	tag, err := h.tags.Create(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// HandleDelete: DELETE /tags/{id}
func (h *TagHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.tags.Delete(r.Context(), user.ID, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMedia: GET /tags/media?tag_id=&media_uri=&media_type=
//
// Links carry no owner of their own; a caller sees only links whose tag it
// owns.
func (h *TagHandler) HandleListMedia(w http.ResponseWriter, r *http.Request) {
	owner, err := h.scope.owner(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	filter, err := parseMediaTagFilter(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	links, err := h.tags.ListMediaTags(r.Context(), owner, filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func parseMediaTagFilter(r *http.Request) (model.MediaTagFilter, error) {
	q := r.URL.Query()
	f := model.MediaTagFilter{MediaURI: q.Get("media_uri")}

	if raw := q.Get("tag_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, apperror.ValidationFailed("tag_id", "tag_id must be a positive integer")
		}
		f.TagID = id
	}
	if raw := q.Get("media_type"); raw != "" {
		kind, err := model.ParseMediaType(raw)
		if err != nil {
			return f, apperror.ValidationFailed("media_type", err.Error())
		}
		f.MediaType = kind
	}
	return f, nil
}

// HandleLinkMedia: POST /tags/media {"tag_id": 1, "media_uri": "...", "media_type": "audio"}
//
// Linking an existing pair returns the existing link. The tag must belong
// to the caller: linking media to someone else's tag answers 404, the same
// as a missing tag.
func (h *TagHandler) HandleLinkMedia(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var in model.MediaTagInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	link, err := h.tags.Link(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// HandleUnlinkMedia: DELETE /tags/media/{id}
//
// Only links on the caller's own tags can be removed; any other id is 404.
func (h *TagHandler) HandleUnlinkMedia(w http.ResponseWriter, r *http.Request) {
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

	if err := h.tags.Unlink(r.Context(), user.ID, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
