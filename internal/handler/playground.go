// Package handler contains the HTTP handlers of the sync API.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the request (path ids, query filters, JSON body).
//  2. Pick the caller's scope (authenticated user, or every owner for
//     anonymous public reads).
//  3. Call one service method.
//  4. Write the JSON response or map the error (response.go).
//
// Business rules live in internal/service, never here.
package handler

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sakif/mediaplay-sync/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// PlaygroundHandler serves the browser console for poking the API.
// Templates are parsed once at startup.
type PlaygroundHandler struct {
	templates   *template.Template
	app         config.AppConfig
	publicReads bool
	logger      *slog.Logger
}

// NewPlaygroundHandler parses base.html and playground.html together:
// base defines the page and pulls in the "content" block that
// playground.html defines.
func NewPlaygroundHandler(app config.AppConfig, publicReads bool, logger *slog.Logger) (*PlaygroundHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/playground.html")
	if err != nil {
		return nil, err
	}
	return &PlaygroundHandler{
		templates:   tmpl,
		app:         app,
		publicReads: publicReads,
		logger:      logger,
	}, nil
}

// HandlePlayground: GET /playground
func (h *PlaygroundHandler) HandlePlayground(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title":       h.app.Name + " playground",
		"Name":        h.app.Name,
		"Version":     h.app.Version,
		"PublicReads": h.publicReads,
		"Methods":     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
