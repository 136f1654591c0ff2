package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(g Graph, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(g)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/graph", h.Graph)
	r.Get("/links", h.Links)
	r.Get("/notes/*", h.GetNote)

	r.Post("/pointer", h.Pointer)
	r.Post("/click", h.Click)
	r.Post("/viewport", h.Viewport)
	r.Post("/restart", h.Restart)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
