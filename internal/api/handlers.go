package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notegraph/internal/models"
	"github.com/starford/notegraph/internal/view"
)

// Graph is the view operations the API exposes.
type Graph interface {
	Snapshot() view.Snapshot
	LinksFor(id string) []models.SimilarityLink
	Detail(id string) (view.Detail, error)
	PointerDown(p models.Position) error
	PointerMove(p models.Position) error
	PointerUp(p models.Position) error
	Click(id string) error
	Expanded() string
	Resize(width, height float64) error
	Restart()
}

// Handler holds API route handlers.
type Handler struct {
	graph Graph
}

// NewHandler creates a new Handler.
func NewHandler(g Graph) *Handler {
	return &Handler{graph: g}
}

// noteID extracts the note id from the URL (everything after /api/notes/).
// Ids taken from vault paths may contain encoded slashes.
func noteID(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the current render snapshot
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.graph.Snapshot())
}

// Links handles GET /api/links?id=.
//
//	@Summary		List similarity links touching a note
//	@Tags			graph
//	@Produce		json
//	@Param			id	query		string	true	"Note id"
//	@Success		200	{object}	LinksResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/links [get]
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'id' is required"))
		return
	}
	writeJSON(w, http.StatusOK, LinksResponse{ID: id, Links: h.graph.LinksFor(id)})
}

// GetNote handles GET /api/notes/*.
//
//	@Summary		Get a note with its neighbours
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	NoteDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	d, err := h.graph.Detail(id)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Pointer handles POST /api/pointer.
//
//	@Summary		Feed a pointer event to the interaction controller
//	@Tags			interaction
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PointerRequest	true	"Pointer event"
//	@Success		200		{object}	GraphResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pointer [post]
func (h *Handler) Pointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	var err error
	switch req.Type {
	case PointerDown:
		err = h.graph.PointerDown(req.Position())
	case PointerMove:
		err = h.graph.PointerMove(req.Position())
	case PointerUp:
		err = h.graph.PointerUp(req.Position())
	}
	if err != nil {
		writeError(w, "pointer", err)
		return
	}
	writeJSON(w, http.StatusOK, h.graph.Snapshot())
}

// Click handles POST /api/click.
//
//	@Summary		Toggle expansion of a note by id
//	@Tags			interaction
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ClickRequest	true	"Note to toggle"
//	@Success		200		{object}	SelectionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/click [post]
func (h *Handler) Click(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.graph.Click(req.ID); err != nil {
		writeError(w, "click", err)
		return
	}
	writeJSON(w, http.StatusOK, SelectionResponse{Expanded: h.graph.Expanded()})
}

// Viewport handles POST /api/viewport.
//
//	@Summary		Resize the layout bounds
//	@Tags			graph
//	@Accept			json
//	@Param			body	body	ViewportRequest	true	"New size"
//	@Success		204		"Resized"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/viewport [post]
func (h *Handler) Viewport(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if !decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.graph.Resize(req.Width, req.Height); err != nil {
		writeError(w, "viewport", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Restart handles POST /api/restart.
//
//	@Summary		Reheat the simulation
//	@Tags			graph
//	@Success		204	"Restarted"
//	@Security		BearerAuth
//	@Router			/restart [post]
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	h.graph.Restart()
	w.WriteHeader(http.StatusNoContent)
}
