package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/modeler/internal/annotation"
	"github.com/starford/modeler/internal/datasource"
	"github.com/starford/modeler/internal/modeler"
	"github.com/starford/modeler/internal/sse"
)

// maxBodyBytes bounds request bodies; group documents are small.
const maxBodyBytes = 1 << 20

// GroupEvents is told about every group change made through the API.
type GroupEvents interface {
	PublishGroupEvent(kind, group string)
}

// Handler holds API route handlers.
type Handler struct {
	svc    *modeler.Service
	events GroupEvents
}

// NewHandler creates a new Handler.
func NewHandler(svc *modeler.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) notify(kind, group string) {
	if h.events != nil {
		h.events.PublishGroupEvent(kind, group)
	}
}

// readGroup decodes a group from the request body. YAML bodies use the
// group file format, anything else is read as JSON.
func readGroup(r *http.Request) (*annotation.Group, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return annotation.ParseGroupYAML(body)
	}
	return annotation.DecodeGroup(body)
}

// ListGroups handles GET /api/groups.
//
//	@Summary		List stored annotation groups
//	@Tags			groups
//	@Produce		json
//	@Success		200	{object}	GroupListResponse
//	@Security		BearerAuth
//	@Router			/groups [get]
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListGroups(r.Context())
	if err != nil {
		writeError(w, "list groups", err)
		return
	}
	writeJSON(w, http.StatusOK, GroupListResponse{Groups: items, Total: len(items)})
}

// GetGroup handles GET /api/groups/{name}.
//
//	@Summary		Get a stored annotation group
//	@Tags			groups
//	@Produce		json
//	@Param			name	path		string	true	"Group name"
//	@Success		200		{object}	GroupDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups/{name} [get]
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetGroup(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, "get group", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// CreateGroup handles POST /api/groups.
//
//	@Summary		Store a new annotation group
//	@Tags			groups
//	@Accept			json
//	@Accept			application/x-yaml
//	@Produce		json
//	@Success		201	{object}	GroupDetail
//	@Failure		400	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups [post]
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	g, err := readGroup(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	detail, err := h.svc.CreateGroup(r.Context(), g)
	if err != nil {
		writeError(w, "create group", err)
		return
	}
	h.notify(sse.GroupCreated, g.Name)
	writeJSON(w, http.StatusCreated, detail)
}

// SaveGroup handles PUT /api/groups/{name}. The path name wins over any
// name in the body.
//
//	@Summary		Create or replace an annotation group
//	@Tags			groups
//	@Accept			json
//	@Accept			application/x-yaml
//	@Produce		json
//	@Param			name	path		string	true	"Group name"
//	@Success		200		{object}	GroupDetail
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups/{name} [put]
func (h *Handler) SaveGroup(w http.ResponseWriter, r *http.Request) {
	g, err := readGroup(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	g.Name = chi.URLParam(r, "name")
	detail, err := h.svc.SaveGroup(r.Context(), g)
	if err != nil {
		writeError(w, "save group", err)
		return
	}
	h.notify(sse.GroupUpdated, g.Name)
	writeJSON(w, http.StatusOK, detail)
}

// DeleteGroup handles DELETE /api/groups/{name}.
//
//	@Summary		Delete a stored annotation group
//	@Tags			groups
//	@Param			name	path	string	true	"Group name"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups/{name} [delete]
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.svc.DeleteGroup(r.Context(), name); err != nil {
		writeError(w, "delete group", err)
		return
	}
	h.notify(sse.GroupDeleted, name)
	w.WriteHeader(http.StatusNoContent)
}

// StoreConnection handles POST /api/connections.
//
//	@Summary		Store a data source connection
//	@Tags			connections
//	@Accept			json
//	@Produce		json
//	@Param			body	body		datasource.ConnectionMeta	true	"Connection"
//	@Success		201		{object}	ConnectionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/connections [post]
func (h *Handler) StoreConnection(w http.ResponseWriter, r *http.Request) {
	var meta datasource.ConnectionMeta
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&meta); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
		return
	}
	ref, err := h.svc.StoreConnection(r.Context(), meta)
	if err != nil {
		writeError(w, "store connection", err)
		return
	}
	writeJSON(w, http.StatusCreated, ConnectionResponse{Ref: ref})
}

// BuildModel handles POST /api/models.
//
//	@Summary		Build a model from a fact table and annotation groups
//	@Tags			models
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BuildRequest	true	"Build request"
//	@Success		200		{object}	BuildResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/models [post]
func (h *Handler) BuildModel(w http.ResponseWriter, r *http.Request) {
	var req modeler.BuildRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
		return
	}
	res, err := h.svc.BuildModel(r.Context(), req)
	if err != nil {
		writeError(w, "build model", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AnnotationKinds handles GET /api/annotation-kinds.
//
//	@Summary		List annotation kinds and their editable properties
//	@Tags			groups
//	@Produce		json
//	@Success		200	{object}	AnnotationKindsResponse
//	@Security		BearerAuth
//	@Router			/annotation-kinds [get]
func (h *Handler) AnnotationKinds(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, AnnotationKindsResponse{Kinds: annotationKinds()})
}

func annotationKinds() []AnnotationKind {
	kinds := annotation.Kinds()
	out := make([]AnnotationKind, 0, len(kinds))
	for _, k := range kinds {
		t, err := annotation.New(k)
		if err != nil {
			continue
		}
		out = append(out, AnnotationKind{Kind: k, Properties: t.Properties()})
	}
	return out
}
