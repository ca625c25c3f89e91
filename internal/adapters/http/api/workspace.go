package api

import (
	"bytes"
	"net/http"
	"strconv"
)

// WorkspaceHandler drives the live case and its animated chart.
type WorkspaceHandler struct {
	deps WorkspaceDependencies
}

// NewWorkspaceHandler creates a new workspace handler.
func NewWorkspaceHandler(deps WorkspaceDependencies) *WorkspaceHandler {
	return &WorkspaceHandler{deps: deps}
}

// HandleGet handles GET /workspace.
func (h *WorkspaceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.Workspace()
	if err != nil {
		writeFailure(w, Wrap("api.workspace", err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleLoad handles POST /workspace/{id}, which starts a full transition
// to the case's profile.
func (h *WorkspaceHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.LoadWorkspace(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap("api.workspace_load", err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleSetScore handles PUT /workspace/scores/{index}, which animates only
// that petal.
func (h *WorkspaceHandler) HandleSetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.workspace_score"
	index, req, err := decodeScore(r)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	c, err := h.deps.SetWorkspaceScore(r.Context(), index, req.Competence)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleSave handles POST /workspace/save.
func (h *WorkspaceHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.SaveWorkspace(r.Context())
	if err != nil {
		writeFailure(w, Wrap("api.workspace_save", err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleRadar handles GET /workspace/radar.png: the chart's current frame,
// mid-animation included. X-Animating tells the caller whether to poll
// again.
func (h *WorkspaceHandler) HandleRadar(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.deps.WorkspacePNG(&buf); err != nil {
		writeFailure(w, Wrap("api.workspace_radar", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Animating", strconv.FormatBool(h.deps.WorkspaceAnimating()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
