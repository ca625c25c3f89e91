package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/okian/lingprofile/internal/domain/model"
)

// ExportsHandler queues export jobs.
type ExportsHandler struct {
	deps ExportDependencies
}

// NewExportsHandler creates a new exports handler.
func NewExportsHandler(deps ExportDependencies) *ExportsHandler {
	return &ExportsHandler{deps: deps}
}

// exportRequest mirrors the OpenAPI schema for POST /exports. job_id is
// optional; the server assigns one when it is missing.
type exportRequest struct {
	JobID  string `json:"job_id"`
	CaseID string `json:"case_id"`
	Format string `json:"format"`
}

type ackResponse struct {
	Status    string             `json:"status"`
	Duplicate bool               `json:"duplicate"`
	Job       model.ExportStatus `json:"job"`
}

// HandleSubmit handles POST /exports. A new job is accepted with 202; a job
// id seen before is acknowledged with 200 and not run again; a full queue
// yields 429 and the id may be retried.
func (h *ExportsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_export"
	var req exportRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	job := model.NewExportJob(req.JobID, req.CaseID, req.Format, time.Time{})
	st, err := h.deps.SubmitExport(r.Context(), job)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if st.Duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, Job: st})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Job: st})
}

// HandleStatus handles GET /exports/{id}.
func (h *ExportsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, ok := h.deps.ExportStatus(id)
	if !ok {
		writeFailure(w, WrapKind("api.export_status", ErrNotFound, fmt.Errorf("job %q", id)))
		return
	}
	writeJSON(w, http.StatusOK, st)
}
