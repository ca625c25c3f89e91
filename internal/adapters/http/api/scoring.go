package api

import (
	"net/http"

	"github.com/okian/lingprofile/internal/domain/scoring"
)

// ScoringHandler serves the stateless conversion and analysis endpoints.
type ScoringHandler struct {
	deps ScoringDependencies
}

// NewScoringHandler creates a new scoring handler.
func NewScoringHandler(deps ScoringDependencies) *ScoringHandler {
	return &ScoringHandler{deps: deps}
}

type convertRequest struct {
	Value *float64 `json:"value"`
	Scale string   `json:"scale"`
}

type convertResponse struct {
	Competence scoring.Score `json:"competence"`
	Zone       scoring.Zone  `json:"zone"`
	Label      string        `json:"label"`
}

// HandleConvert handles POST /convert. A missing value converts to null.
func (h *ScoringHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	const op = "api.convert"
	var req convertRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	scale, err := scoring.ParseScale(req.Scale)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	c := scoring.Null
	if req.Value != nil {
		c = h.deps.Convert(*req.Value, scale)
	}
	writeJSON(w, http.StatusOK, convertResponse{
		Competence: c,
		Zone:       scoring.ClassifyZone(c),
		Label:      scoring.Describe(c),
	})
}

type writingRequest struct {
	Age       string `json:"age"`
	Schooling string `json:"schooling"`
}

type writingResponse struct {
	scoring.WritingStatus
	Message string `json:"message,omitempty"`
}

// HandleWriting handles POST /writing.
func (h *ScoringHandler) HandleWriting(w http.ResponseWriter, r *http.Request) {
	const op = "api.writing"
	var req writingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	st := scoring.DetermineWritingActive(req.Age, req.Schooling)
	writeJSON(w, http.StatusOK, writingResponse{WritingStatus: st, Message: st.Message()})
}

type analyzeRequest struct {
	Competences   *scoring.Vector `json:"competences"`
	WritingActive *bool           `json:"writing_active"`
}

// HandleAnalyze handles POST /analyze. writing_active defaults to true; an
// all-null vector has no analysis and yields 204.
func (h *ScoringHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	var req analyzeRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Competences == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, scoring.ErrVectorLength))
		return
	}
	active := true
	if req.WritingActive != nil {
		active = *req.WritingActive
	}
	res := h.deps.Analyze(*req.Competences, active)
	if res == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
