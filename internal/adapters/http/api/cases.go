package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/plan"
	"github.com/okian/lingprofile/internal/domain/scoring"
)

// CasesHandler serves saved cases, their applied tests, analysis and plan.
type CasesHandler struct {
	deps CaseDependencies
}

// NewCasesHandler creates a new cases handler.
func NewCasesHandler(deps CaseDependencies) *CasesHandler {
	return &CasesHandler{deps: deps}
}

// caseSummary is the list shape; the full vector is fetched per case.
type caseSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Age        string    `json:"age"`
	Date       string    `json:"date"`
	Scored     int       `json:"scored"`
	Tests      int       `json:"tests"`
	ModifiedAt time.Time `json:"modified_at"`
}

// HandleList handles GET /cases, newest first.
func (h *CasesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	cases, err := h.deps.ListCases(r.Context())
	if err != nil {
		writeFailure(w, Wrap("api.list_cases", err))
		return
	}
	out := make([]caseSummary, 0, len(cases))
	for _, c := range cases {
		out = append(out, caseSummary{
			ID:         c.ID,
			Name:       c.Name,
			Age:        c.Age,
			Date:       c.Date,
			Scored:     c.Competences.Scored(),
			Tests:      len(c.Tests),
			ModifiedAt: c.ModifiedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleSave handles POST /cases. A case without id is created.
func (h *CasesHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	const op = "api.save_case"
	var c model.Case
	if err := decodeBody(r, &c); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	saved, err := h.deps.SaveCase(r.Context(), &c)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// HandleDemo handles POST /cases/demo.
func (h *CasesHandler) HandleDemo(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.CreateDemoCase(r.Context())
	if err != nil {
		writeFailure(w, Wrap("api.demo_case", err))
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleGet handles GET /cases/{id}.
func (h *CasesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.GetCase(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap("api.get_case", err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleDelete handles DELETE /cases/{id}; the case's plan goes with it.
func (h *CasesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteCase(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, Wrap("api.delete_case", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scoreRequest struct {
	Competence scoring.Score `json:"competence"`
}

// HandleSetScore handles PUT /cases/{id}/scores/{index}. A null
// competence clears the segment.
func (h *CasesHandler) HandleSetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_score"
	index, req, err := decodeScore(r)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	c, err := h.deps.SetScore(r.Context(), r.PathValue("id"), index, req.Competence)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func decodeScore(r *http.Request) (int, scoreRequest, error) {
	var req scoreRequest
	index, err := pathIndex(r, "index")
	if err != nil {
		return 0, req, err
	}
	if err := decodeBody(r, &req); err != nil {
		return 0, req, err
	}
	return index, req, nil
}

type testRequest struct {
	TestID string  `json:"test_id"`
	Value  float64 `json:"value"`
	Scale  string  `json:"scale"`
}

type testResponse struct {
	Case    *model.Case       `json:"case"`
	Applied model.AppliedTest `json:"applied"`
}

// optionalScale parses s; empty keeps the test's own scale.
func optionalScale(s string) (scoring.Scale, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return scoring.ParseScale(s)
}

// HandleApplyTest handles POST /cases/{id}/tests.
func (h *CasesHandler) HandleApplyTest(w http.ResponseWriter, r *http.Request) {
	const op = "api.apply_test"
	var req testRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.TestID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	scale, err := optionalScale(req.Scale)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	c, applied, err := h.deps.ApplyTest(r.Context(), r.PathValue("id"), req.TestID, req.Value, scale)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, testResponse{Case: c, Applied: applied})
}

// HandleEditTest handles PUT /cases/{id}/tests/{testID}, where testID is
// the applied test's id.
func (h *CasesHandler) HandleEditTest(w http.ResponseWriter, r *http.Request) {
	const op = "api.edit_test"
	var req testRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	scale, err := optionalScale(req.Scale)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	c, applied, err := h.deps.EditTest(r.Context(), r.PathValue("id"), r.PathValue("testID"), req.Value, scale)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, testResponse{Case: c, Applied: applied})
}

// HandleRemoveTest handles DELETE /cases/{id}/tests/{testID}.
func (h *CasesHandler) HandleRemoveTest(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.RemoveTest(r.Context(), r.PathValue("id"), r.PathValue("testID"))
	if err != nil {
		writeFailure(w, Wrap("api.remove_test", err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type responseRequest struct {
	State string `json:"state"`
}

// HandleSetResponse handles PUT /cases/{id}/responses/{test}/{task}/{item}.
// Items are numbered from 1; state "" or "unanswered" clears the item.
func (h *CasesHandler) HandleSetResponse(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_response"
	item, err := pathIndex(r, "item")
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	var req responseRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	state, err := model.ParseResponseState(req.State)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	c, err := h.deps.SetResponse(r.Context(), r.PathValue("id"), r.PathValue("test"), r.PathValue("task"), item, state)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleAnalysis handles GET /cases/{id}/analysis. The response carries
// the writing gate, the analysis (null when nothing is scored) and the
// zone summary.
func (h *CasesHandler) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	rep, err := h.deps.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap("api.case_analysis", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"case_id":  rep.Case.ID,
		"writing":  rep.Writing,
		"analysis": rep.Analysis,
		"zones":    rep.Zones,
	})
}

// HandleGetPlan handles GET /cases/{id}/plan: the saved plan, or an unsaved
// draft derived from the analysis.
func (h *CasesHandler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.GetPlan(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap("api.get_plan", err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleSavePlan handles POST /cases/{id}/plan. An empty body saves the
// draft as is.
func (h *CasesHandler) HandleSavePlan(w http.ResponseWriter, r *http.Request) {
	const op = "api.save_plan"
	patch := &plan.Plan{}
	if err := decodeBody(r, patch); errors.Is(err, io.EOF) {
		patch = nil
	} else if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.SavePlan(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
