// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/okian/lingprofile/internal/adapters/export"
	"github.com/okian/lingprofile/internal/domain/analysis"
	"github.com/okian/lingprofile/internal/domain/catalog"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/plan"
	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/settings"
)

// maxBodyBytes bounds request bodies; a full case with tests is a few KB.
const maxBodyBytes = 1 << 20

// ScoringDependencies are the pure scoring and analysis operations.
type ScoringDependencies interface {
	Convert(raw float64, scale scoring.Scale) scoring.Score
	Analyze(v scoring.Vector, writingActive bool) *analysis.Result
}

// CatalogDependencies manage the test catalog.
type CatalogDependencies interface {
	Catalog() []catalog.TestDefinition
	CreateCustomTest(ctx context.Context, in catalog.CustomInput) (catalog.TestDefinition, error)
	UpdateCustomTest(ctx context.Context, id string, in catalog.CustomInput) (catalog.TestDefinition, error)
	DeleteCustomTest(ctx context.Context, id string) error
}

// CaseDependencies manage saved cases, their tests and plans.
type CaseDependencies interface {
	ListCases(ctx context.Context) ([]*model.Case, error)
	GetCase(ctx context.Context, id string) (*model.Case, error)
	SaveCase(ctx context.Context, c *model.Case) (*model.Case, error)
	DeleteCase(ctx context.Context, id string) error
	CreateDemoCase(ctx context.Context) (*model.Case, error)
	SetScore(ctx context.Context, id string, index int, score scoring.Score) (*model.Case, error)
	ApplyTest(ctx context.Context, caseID, testID string, raw float64, scale scoring.Scale) (*model.Case, model.AppliedTest, error)
	EditTest(ctx context.Context, caseID, appliedID string, raw float64, scale scoring.Scale) (*model.Case, model.AppliedTest, error)
	RemoveTest(ctx context.Context, caseID, appliedID string) (*model.Case, error)
	SetResponse(ctx context.Context, caseID, testID, taskID string, item int, state model.ResponseState) (*model.Case, error)
	Report(ctx context.Context, id string) (*export.Report, error)
	GetPlan(ctx context.Context, caseID string) (*plan.Plan, error)
	SavePlan(ctx context.Context, caseID string, patch *plan.Plan) (*plan.Plan, error)
	Settings() settings.Settings
}

// WorkspaceDependencies drive the live case and its animated chart.
type WorkspaceDependencies interface {
	LoadWorkspace(ctx context.Context, id string) (*model.Case, error)
	Workspace() (*model.Case, error)
	SetWorkspaceScore(ctx context.Context, index int, score scoring.Score) (*model.Case, error)
	SaveWorkspace(ctx context.Context) (*model.Case, error)
	WorkspacePNG(w io.Writer) error
	WorkspaceAnimating() bool
}

// ExportDependencies queue export jobs and report on them.
type ExportDependencies interface {
	SubmitExport(ctx context.Context, job model.ExportJob) (model.ExportStatus, error)
	ExportStatus(jobID string) (model.ExportStatus, bool)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoringDependencies
	CatalogDependencies
	CaseDependencies
	WorkspaceDependencies
	ExportDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	scoringHandler   *ScoringHandler
	catalogHandler   *CatalogHandler
	casesHandler     *CasesHandler
	documentsHandler *DocumentsHandler
	workspaceHandler *WorkspaceHandler
	exportsHandler   *ExportsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...DocumentOption) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		scoringHandler:   NewScoringHandler(deps),
		catalogHandler:   NewCatalogHandler(deps),
		casesHandler:     NewCasesHandler(deps),
		documentsHandler: NewDocumentsHandler(deps, opts...),
		workspaceHandler: NewWorkspaceHandler(deps),
		exportsHandler:   NewExportsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	route("POST /convert", "convert", s.scoringHandler.HandleConvert)
	route("POST /writing", "writing", s.scoringHandler.HandleWriting)
	route("POST /analyze", "analyze", s.scoringHandler.HandleAnalyze)

	route("GET /catalog", "catalog", s.catalogHandler.HandleList)
	route("POST /catalog/custom", "catalog_custom", s.catalogHandler.HandleCreate)
	route("PUT /catalog/custom/{id}", "catalog_custom", s.catalogHandler.HandleUpdate)
	route("DELETE /catalog/custom/{id}", "catalog_custom", s.catalogHandler.HandleDelete)

	route("GET /cases", "cases", s.casesHandler.HandleList)
	route("POST /cases", "cases", s.casesHandler.HandleSave)
	route("POST /cases/demo", "cases_demo", s.casesHandler.HandleDemo)
	route("GET /cases/{id}", "case", s.casesHandler.HandleGet)
	route("DELETE /cases/{id}", "case", s.casesHandler.HandleDelete)
	route("PUT /cases/{id}/scores/{index}", "case_score", s.casesHandler.HandleSetScore)
	route("POST /cases/{id}/tests", "case_tests", s.casesHandler.HandleApplyTest)
	route("PUT /cases/{id}/tests/{testID}", "case_tests", s.casesHandler.HandleEditTest)
	route("DELETE /cases/{id}/tests/{testID}", "case_tests", s.casesHandler.HandleRemoveTest)
	route("PUT /cases/{id}/responses/{test}/{task}/{item}", "case_responses", s.casesHandler.HandleSetResponse)
	route("GET /cases/{id}/analysis", "case_analysis", s.casesHandler.HandleAnalysis)
	route("GET /cases/{id}/plan", "case_plan", s.casesHandler.HandleGetPlan)
	route("POST /cases/{id}/plan", "case_plan", s.casesHandler.HandleSavePlan)

	route("GET /cases/{id}/radar.png", "case_radar", s.documentsHandler.HandleRadar)
	route("GET /cases/{id}/report.html", "case_report", s.documentsHandler.HandleReport)
	route("GET /cases/{id}/export.csv", "case_export", s.documentsHandler.HandleCSV)
	route("GET /cases/{id}/export.json", "case_export", s.documentsHandler.HandleJSON)

	route("GET /workspace", "workspace", s.workspaceHandler.HandleGet)
	route("POST /workspace/save", "workspace_save", s.workspaceHandler.HandleSave)
	route("POST /workspace/{id}", "workspace", s.workspaceHandler.HandleLoad)
	route("PUT /workspace/scores/{index}", "workspace_score", s.workspaceHandler.HandleSetScore)
	route("GET /workspace/radar.png", "workspace_radar", s.workspaceHandler.HandleRadar)

	route("POST /exports", "exports", s.exportsHandler.HandleSubmit)
	route("GET /exports/{id}", "exports", s.exportsHandler.HandleStatus)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure picks the status for err from its kind.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// decodeBody reads a JSON body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// pathIndex parses the named path value as a segment index.
func pathIndex(r *http.Request, name string) (int, error) {
	i, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return i, nil
}
