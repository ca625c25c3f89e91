package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/lingprofile/internal/adapters/export"
	"github.com/okian/lingprofile/internal/radar"
)

// DocumentsHandler renders a saved case as PNG, HTML, CSV or JSON.
type DocumentsHandler struct {
	deps      CaseDependencies
	chartOpts []radar.Option
}

// DocumentOption configures a DocumentsHandler.
type DocumentOption func(*DocumentsHandler)

// WithChartOptions sets the base options of rendered radar images; query
// parameters are applied on top.
func WithChartOptions(opts ...radar.Option) DocumentOption {
	return func(h *DocumentsHandler) {
		h.chartOpts = append(h.chartOpts, opts...)
	}
}

// NewDocumentsHandler creates a new documents handler.
func NewDocumentsHandler(deps CaseDependencies, opts ...DocumentOption) *DocumentsHandler {
	h := &DocumentsHandler{deps: deps}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleRadar handles GET /cases/{id}/radar.png. Query parameters: width
// (logical pixels), zoom (0.5 to 2) and dark (bool, defaults to the theme
// setting).
func (h *DocumentsHandler) HandleRadar(w http.ResponseWriter, r *http.Request) {
	const op = "api.case_radar"
	opts, err := h.radarOptions(r)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	h.serve(w, r, op, export.FormatPNG, false, opts...)
}

// HandleReport handles GET /cases/{id}/report.html.
func (h *DocumentsHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.case_report", export.FormatHTML, false)
}

// HandleCSV handles GET /cases/{id}/export.csv.
func (h *DocumentsHandler) HandleCSV(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.case_csv", export.FormatCSV, true)
}

// HandleJSON handles GET /cases/{id}/export.json.
func (h *DocumentsHandler) HandleJSON(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "api.case_json", export.FormatJSON, true)
}

// serve renders into memory first so a failure still yields a JSON error.
func (h *DocumentsHandler) serve(w http.ResponseWriter, r *http.Request, op string, f export.Format, attachment bool, opts ...radar.Option) {
	rep, err := h.deps.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, f, rep, opts...); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if attachment {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", export.SafeName(rep.Case.ID)+"."+f.Ext()))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *DocumentsHandler) radarOptions(r *http.Request) ([]radar.Option, error) {
	q := r.URL.Query()
	opts := append([]radar.Option{radar.WithDarkMode(h.deps.Settings().Dark())}, h.chartOpts...)
	if v := q.Get("width"); v != "" {
		width, err := strconv.ParseFloat(v, 64)
		if err != nil || width <= 0 {
			return nil, fmt.Errorf("width must be a positive number, got %q", v)
		}
		opts = append(opts, radar.WithContainerWidth(width))
	}
	if v := q.Get("zoom"); v != "" {
		zoom, err := strconv.ParseFloat(v, 64)
		if err != nil || zoom <= 0 {
			return nil, fmt.Errorf("zoom must be a positive number, got %q", v)
		}
		opts = append(opts, radar.WithZoom(zoom))
	}
	if v := q.Get("dark"); v != "" {
		dark, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("dark must be a boolean, got %q", v)
		}
		opts = append(opts, radar.WithDarkMode(dark))
	}
	return opts, nil
}
