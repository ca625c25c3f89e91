// Package export renders a case into CSV, JSON, HTML and PNG documents.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/okian/lingprofile/internal/domain/analysis"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/plan"
	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/radar"
)

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrNoCase        = errors.New("report has no case")
	ErrEmptyDocument = errors.New("document holds no case")
)

// Format names an export document type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
	FormatPNG  Format = "png"
)

// Formats lists every supported format.
func Formats() []Format { return []Format{FormatCSV, FormatJSON, FormatHTML, FormatPNG} }

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case FormatCSV, FormatJSON, FormatHTML, FormatPNG:
		return f, nil
	case "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

var nameReplacer = strings.NewReplacer("/", "-", "\\", "-", "..", "-", " ", "-")

// SafeName makes s usable as a file name component. Path separators, ".."
// and spaces become "-"; an empty name becomes "unnamed".
func SafeName(s string) string {
	s = nameReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return "unnamed"
	}
	return s
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string { return string(f) }

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// Report bundles everything an external report generator needs about one
// case: the record, its writing status, the analysis and the saved plan.
type Report struct {
	Case        *model.Case           `json:"case"`
	Writing     scoring.WritingStatus `json:"writing"`
	Analysis    *analysis.Result      `json:"analysis"`
	Zones       analysis.ZoneSummary  `json:"zones"`
	Plan        *plan.Plan            `json:"plan,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// NewReport analyses c with its writing gate. p may be nil.
func NewReport(c *model.Case, p *plan.Plan, now time.Time) (*Report, error) {
	if c == nil {
		return nil, ErrNoCase
	}
	ws := c.WritingStatus()
	r := analysis.Analyze(c.Competences, ws.Active)
	return &Report{
		Case:        c,
		Writing:     ws,
		Analysis:    r,
		Zones:       analysis.Summary(r),
		Plan:        p,
		GeneratedAt: now,
	}, nil
}

// Write renders r in format f.
func Write(w io.Writer, f Format, r *Report, chartOpts ...radar.Option) error {
	if r == nil || r.Case == nil {
		return ErrNoCase
	}
	switch f {
	case FormatCSV:
		return WriteCSV(w, r.Case)
	case FormatJSON:
		return WriteJSON(w, r.Case)
	case FormatHTML:
		return WriteReportHTML(w, r)
	case FormatPNG:
		return WritePNG(w, r.Case, chartOpts...)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
