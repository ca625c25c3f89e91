package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/okian/lingprofile/internal/domain/analysis"
	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/internal/domain/taxonomy"
)

const chartWidth = "720px"

// WriteReportHTML renders a standalone page with three charts: domain
// averages on a radar, dimension averages as bars, and the ranked
// intervention priorities. Hypotheses, affected domains and patterns are
// carried in the chart subtitles.
func WriteReportHTML(w io.Writer, r *Report) error {
	if r == nil || r.Case == nil {
		return ErrNoCase
	}
	page := components.NewPage()
	page.PageTitle = pageTitle(r)
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		domainRadar(r),
		dimensionBars(r.Analysis),
		priorityBars(r.Analysis),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func pageTitle(r *Report) string {
	name := r.Case.Name
	if name == "" {
		name = r.Case.ID
	}
	return "Linguistic profile: " + name
}

func domainRadar(r *Report) *charts.Radar {
	indicators := make([]*opts.Indicator, 0, taxonomy.DomainCount)
	for _, d := range taxonomy.Domains() {
		indicators = append(indicators, &opts.Indicator{Name: d.Name, Max: scoring.MaxCompetence, Color: d.Color})
	}

	values := make([]float64, taxonomy.DomainCount)
	subtitle := "No scored segments"
	if a := r.Analysis; a != nil {
		for i, d := range a.Domains {
			if d.Average.Valid {
				values[i] = analysis.Round1(d.Average.Value)
			}
		}
		subtitle = "Hypotheses: " + joinOr(hypothesisNames(a), "none")
		if len(a.AffectedDomains) > 0 {
			subtitle += " | Affected: " + strings.Join(a.AffectedDomains, ", ")
		}
	}
	if !r.Writing.Active {
		subtitle += " | Written modality excluded"
	}

	chart := charts.NewRadar()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth}),
		charts.WithTitleOpts(opts.Title{Title: "Domain averages", Subtitle: subtitle}),
		charts.WithRadarComponentOpts(opts.RadarComponent{
			Indicator:   indicators,
			SplitNumber: 5,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	chart.AddSeries("Competence", []opts.RadarData{{Name: r.Case.ID, Value: values}})
	return chart
}

func dimensionBars(a *analysis.Result) *charts.Bar {
	names := []string{"Oral", "Written", "Comprehension", "Expression", "Implicit", "Explicit"}
	data := make([]opts.BarData, len(names))
	subtitle := ""
	if a != nil {
		dims := []analysis.Average{
			a.Dimensions.Oral, a.Dimensions.Written,
			a.Dimensions.Comprehension, a.Dimensions.Expression,
			a.Dimensions.Implicit, a.Dimensions.Explicit,
		}
		for i, d := range dims {
			if d.Valid {
				data[i] = opts.BarData{Value: analysis.Round1(d.Value)}
			} else {
				data[i] = opts.BarData{Value: "-"}
			}
		}
		msgs := make([]string, 0, len(a.Patterns))
		for _, p := range a.Patterns {
			msgs = append(msgs, p.Message())
		}
		subtitle = strings.Join(msgs, " | ")
	}

	chart := charts.NewBar()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth}),
		charts.WithTitleOpts(opts.Title{Title: "Dimension averages", Subtitle: subtitle}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: scoring.MaxCompetence}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	chart.SetXAxis(names).AddSeries("Average", data)
	return chart
}

func priorityBars(a *analysis.Result) *charts.Bar {
	var codes []string
	var data []opts.BarData
	if a != nil {
		for _, p := range a.Priorities {
			codes = append(codes, p.Code)
			data = append(data, opts.BarData{Name: p.Path.String(), Value: p.Competence})
		}
	}
	subtitle := "No segment below 5"
	if len(codes) > 0 {
		subtitle = fmt.Sprintf("%d segment(s) below 5, lowest first", len(codes))
	}

	chart := charts.NewBar()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth}),
		charts.WithTitleOpts(opts.Title{Title: "Intervention priorities", Subtitle: subtitle}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: scoring.MaxCompetence}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	chart.SetXAxis(codes).AddSeries("Competence", data)
	return chart
}

func hypothesisNames(a *analysis.Result) []string {
	out := make([]string, 0, len(a.Hypotheses))
	for _, h := range a.Hypotheses {
		out = append(out, fmt.Sprintf("%s (%s)", h.Name, h.Confidence))
	}
	return out
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
