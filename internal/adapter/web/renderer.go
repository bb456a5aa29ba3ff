// Package web renders the HTML dashboard.
//
// Charts are built with go-echarts and embedded as snippets; the page itself
// is a single html/template with a GET form, so every filter change is a
// fresh request and a fresh filter-and-aggregate pass.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"slices"

	"github.com/couchcryptid/wildlife-health-watch/internal/aggregate"
	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
	"github.com/couchcryptid/wildlife-health-watch/internal/filter"
	"github.com/couchcryptid/wildlife-health-watch/internal/pipeline"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// EmptyNotice replaces the charts when no record matches the filters.
const EmptyNotice = "No data available for selected filters."

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns a pipeline.Page into HTML.
type Renderer struct {
	tmpl    *template.Template
	printer *message.Printer
}

// NewRenderer parses the embedded page template.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}
	return &Renderer{tmpl: tmpl, printer: message.NewPrinter(language.English)}, nil
}

type card struct {
	Label string
	Value string
	Delta string
}

type option struct {
	Value    string
	Selected bool
}

type formState struct {
	DateFrom   string
	DateTo     string
	DateMin    string
	DateMax    string
	Regions    []option
	Species    []option
	Severities []option
	Statuses   []option
}

type recentRow struct {
	CaseID   string
	Date     string
	Region   string
	Species  string
	Syndrome string
	Severity string
	Status   string
	Animals  string
}

type pageView struct {
	Notice    string
	Empty     bool
	Cards     []card
	Form      formState
	ExportURL string

	MapChart      template.HTML
	TrendChart    template.HTML
	SpeciesChart  template.HTML
	SyndromeChart template.HTML

	Recent []recentRow
}

// Render writes the dashboard page for page.
func (r *Renderer) Render(w io.Writer, page pipeline.Page) error {
	view, err := r.view(page)
	if err != nil {
		return err
	}
	if err := r.tmpl.ExecuteTemplate(w, "dashboard.html", view); err != nil {
		return fmt.Errorf("execute dashboard template: %w", err)
	}
	return nil
}

func (r *Renderer) view(page pipeline.Page) (pageView, error) {
	d := page.Dashboard
	v := pageView{
		Empty:     d.Empty,
		Cards:     r.cards(d.Metrics),
		Form:      form(page.Spec, page.Options),
		ExportURL: "/api/v1/export.csv",
		Recent:    r.recentRows(d.Recent),
	}
	if q := page.Spec.Values().Encode(); q != "" {
		v.ExportURL += "?" + q
	}

	if d.Empty {
		v.Notice = EmptyNotice
		return v, nil
	}

	var err error
	if v.MapChart, err = renderSnippet(mapChart(d.Points)); err != nil {
		return pageView{}, err
	}
	if v.TrendChart, err = renderSnippet(trendChart(d.Weekly)); err != nil {
		return pageView{}, err
	}
	if v.SpeciesChart, err = renderSnippet(speciesChart(d.Species)); err != nil {
		return pageView{}, err
	}
	if v.SyndromeChart, err = renderSnippet(syndromeChart(d.Syndromes)); err != nil {
		return pageView{}, err
	}
	return v, nil
}

func (r *Renderer) cards(m aggregate.Metrics) []card {
	return []card{
		{Label: "Total Cases", Value: r.number(m.TotalCases), Delta: r.printer.Sprintf("%d in the last 30 days", m.CasesLast30Days)},
		{Label: "Active Cases", Value: r.number(m.ActiveCases)},
		{Label: "Critical Alerts", Value: r.number(m.CriticalCases)},
		{Label: "Animals Affected", Value: r.number(m.AnimalsAffected)},
		{Label: "Regions Monitored", Value: r.number(m.RegionsMonitored)},
	}
}

func (r *Renderer) number(n int) string {
	return r.printer.Sprintf("%d", n)
}

func (r *Renderer) recentRows(records []domain.CaseRecord) []recentRow {
	rows := make([]recentRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, recentRow{
			CaseID:   rec.CaseID,
			Date:     rec.ReportDate.Format(domain.DateLayout),
			Region:   rec.Region,
			Species:  rec.Species,
			Syndrome: rec.Syndrome,
			Severity: string(rec.Severity),
			Status:   string(rec.Status),
			Animals:  r.number(rec.AnimalsAffected),
		})
	}
	return rows
}

// form mirrors the active filters. Absent severity and status sets show every
// box checked, matching their "unconstrained" meaning.
func form(spec filter.Spec, o aggregate.FilterOptions) formState {
	f := formState{
		DateFrom: o.DateMin,
		DateTo:   o.DateMax,
		DateMin:  o.DateMin,
		DateMax:  o.DateMax,
	}
	if spec.DateFrom != nil {
		f.DateFrom = spec.DateFrom.Format(domain.DateLayout)
	}
	if spec.DateTo != nil {
		f.DateTo = spec.DateTo.Format(domain.DateLayout)
	}

	f.Regions = choices(o.Regions, spec.Region)
	f.Species = choices(o.Species, spec.Species)
	f.Severities = checks(o.Severities, spec.Severities)
	f.Statuses = checks(o.Statuses, spec.Statuses)
	return f
}

func choices(values []string, selected *string) []option {
	out := make([]option, 0, len(values))
	for _, v := range values {
		out = append(out, option{Value: v, Selected: selected != nil && *selected == v})
	}
	return out
}

func checks[T ~string](values, selected []T) []option {
	out := make([]option, 0, len(values))
	for _, v := range values {
		out = append(out, option{Value: string(v), Selected: selected == nil || slices.Contains(selected, v)})
	}
	return out
}
