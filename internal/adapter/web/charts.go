package web

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/couchcryptid/wildlife-health-watch/internal/aggregate"
	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
)

// severityColors follows the dashboard palette, green for mild to red for critical.
var severityColors = map[domain.Severity]string{
	domain.SeverityLow:      "#95D5B2",
	domain.SeverityModerate: "#74C69D",
	domain.SeverityHigh:     "#F4A261",
	domain.SeverityCritical: "#E63946",
}

const (
	primaryColor  = "#2D6A4F"
	minMarkerSize = 6
	maxMarkerSize = 24
)

// mapChart plots case locations on longitude/latitude axes, one series per
// severity so the legend doubles as a severity toggle.
func mapChart(points []aggregate.GeoPoint) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: "case-map", Width: "100%", Height: "480px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Longitude", Type: "value", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Latitude", Type: "value", Scale: opts.Bool(true)}),
	)

	bySeverity := make(map[domain.Severity][]opts.ScatterData)
	for _, p := range points {
		bySeverity[p.Severity] = append(bySeverity[p.Severity], opts.ScatterData{
			Name:       fmt.Sprintf("%s %s, %s (%s)", p.CaseID, p.Species, p.Syndrome, p.Region),
			Value:      []float64{p.Longitude, p.Latitude},
			SymbolSize: markerSize(p.AnimalsAffected),
		})
	}
	for _, sev := range domain.Severities {
		data, ok := bySeverity[sev]
		if !ok {
			continue
		}
		scatter.AddSeries(string(sev), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: severityColors[sev]}))
	}
	return scatter
}

func markerSize(animals int) int {
	return min(minMarkerSize+animals, maxMarkerSize)
}

// trendChart shows weekly case counts.
func trendChart(weeks []aggregate.WeekBucket) *charts.Bar {
	labels := make([]string, 0, len(weeks))
	data := make([]opts.BarData, 0, len(weeks))
	for _, w := range weeks {
		labels = append(labels, w.Label)
		data = append(data, opts.BarData{Name: w.Label, Value: w.Cases})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: "case-trend", Width: "100%", Height: "480px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Week", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Cases"}),
	)
	bar.SetXAxis(labels).AddSeries("Cases", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: primaryColor}))
	return bar
}

// speciesChart ranks species by case count.
func speciesChart(tallies []aggregate.Tally) *charts.Bar {
	names := make([]string, 0, len(tallies))
	data := make([]opts.BarData, 0, len(tallies))
	for _, t := range tallies {
		names = append(names, t.Name)
		data = append(data, opts.BarData{Name: t.Name, Value: t.Count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: "species", Width: "100%", Height: "400px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Species", AxisLabel: &opts.AxisLabel{Rotate: 30}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Cases"}),
	)
	bar.SetXAxis(names).AddSeries("Cases", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: primaryColor}))
	return bar
}

// syndromeChart shows the syndrome mix as a donut.
func syndromeChart(tallies []aggregate.Tally) *charts.Pie {
	data := make([]opts.PieData, 0, len(tallies))
	for _, t := range tallies {
		data = append(data, opts.PieData{Name: t.Name, Value: t.Count})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: "syndromes", Width: "100%", Height: "400px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll"}),
	)
	pie.AddSeries("Syndromes", data,
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}))
	return pie
}

type snippetRenderer interface {
	RenderSnippet() render.ChartSnippet
}

var snippetTmpl = template.Must(template.New("snippet").Parse(`{{.Element}} {{.Script}}`))

// renderSnippet embeds a chart's element and script into the page.
func renderSnippet(chart snippetRenderer) (template.HTML, error) {
	snippet := chart.RenderSnippet()

	data := struct {
		Element template.HTML
		Script  template.HTML
	}{
		Element: template.HTML(snippet.Element), //nolint:gosec // generated by go-echarts
		Script:  template.HTML(snippet.Script),  //nolint:gosec // generated by go-echarts
	}

	var buf bytes.Buffer
	if err := snippetTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render chart snippet: %w", err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // assembled from trusted snippets
}
