package handlers

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"climate-dashboard/internal/charts"
	"climate-dashboard/internal/export"
	"climate-dashboard/internal/models"
	"climate-dashboard/internal/services"
	"climate-dashboard/pkg/logging"
)

type pageData struct {
	View       *services.DashboardView
	AllRegions []regionOption
	Charts     []chartLink
	Exports    []exportLink
}

type regionOption struct {
	Name     string
	Selected bool
}

type chartLink struct {
	Title string
	URL   string
}

type exportLink struct {
	Label string
	URL   string
}

var chartTitles = map[charts.Kind]string{
	charts.KindTemperature: "Temperature Trends",
	charts.KindDecades:     "Decade Comparison",
	charts.KindRegional:    "Regional Comparison",
	charts.KindCO2:         "CO2 Levels",
	charts.KindCO2Growth:   "CO2 Growth Rate",
	charts.KindSeaLevel:    "Sea Level Rise",
	charts.KindProjection:  "Future Projection",
	charts.KindCorrelation: "Temperature vs CO2",
	charts.KindTrends:      "Temperature and CO2 Trends",
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Climate Change Impact Dashboard</title>
    <style>
        body { font-family: sans-serif; margin: 0 2rem 2rem; color: #222; }
        .cards { display: flex; gap: 1rem; flex-wrap: wrap; }
        .card { border: 1px solid #ddd; border-radius: 6px; padding: 1rem; min-width: 12rem; }
        .card .value { font-size: 1.6rem; font-weight: bold; }
        .card .delta { color: #555; }
        .notice { padding: .5rem 1rem; margin: .5rem 0; border-radius: 4px; }
        .notice.info { background: #e8f1fb; }
        .notice.warning { background: #fff4e0; }
        .charts img { max-width: 100%; margin: 1rem 0; }
    </style>
</head>
<body>
    <h1>Climate Change Impact Dashboard</h1>
    <form method="get" action="/">
        <label>From <input type="number" name="start" value="{{.View.Range.Start}}" min="{{.View.Bounds.Start}}" max="{{.View.Bounds.End}}"></label>
        <label>To <input type="number" name="end" value="{{.View.Range.End}}" min="{{.View.Bounds.Start}}" max="{{.View.Bounds.End}}"></label>
        {{range .AllRegions}}<label><input type="checkbox" name="regions" value="{{.Name}}"{{if .Selected}} checked{{end}}> {{.Name}}</label>
        {{end}}<input type="hidden" name="regions" value="">
        <button type="submit">Apply</button>
    </form>

    <h2>Key Climate Indicators</h2>
    <div class="cards">
    {{range .View.Cards}}
        <div class="card">
            <div>{{.Title}}</div>
            <div class="value">{{.Value}}</div>
            {{if .Available}}<div class="delta">{{.Delta}}</div>{{else}}<div class="delta">{{.Note}}</div>{{end}}
        </div>
    {{end}}
    </div>

    {{range .View.Notices}}<div class="notice {{.Level}}">{{.Message}}</div>
    {{end}}

    <p>{{.View.Correlation.Summary}}</p>

    <div class="charts">
    {{range .Charts}}
        <h3>{{.Title}}</h3>
        <img src="{{.URL}}" alt="{{.Title}}" loading="lazy">
    {{end}}
    </div>

    <h2>Download Data</h2>
    <ul>
    {{range .Exports}}<li><a href="{{.URL}}">{{.Label}}</a></li>
    {{end}}</ul>

    <p><small>Data generated {{.View.GeneratedAt.Format "2006-01-02 15:04 MST"}}. Synthetic series for demonstration only.</small></p>
</body>
</html>`))

// DashboardPage handles GET /
func (h *ClimateHandler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, _, err := h.query(r)
	if err != nil {
		h.sendServiceError(w, r, "/", err)
		return
	}
	view, err := h.dashboard.Build(ctx, q)
	if err != nil {
		h.sendServiceError(w, r, "/", err)
		return
	}

	data := buildPageData(view, q)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, data); err != nil {
		h.logger.Error(ctx, "[PAGE_RENDER_ERROR] Failed to render dashboard page", logging.Fields{}, err)
	}
}

func buildPageData(view *services.DashboardView, q services.Query) pageData {
	values := url.Values{}
	values.Set("start", strconv.Itoa(q.Range.Start))
	values.Set("end", strconv.Itoa(q.Range.End))
	names := make([]string, 0, len(q.Regions))
	for _, r := range q.Regions.Regions() {
		names = append(names, string(r))
	}
	values.Set("regions", strings.Join(names, ","))
	encoded := values.Encode()

	data := pageData{View: view}
	for _, r := range models.AllRegions {
		data.AllRegions = append(data.AllRegions, regionOption{Name: string(r), Selected: q.Regions.Has(r)})
	}
	for _, k := range charts.Kinds {
		data.Charts = append(data.Charts, chartLink{
			Title: chartTitles[k],
			URL:   "/api/charts/" + string(k) + ".png?" + encoded,
		})
	}
	for _, d := range export.Datasets {
		for _, f := range []export.Format{export.FormatCSV, export.FormatXLSX} {
			data.Exports = append(data.Exports, exportLink{
				Label: export.FileName(d, q.Range, f),
				URL:   "/api/export/" + string(d) + "." + string(f) + "?" + encoded,
			})
		}
	}
	return data
}
