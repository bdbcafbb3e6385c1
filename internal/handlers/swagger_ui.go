package handlers

import (
	"html/template"
	"net/http"

	"climate-dashboard/pkg/logging"
)

const (
	swaggerUIVersion = "5.10.0"
	openAPIPath      = "/api/docs/openapi.json"
)

type docsPage struct {
	Title     string
	SpecURL   string
	AssetBase string
}

var docsTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="{{.AssetBase}}/swagger-ui.css">
<style>
body { margin: 0; font-family: sans-serif; }
.docs-nav { padding: 8px 16px; background: #1f3b57; }
.docs-nav a { color: #fff; margin-right: 16px; text-decoration: none; }
</style>
</head>
<body>
<nav class="docs-nav">
<a href="/">Dashboard</a>
<a href="{{.SpecURL}}">OpenAPI JSON</a>
</nav>
<div id="swagger-ui" data-spec-url="{{.SpecURL}}"></div>
<script src="{{.AssetBase}}/swagger-ui-bundle.js"></script>
<script>
window.ui = SwaggerUIBundle({
  url: document.getElementById("swagger-ui").dataset.specUrl,
  dom_id: "#swagger-ui",
  docExpansion: "list",
  defaultModelsExpandDepth: 0,
  tryItOutEnabled: true,
  supportedSubmitMethods: ["get", "post"],
  presets: [SwaggerUIBundle.presets.apis]
});
</script>
</body>
</html>`))

// Docs serves the interactive API reference backed by OpenAPISpec.
func (h *ClimateHandler) Docs(w http.ResponseWriter, r *http.Request) {
	page := docsPage{
		Title:     "Climate Dashboard API Documentation",
		SpecURL:   openAPIPath,
		AssetBase: "https://unpkg.com/swagger-ui-dist@" + swaggerUIVersion,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := docsTemplate.Execute(w, page); err != nil {
		h.logger.Error(r.Context(), "[DOCS_ERROR] Failed to render API docs", logging.Fields{}, err)
	}
}
