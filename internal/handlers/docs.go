package handlers

import (
	"encoding/json"
	"net/http"
)

func queryParam(name, description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    false,
		"schema":      schema,
	}
}

func pathParam(name, description string, values ...string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "path",
		"description": description,
		"required":    true,
		"schema":      map[string]interface{}{"type": "string", "enum": values},
	}
}

var filterParams = []map[string]interface{}{
	queryParam("start", "First year of the range (default: configured start year, clamped to the data)", map[string]interface{}{"type": "integer", "minimum": 1880}),
	queryParam("end", "Last year of the range (default: latest year with data)", map[string]interface{}{"type": "integer"}),
	queryParam("regions", "Comma separated regions. Present but empty selects none.", map[string]interface{}{"type": "string", "example": "Global,Arctic"}),
}

func withFilters(extra ...map[string]interface{}) []map[string]interface{} {
	params := append([]map[string]interface{}{}, filterParams...)
	return append(params, extra...)
}

func jsonGet(summary, description string, params []map[string]interface{}, schema string) map[string]interface{} {
	responses := map[string]interface{}{
		"200": map[string]interface{}{
			"description": "Successful response",
			"content": map[string]interface{}{
				"application/json": map[string]interface{}{
					"schema": map[string]string{"$ref": "#/components/schemas/" + schema},
				},
			},
		},
	}
	if len(params) > 0 {
		responses["400"] = map[string]interface{}{"description": "Invalid year range, region or parameter"}
	}
	return map[string]interface{}{
		"get": map[string]interface{}{
			"summary":     summary,
			"description": description,
			"parameters":  params,
			"responses":   responses,
		},
	}
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the Climate Dashboard API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Climate Dashboard API",
			"description": "Synthetic climate indicators (temperature anomaly, CO2, sea level) with filtering, metrics, projections, charts and exports",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Climate Dashboard Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/dashboard": jsonGet("Get the dashboard view",
				"Metric cards, notices, filtered tables, decade comparison, growth, projection and correlation for the selection",
				withFilters(), "DashboardView"),
			"/api/temperature": jsonGet("Get temperature anomalies",
				"Temperature anomaly rows for the selected years and regions",
				withFilters(), "SeriesResponse"),
			"/api/co2": jsonGet("Get CO2 concentrations",
				"Atmospheric CO2 rows for the selected years (data starts 1958)",
				withFilters(), "SeriesResponse"),
			"/api/sea-level": jsonGet("Get sea level rise",
				"Sea level rows for the selected years (data starts 1993)",
				withFilters(), "SeriesResponse"),
			"/api/metrics/decades": jsonGet("Get decade averages",
				"Mean temperature anomaly per decade for one region",
				withFilters(queryParam("region", "Region to average (default: Global)", map[string]interface{}{"type": "string", "default": "Global"})),
				"DecadeComparison"),
			"/api/metrics/growth": jsonGet("Get CO2 growth rate",
				"Year-over-year CO2 change in ppm",
				withFilters(), "SeriesResponse"),
			"/api/metrics/correlation": jsonGet("Get temperature/CO2 correlation",
				"Pearson correlation between Global temperature anomaly and CO2 over the full record",
				nil, "CorrelationView"),
			"/api/projection": jsonGet("Get sea level projection",
				"Linear sea level projection from the last selected year",
				withFilters(
					queryParam("rate", "Rise in mm per year (default: 3.3)", map[string]interface{}{"type": "number", "default": 3.3}),
					queryParam("target", "Target year (default: 2100)", map[string]interface{}{"type": "integer", "default": 2100}),
				), "ProjectionView"),
			"/api/export/{dataset}.{format}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Download a filtered dataset",
					"description": "Filtered table as CSV or XLSX with a download filename",
					"parameters": withFilters(
						pathParam("dataset", "Dataset to export", "temperature", "co2", "sea_level"),
						pathParam("format", "File format", "csv", "xlsx"),
					),
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "File attachment",
							"content": map[string]interface{}{
								"text/csv": map[string]interface{}{"schema": map[string]string{"type": "string"}},
								"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": map[string]interface{}{"schema": map[string]string{"type": "string", "format": "binary"}},
							},
						},
						"400": map[string]interface{}{"description": "Invalid parameters"},
					},
				},
			},
			"/api/charts/{chart}.{format}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Render a chart",
					"description": "Chart image for the selection",
					"parameters": withFilters(
						pathParam("chart", "Chart kind", "temperature", "co2", "co2-growth", "sea-level", "projection", "decades", "regional", "correlation", "trends"),
						pathParam("format", "Image format", "png", "svg"),
					),
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Chart image",
							"content": map[string]interface{}{
								"image/png":     map[string]interface{}{"schema": map[string]string{"type": "string", "format": "binary"}},
								"image/svg+xml": map[string]interface{}{"schema": map[string]string{"type": "string"}},
							},
						},
						"400": map[string]interface{}{"description": "Invalid parameters"},
						"404": map[string]interface{}{"description": "No data for the selection"},
					},
				},
			},
			"/api/admin/regenerate": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Regenerate the dataset",
					"description": "Draws a new dataset and publishes it to the warehouse when enabled",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Regenerated",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]string{"$ref": "#/components/schemas/RegenerateResponse"},
								},
							},
						},
					},
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Service status, dataset age and warehouse circuit state",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{"description": "Service is healthy"},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"SeriesResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"range": map[string]interface{}{"$ref": "#/components/schemas/YearRange"},
						"count": map[string]string{"type": "integer"},
						"data":  map[string]interface{}{"type": "array", "items": map[string]string{"type": "object"}},
					},
				},
				"YearRange": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"start": map[string]string{"type": "integer"},
						"end":   map[string]string{"type": "integer"},
					},
				},
				"DashboardView":    map[string]string{"type": "object"},
				"DecadeComparison": map[string]string{"type": "object"},
				"ProjectionView":   map[string]string{"type": "object"},
				"CorrelationView": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"available":   map[string]string{"type": "boolean"},
						"coefficient": map[string]string{"type": "number"},
						"strength":    map[string]string{"type": "string"},
						"summary":     map[string]string{"type": "string"},
					},
				},
				"RegenerateResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"upper_bound":   map[string]string{"type": "integer"},
						"seed":          map[string]string{"type": "integer"},
						"generated_at":  map[string]string{"type": "string", "format": "date-time"},
						"generation_id": map[string]string{"type": "string"},
						"publish_error": map[string]string{"type": "string"},
					},
				},
				"ErrorResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error":   map[string]string{"type": "string"},
						"message": map[string]string{"type": "string"},
						"code":    map[string]string{"type": "integer"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
