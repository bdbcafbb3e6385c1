package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"climate-dashboard/internal/models"
	"climate-dashboard/internal/services"
)

var validate = validator.New()

// rangeParams are the common filter query parameters
type rangeParams struct {
	Start int `validate:"gte=1880"`
	End   int `validate:"gtefield=Start"`
}

// projectionParams are the projection overrides
type projectionParams struct {
	Rate   float64 `validate:"gte=-100,lte=100"`
	Target int     `validate:"gte=1880,lte=3000"`
}

// parseQuery reads start, end and regions, falling back to defaults. A
// present-but-empty regions parameter selects no regions.
func parseQuery(r *http.Request, ds *models.Dataset, defaults services.Query) (services.Query, error) {
	values := r.URL.Query()
	bounds := ds.Bounds()

	params := rangeParams{Start: defaults.Range.Start, End: defaults.Range.End}
	var err error
	if params.Start, err = intParam(values.Get("start"), "start", params.Start); err != nil {
		return services.Query{}, err
	}
	if params.End, err = intParam(values.Get("end"), "end", params.End); err != nil {
		return services.Query{}, err
	}
	if err := validateStruct(params); err != nil {
		return services.Query{}, err
	}

	yearRange := models.YearRange{Start: params.Start, End: params.End}
	if !yearRange.Within(bounds) {
		return services.Query{}, &models.ValidationError{
			Field:   "year_range",
			Value:   yearRange.String(),
			Message: fmt.Sprintf("year range %s is outside available data %s", yearRange, bounds),
		}
	}

	regions := defaults.Regions
	if raw, ok := values["regions"]; ok {
		regions, err = models.ParseRegionSelection(strings.Join(raw, ","))
		if err != nil {
			return services.Query{}, err
		}
	}

	return services.Query{Range: yearRange, Regions: regions}, nil
}

func parseProjection(r *http.Request, opts services.DashboardOptions) (projectionParams, error) {
	values := r.URL.Query()
	params := projectionParams{Rate: opts.ProjectionRate, Target: opts.ProjectionTarget}

	if raw := values.Get("rate"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, &models.ValidationError{Field: "rate", Value: raw, Message: "rate must be a number in mm per year"}
		}
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			return params, &models.ValidationError{Field: "rate", Value: raw, Message: "rate must be a finite number in mm per year"}
		}
		params.Rate = rate
	}
	var err error
	if params.Target, err = intParam(values.Get("target"), "target", params.Target); err != nil {
		return params, err
	}
	return params, validateStruct(params)
}

func intParam(raw, field string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &models.ValidationError{Field: field, Value: raw, Message: fmt.Sprintf("%s must be an integer year", field)}
	}
	return v, nil
}

// validateStruct runs validator tags and flattens failures into a ValidationError.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &models.ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	value := fmt.Sprint(fe.Value())

	var msg string
	switch fe.Tag() {
	case "gte":
		msg = fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		msg = fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gtefield":
		msg = fmt.Sprintf("%s must not be before %s", field, strings.ToLower(fe.Param()))
	default:
		msg = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	return &models.ValidationError{Field: field, Value: value, Message: msg}
}
