package models

import "fmt"

// EmptySeriesError is returned when a statistic is requested over zero rows.
// Callers render it as an "N/A" placeholder.
type EmptySeriesError struct {
	Series string
}

func (e *EmptySeriesError) Error() string {
	if e.Series == "" {
		return "series is empty"
	}
	return fmt.Sprintf("%s series is empty", e.Series)
}

// IsTransient returns false as the same input always yields the same error
func (e *EmptySeriesError) IsTransient() bool {
	return false
}

// InsufficientDataError is returned by correlation when fewer than Need
// points survive the join, or when a side has no variance.
type InsufficientDataError struct {
	Series string
	Have   int
	Need   int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	msg := fmt.Sprintf("insufficient data for %s: have %d points, need %d", e.Series, e.Have, e.Need)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *InsufficientDataError) IsTransient() bool {
	return false
}

// ValidationError represents a data validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
