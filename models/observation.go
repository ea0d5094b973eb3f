package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// MinObservations is the smallest series any forecast or detection accepts.
	MinObservations = 3

	// MaxSeriesLength bounds the input so pattern analysis and Holt-Winters
	// stay predictable for a single call.
	MaxSeriesLength = 100000
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidSeries    = errors.New("invalid series")
	ErrInvalidOptions   = errors.New("invalid options")
)

// Observation is one numeric reading of one meter at one point in time.
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// ValidateSeries checks a series at the public boundary: minimum length,
// maximum length, ascending timestamps and finite values. Internal helpers
// assume a series that passed this check.
func ValidateSeries(series []Observation) error {
	if len(series) < MinObservations {
		return fmt.Errorf("%w: got %d observations, need at least %d",
			ErrInsufficientData, len(series), MinObservations)
	}

	if len(series) > MaxSeriesLength {
		return fmt.Errorf("%w: %d observations exceeds limit of %d",
			ErrInvalidSeries, len(series), MaxSeriesLength)
	}

	for i, obs := range series {
		if math.IsNaN(obs.Value) || math.IsInf(obs.Value, 0) {
			return fmt.Errorf("%w: non-finite value at index %d", ErrInvalidSeries, i)
		}
		if i > 0 && obs.Timestamp.Before(series[i-1].Timestamp) {
			return fmt.Errorf("%w: timestamps not in ascending order at index %d",
				ErrInvalidSeries, i)
		}
	}

	return nil
}

// Values extracts the numeric sequence from a series.
func Values(series []Observation) []float64 {
	values := make([]float64, len(series))
	for i, obs := range series {
		values[i] = obs.Value
	}
	return values
}
