package models

import (
	"fmt"
)

// Forecast model names. ModelEnsemble labels the blended output series and is
// never a valid selection.
const (
	ModelAuto          = "auto"
	ModelHoltWinters   = "holtWinters"
	ModelExponential   = "exponential"
	ModelLinear        = "linear"
	ModelMovingAverage = "movingAverage"
	ModelEnsemble      = "ensemble"
)

// Anomaly detection method names.
const (
	MethodStatistical = "statistical"
	MethodSeasonal    = "seasonal"
	MethodTrend       = "trend"
)

// Anomaly severities.
const (
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// ForecastOptions configures one forecast call.
type ForecastOptions struct {
	// ForecastHours is the horizon length in hours. Points are emitted at a
	// fixed 30-minute spacing, so the result holds ForecastHours*2 points.
	ForecastHours int `json:"forecast_hours"`

	ModelSelection string `json:"model_selection"`

	// ConfidenceLevel must be one of 0.8, 0.9 or 0.95.
	ConfidenceLevel float64 `json:"confidence_level"`
}

// DefaultForecastOptions returns the documented defaults: a 24-hour horizon,
// automatic model selection and a 95% confidence level.
func DefaultForecastOptions() ForecastOptions {
	return ForecastOptions{
		ForecastHours:   24,
		ModelSelection:  ModelAuto,
		ConfidenceLevel: 0.95,
	}
}

// WithDefaults fills zero-valued fields with their defaults.
func (o ForecastOptions) WithDefaults() ForecastOptions {
	def := DefaultForecastOptions()
	if o.ForecastHours == 0 {
		o.ForecastHours = def.ForecastHours
	}
	if o.ModelSelection == "" {
		o.ModelSelection = def.ModelSelection
	}
	if o.ConfidenceLevel == 0 {
		o.ConfidenceLevel = def.ConfidenceLevel
	}
	return o
}

func (o ForecastOptions) Validate() error {
	if o.ForecastHours <= 0 {
		return fmt.Errorf("%w: forecast_hours must be positive, got %d",
			ErrInvalidOptions, o.ForecastHours)
	}

	switch o.ModelSelection {
	case ModelAuto, ModelHoltWinters, ModelExponential, ModelLinear, ModelMovingAverage:
	default:
		return fmt.Errorf("%w: unknown model selection %q", ErrInvalidOptions, o.ModelSelection)
	}

	switch o.ConfidenceLevel {
	case 0.8, 0.9, 0.95:
	default:
		return fmt.Errorf("%w: confidence_level must be 0.8, 0.9 or 0.95, got %v",
			ErrInvalidOptions, o.ConfidenceLevel)
	}

	return nil
}

// Steps is the number of 30-minute forecast points covering ForecastHours.
func (o ForecastOptions) Steps() int {
	return o.ForecastHours * 2
}

// ZScore maps the confidence level to its normal quantile.
func (o ForecastOptions) ZScore() float64 {
	switch o.ConfidenceLevel {
	case 0.8:
		return 1.28
	case 0.9:
		return 1.64
	default:
		return 1.96
	}
}

// AnomalyOptions configures one detection call.
type AnomalyOptions struct {
	// Threshold is the z-score limit for the statistical method and the
	// residual stddev multiplier for the trend method.
	Threshold float64 `json:"threshold"`

	// WindowSize is the sliding window length for the trend method.
	WindowSize int `json:"window_size"`

	// Methods selects which detectors run. Empty means all three.
	Methods []string `json:"methods"`
}

// DefaultAnomalyOptions returns the documented defaults: threshold 2.5,
// window size 24, all three methods.
func DefaultAnomalyOptions() AnomalyOptions {
	return AnomalyOptions{
		Threshold:  2.5,
		WindowSize: 24,
		Methods:    []string{MethodStatistical, MethodSeasonal, MethodTrend},
	}
}

// WithDefaults fills zero-valued fields with their defaults.
func (o AnomalyOptions) WithDefaults() AnomalyOptions {
	def := DefaultAnomalyOptions()
	if o.Threshold == 0 {
		o.Threshold = def.Threshold
	}
	if o.WindowSize == 0 {
		o.WindowSize = def.WindowSize
	}
	if len(o.Methods) == 0 {
		o.Methods = def.Methods
	}
	return o
}

func (o AnomalyOptions) Validate() error {
	if o.Threshold <= 0 {
		return fmt.Errorf("%w: threshold must be positive, got %v", ErrInvalidOptions, o.Threshold)
	}

	if o.WindowSize < MinObservations {
		return fmt.Errorf("%w: window_size must be at least %d, got %d",
			ErrInvalidOptions, MinObservations, o.WindowSize)
	}

	for _, m := range o.Methods {
		switch m {
		case MethodStatistical, MethodSeasonal, MethodTrend:
		default:
			return fmt.Errorf("%w: unknown detection method %q", ErrInvalidOptions, m)
		}
	}

	return nil
}

// HasMethod reports whether a detection method is enabled.
func (o AnomalyOptions) HasMethod(method string) bool {
	for _, m := range o.Methods {
		if m == method {
			return true
		}
	}
	return false
}
