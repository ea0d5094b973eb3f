package models

import (
	"time"
)

// SeriesPatterns is the ephemeral per-call summary of a series, recomputed on
// every forecast or detection call and never persisted.
type SeriesPatterns struct {
	HourlyAverages  [24]float64 `json:"hourly_averages"`
	DailyAverages   [7]float64  `json:"daily_averages"` // slot 0 = Sunday
	MonthlyAverages [12]float64 `json:"monthly_averages"`
	PeakHour        int         `json:"peak_hour"`
	PeakDay         int         `json:"peak_day"`

	// SeasonalStrength and TrendStrength are dimensionless 0..1 measures of
	// how strongly consumption depends on time-of-day and on a linear trend.
	SeasonalStrength float64 `json:"seasonal_strength"`
	TrendStrength    float64 `json:"trend_strength"`
}

// ForecastPoint is one predicted reading. Points are spaced 30 minutes apart
// starting after the last observed timestamp. Model carries the selected
// model's name as a label; the values themselves come from the ensemble.
type ForecastPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Predicted  float64   `json:"predicted"`
	UpperBound float64   `json:"upper_bound"`
	LowerBound float64   `json:"lower_bound"`
	Model      string    `json:"model"`
}

// ModelForecasts exposes the raw per-model forecasts alongside the blended
// ensemble that backs the emitted points.
type ModelForecasts struct {
	Selected  string               `json:"selected"`
	Forecasts map[string][]float64 `json:"forecasts"`
	Ensemble  []float64            `json:"ensemble"`
}

// ModelAccuracy holds backtested errors for one model against a held-out tail.
type ModelAccuracy struct {
	MAPE float64 `json:"mape"`
	RMSE float64 `json:"rmse"`
}

// ForecastMetadata describes how the forecast was produced.
type ForecastMetadata struct {
	Patterns      SeriesPatterns           `json:"patterns"`
	Confidence    float64                  `json:"confidence"`
	Trend         string                   `json:"trend"` // increasing, decreasing or stable
	LastDataPoint Observation              `json:"last_data_point"`
	ModelAccuracy map[string]ModelAccuracy `json:"model_accuracy,omitempty"`
}

// ForecastResult is the complete output of one forecast call.
type ForecastResult struct {
	Forecast []ForecastPoint  `json:"forecast"`
	Models   ModelForecasts   `json:"models"`
	Metadata ForecastMetadata `json:"metadata"`
}

// Anomaly is one flagged observation. Exactly one of ZScore, Deviation or
// Residual is set, according to Method.
type Anomaly struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	ZScore    float64   `json:"z_score,omitempty"`
	Deviation float64   `json:"deviation,omitempty"`
	Residual  float64   `json:"residual,omitempty"`
	Type      string    `json:"type"`
	Method    string    `json:"method"`
	Severity  string    `json:"severity"`
}
