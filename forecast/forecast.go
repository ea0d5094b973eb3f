// Package forecast orchestrates the forecasting pipeline: it validates input
// at the boundary, runs the pattern analyzer, computes all four model
// forecasts, blends them into a strength-weighted ensemble, attaches
// confidence bands and backtests each model against a held-out tail.
package forecast

import (
	"math"
	"time"

	"water-meter-analytics/models"
	"water-meter-analytics/patterns"
	"water-meter-analytics/smoothing"
	"water-meter-analytics/stats"
)

// Step is the fixed spacing between forecast points.
const Step = 30 * time.Minute

// errorWindow is how many trailing observations seed the standard error used
// for confidence bands.
const errorWindow = 50

// Model selection thresholds for auto mode.
const (
	seasonalGate    = 0.6
	strongTrendGate = 0.7
	weakTrendGate   = 0.3
)

// Generate produces a forecast for an ascending, timestamp-ordered series.
// Zero-valued option fields take their defaults. The emitted points carry the
// ensemble values labeled with the selected model's name; the raw per-model
// forecasts are reported under Models.
func Generate(series []models.Observation, opts models.ForecastOptions) (models.ForecastResult, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return models.ForecastResult{}, err
	}
	if err := models.ValidateSeries(series); err != nil {
		return models.ForecastResult{}, err
	}

	values := models.Values(series)
	pat := patterns.Analyze(series)
	steps := opts.Steps()

	forecasts := runModels(values, steps)

	selected := opts.ModelSelection
	if selected == models.ModelAuto {
		selected = selectModel(pat)
	}

	ensemble := blend(forecasts, pat, steps)

	window := stats.NewRollingWindow(errorWindow)
	for _, v := range values {
		window.Add(v)
	}
	standardError := window.StdDev()
	z := opts.ZScore()
	widening := 1 + pat.SeasonalStrength*0.3

	lastTS := series[len(series)-1].Timestamp
	points := make([]models.ForecastPoint, steps)
	for i := range points {
		uncertainty := standardError * math.Sqrt(float64(i+1)) * widening
		predicted := ensemble[i]
		points[i] = models.ForecastPoint{
			Timestamp:  lastTS.Add(time.Duration(i+1) * Step),
			Predicted:  predicted,
			UpperBound: predicted + z*uncertainty,
			LowerBound: math.Max(0, predicted-z*uncertainty),
			Model:      selected,
		}
	}

	slope, _ := stats.LinearRegression(stats.Indices(len(values)), values)

	return models.ForecastResult{
		Forecast: points,
		Models: models.ModelForecasts{
			Selected:  selected,
			Forecasts: forecasts,
			Ensemble:  ensemble,
		},
		Metadata: models.ForecastMetadata{
			Patterns:      pat,
			Confidence:    opts.ConfidenceLevel,
			Trend:         trendLabel(slope, pat.TrendStrength),
			LastDataPoint: series[len(series)-1],
			ModelAccuracy: backtest(values),
		},
	}, nil
}

// runModels computes every model forecast unconditionally; the accuracy
// comparison needs all of them regardless of which one is selected.
func runModels(values []float64, steps int) map[string][]float64 {
	return map[string][]float64{
		models.ModelHoltWinters: smoothing.HoltWinters(values,
			smoothing.DefaultAlpha, smoothing.DefaultBeta, smoothing.DefaultGamma,
			smoothing.DefaultSeasonLength, steps),
		models.ModelExponential:   smoothing.ExponentialSmoothing(values, smoothing.DefaultAlpha, steps),
		models.ModelLinear:        smoothing.LinearTrend(values, steps),
		models.ModelMovingAverage: smoothing.MovingAverageForecast(values, smoothing.DefaultWindow, steps),
	}
}

func selectModel(pat models.SeriesPatterns) string {
	switch {
	case pat.SeasonalStrength > seasonalGate:
		return models.ModelHoltWinters
	case pat.TrendStrength > strongTrendGate:
		return models.ModelLinear
	case pat.TrendStrength > weakTrendGate:
		return models.ModelExponential
	default:
		return models.ModelMovingAverage
	}
}

// blend averages the model forecasts with weights driven by the detected
// pattern strengths, normalized by their sum.
func blend(forecasts map[string][]float64, pat models.SeriesPatterns, steps int) []float64 {
	weights := map[string]float64{
		models.ModelHoltWinters:   pat.SeasonalStrength,
		models.ModelExponential:   pat.TrendStrength * 0.7,
		models.ModelLinear:        pat.TrendStrength,
		models.ModelMovingAverage: 1 - math.Max(pat.SeasonalStrength, pat.TrendStrength),
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		for name := range weights {
			weights[name] = 1
		}
		total = float64(len(weights))
	}

	ensemble := make([]float64, steps)
	for name, fc := range forecasts {
		w := weights[name] / total
		for i := 0; i < steps && i < len(fc); i++ {
			ensemble[i] += w * fc[i]
		}
	}
	return ensemble
}

// backtest holds out the series tail, retrains every model on the remainder
// and reports MAPE and RMSE against the held-out values. Too short a holdout
// yields no accuracy report.
func backtest(values []float64) map[string]models.ModelAccuracy {
	holdout := len(values) / 5
	if holdout > 12 {
		holdout = 12
	}
	if holdout < models.MinObservations {
		return nil
	}

	train := values[:len(values)-holdout]
	actual := values[len(values)-holdout:]

	accuracy := make(map[string]models.ModelAccuracy, 4)
	for name, fc := range runModels(train, holdout) {
		accuracy[name] = models.ModelAccuracy{
			MAPE: stats.MAPE(actual, fc),
			RMSE: stats.RMSE(actual, fc),
		}
	}
	return accuracy
}

func trendLabel(slope, strength float64) string {
	if strength <= weakTrendGate {
		return "stable"
	}
	if slope > 0 {
		return "increasing"
	}
	return "decreasing"
}
