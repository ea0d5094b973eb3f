package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"water-meter-analytics/models"
)

var seriesStart = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func hourlySeries(values []float64) []models.Observation {
	series := make([]models.Observation, len(values))
	for i, v := range values {
		series[i] = models.Observation{
			Timestamp: seriesStart.Add(time.Duration(i) * time.Hour),
			Value:     v,
		}
	}
	return series
}

func noisySeries(n int) []models.Observation {
	values := make([]float64, n)
	for i := range values {
		values[i] = 20 + 5*math.Sin(float64(i)/5) + 0.1*float64(i)
	}
	return hourlySeries(values)
}

func rampSeries(n int) []models.Observation {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	return hourlySeries(values)
}

func sinusoidSeries(n int) []models.Observation {
	values := make([]float64, n)
	for i := range values {
		hour := i % 24
		values[i] = 50 + 10*math.Cos(2*math.Pi*float64(hour-14)/24)
	}
	return hourlySeries(values)
}

func TestGenerateShape(t *testing.T) {
	series := noisySeries(100)

	result, err := Generate(series, models.ForecastOptions{})
	require.NoError(t, err)

	// Default horizon: 24 hours at 30-minute spacing.
	require.Len(t, result.Forecast, 48)

	lastTS := series[len(series)-1].Timestamp
	for i, p := range result.Forecast {
		assert.GreaterOrEqual(t, p.Predicted, 0.0)
		assert.GreaterOrEqual(t, p.LowerBound, 0.0)
		assert.LessOrEqual(t, p.LowerBound, p.Predicted)
		assert.GreaterOrEqual(t, p.UpperBound, p.Predicted)
		assert.Equal(t, lastTS.Add(time.Duration(i+1)*Step), p.Timestamp)
		assert.Equal(t, result.Models.Selected, p.Model)
	}

	assert.Equal(t, series[len(series)-1], result.Metadata.LastDataPoint)
	assert.Equal(t, 0.95, result.Metadata.Confidence)
}

func TestGenerateUncertaintyGrows(t *testing.T) {
	result, err := Generate(noisySeries(100), models.ForecastOptions{})
	require.NoError(t, err)

	prev := 0.0
	for _, p := range result.Forecast {
		spread := p.UpperBound - p.Predicted
		assert.GreaterOrEqual(t, spread, prev)
		prev = spread
	}
}

func TestGenerateEmitsEnsemble(t *testing.T) {
	result, err := Generate(noisySeries(100), models.ForecastOptions{})
	require.NoError(t, err)

	require.Len(t, result.Models.Ensemble, len(result.Forecast))
	for i, p := range result.Forecast {
		assert.Equal(t, result.Models.Ensemble[i], p.Predicted)
	}

	// All four raw model forecasts are always reported.
	require.Len(t, result.Models.Forecasts, 4)
	for _, name := range []string{
		models.ModelHoltWinters, models.ModelExponential,
		models.ModelLinear, models.ModelMovingAverage,
	} {
		assert.Len(t, result.Models.Forecasts[name], len(result.Forecast))
	}
}

func TestGenerateAutoSelectsHoltWintersOnSeasonalSeries(t *testing.T) {
	result, err := Generate(sinusoidSeries(72), models.ForecastOptions{})
	require.NoError(t, err)

	assert.Equal(t, models.ModelHoltWinters, result.Models.Selected)
	assert.Equal(t, 14, result.Metadata.Patterns.PeakHour)
	assert.Greater(t, result.Metadata.Patterns.SeasonalStrength, 0.5)
	assert.Less(t, result.Metadata.Patterns.TrendStrength, 0.2)
}

func TestGenerateAutoSelectsLinearOnTrendingSeries(t *testing.T) {
	series := rampSeries(30)

	result, err := Generate(series, models.ForecastOptions{})
	require.NoError(t, err)

	assert.Equal(t, models.ModelLinear, result.Models.Selected)
	assert.Equal(t, "increasing", result.Metadata.Trend)

	lastValue := series[len(series)-1].Value

	// The raw linear forecast continues past the last reading everywhere.
	for _, v := range result.Models.Forecasts[models.ModelLinear] {
		assert.Greater(t, v, lastValue)
	}

	// The blended output is pulled down by the flat models early on but must
	// overtake the last reading as the trend component compounds.
	final := result.Forecast[len(result.Forecast)-1]
	assert.Greater(t, final.Predicted, lastValue)
}

func TestGenerateExplicitSelection(t *testing.T) {
	result, err := Generate(noisySeries(60), models.ForecastOptions{
		ModelSelection: models.ModelMovingAverage,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ModelMovingAverage, result.Models.Selected)
	assert.Equal(t, models.ModelMovingAverage, result.Forecast[0].Model)

	// The moving-average forecast itself is flat across all steps.
	ma := result.Models.Forecasts[models.ModelMovingAverage]
	for _, v := range ma[1:] {
		assert.Equal(t, ma[0], v)
	}
}

func TestGenerateHorizonConvention(t *testing.T) {
	result, err := Generate(noisySeries(60), models.ForecastOptions{ForecastHours: 6})
	require.NoError(t, err)
	assert.Len(t, result.Forecast, 12)
}

func TestGenerateConfidenceLevelWidensBands(t *testing.T) {
	series := noisySeries(100)

	narrow, err := Generate(series, models.ForecastOptions{ConfidenceLevel: 0.8})
	require.NoError(t, err)
	wide, err := Generate(series, models.ForecastOptions{ConfidenceLevel: 0.95})
	require.NoError(t, err)

	for i := range narrow.Forecast {
		assert.Less(t,
			narrow.Forecast[i].UpperBound-narrow.Forecast[i].Predicted,
			wide.Forecast[i].UpperBound-wide.Forecast[i].Predicted)
	}
}

func TestGenerateBandsUseTrailingWindow(t *testing.T) {
	// Noisy first half, dead-flat last 50 observations. The standard error
	// comes from the trailing 50-observation window only, so the bands
	// collapse onto the prediction despite the early noise.
	values := make([]float64, 100)
	for i := range values {
		if i < 50 {
			values[i] = 5 + 10*float64(i%2)
		} else {
			values[i] = 10
		}
	}

	result, err := Generate(hourlySeries(values), models.ForecastOptions{})
	require.NoError(t, err)

	for _, p := range result.Forecast {
		assert.Equal(t, p.Predicted, p.UpperBound)
		assert.Equal(t, p.Predicted, p.LowerBound)
	}
}

func TestGenerateBacktestAccuracy(t *testing.T) {
	result, err := Generate(noisySeries(100), models.ForecastOptions{})
	require.NoError(t, err)

	require.Len(t, result.Metadata.ModelAccuracy, 4)
	for name, acc := range result.Metadata.ModelAccuracy {
		assert.GreaterOrEqual(t, acc.MAPE, 0.0, name)
		assert.GreaterOrEqual(t, acc.RMSE, 0.0, name)
	}
}

func TestGenerateBacktestSkippedOnShortSeries(t *testing.T) {
	// 10 observations hold out only 2 points, below the minimum of 3.
	result, err := Generate(noisySeries(10), models.ForecastOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Metadata.ModelAccuracy)
}

func TestGenerateInsufficientData(t *testing.T) {
	_, err := Generate(hourlySeries([]float64{1, 2}), models.ForecastOptions{})
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestGenerateRejectsInvalidSeries(t *testing.T) {
	series := hourlySeries([]float64{1, 2, 3, 4})
	series[2].Value = math.NaN()
	_, err := Generate(series, models.ForecastOptions{})
	assert.ErrorIs(t, err, models.ErrInvalidSeries)

	series = hourlySeries([]float64{1, 2, 3, 4})
	series[1].Timestamp = series[3].Timestamp.Add(time.Hour)
	_, err = Generate(series, models.ForecastOptions{})
	assert.ErrorIs(t, err, models.ErrInvalidSeries)
}

func TestGenerateRejectsInvalidOptions(t *testing.T) {
	series := noisySeries(20)

	_, err := Generate(series, models.ForecastOptions{ConfidenceLevel: 0.5})
	assert.ErrorIs(t, err, models.ErrInvalidOptions)

	_, err = Generate(series, models.ForecastOptions{ModelSelection: "prophet"})
	assert.ErrorIs(t, err, models.ErrInvalidOptions)

	_, err = Generate(series, models.ForecastOptions{ForecastHours: -1})
	assert.ErrorIs(t, err, models.ErrInvalidOptions)
}
