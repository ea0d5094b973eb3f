// Package smoothing implements the four forecasting models: simple
// exponential smoothing, Holt-Winters seasonal smoothing, moving-average and
// linear-trend extrapolation. Each model maps a historical value sequence and
// a horizon to a forecast of that length, clamped to non-negative values.
package smoothing

import (
	"math"

	"water-meter-analytics/stats"
)

// Default smoothing parameters.
const (
	DefaultAlpha        = 0.3
	DefaultBeta         = 0.1
	DefaultGamma        = 0.1
	DefaultSeasonLength = 24
	DefaultWindow       = 7
)

// ExponentialSmoothing carries a single smoothed level through the history
// and repeats it for every future step. The flat forecast is deliberate: it
// trades accuracy on trending series for robustness on noisy ones.
func ExponentialSmoothing(values []float64, alpha float64, steps int) []float64 {
	forecast := make([]float64, steps)
	if len(values) == 0 {
		return forecast
	}

	level := values[0]
	for _, v := range values[1:] {
		level = alpha*v + (1-alpha)*level
	}

	level = math.Max(0, level)
	for i := range forecast {
		forecast[i] = level
	}
	return forecast
}

// HoltWinters runs triple exponential smoothing with a multiplicative
// seasonal index per season slot. It needs at least two full seasons of
// history; shorter input falls back to simple exponential smoothing.
func HoltWinters(values []float64, alpha, beta, gamma float64, seasonLength, steps int) []float64 {
	n := len(values)
	if seasonLength < 2 || n < 2*seasonLength {
		return ExponentialSmoothing(values, alpha, steps)
	}

	seasonal := initialSeasonalIndices(values, seasonLength)

	level := stats.Mean(values[:seasonLength])
	trend := (stats.Mean(values[seasonLength:2*seasonLength]) - level) / float64(seasonLength)

	for i, v := range values {
		slot := i % seasonLength
		idx := seasonal[slot]
		if idx == 0 {
			idx = 1
		}

		prevLevel := level
		level = alpha*(v/idx) + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		if level != 0 {
			seasonal[slot] = gamma*(v/level) + (1-gamma)*seasonal[slot]
		}
	}

	forecast := make([]float64, steps)
	for i := range forecast {
		slot := (n + i) % seasonLength
		forecast[i] = math.Max(0, (level+float64(i+1)*trend)*seasonal[slot])
	}
	return forecast
}

// initialSeasonalIndices seeds each slot with the average ratio of its
// historical values to the overall mean level.
func initialSeasonalIndices(values []float64, seasonLength int) []float64 {
	seasonal := make([]float64, seasonLength)
	overall := stats.Mean(values)
	if overall == 0 {
		for i := range seasonal {
			seasonal[i] = 1
		}
		return seasonal
	}

	counts := make([]int, seasonLength)
	for i, v := range values {
		slot := i % seasonLength
		seasonal[slot] += v
		counts[slot]++
	}
	for i := range seasonal {
		if counts[i] > 0 {
			seasonal[i] = seasonal[i] / float64(counts[i]) / overall
		} else {
			seasonal[i] = 1
		}
	}
	return seasonal
}

// MovingAverageForecast repeats the mean of the last window observations for
// every step. History shorter than the window yields zeros.
func MovingAverageForecast(values []float64, window, steps int) []float64 {
	forecast := make([]float64, steps)
	if window <= 0 || len(values) < window {
		return forecast
	}

	level := math.Max(0, stats.Mean(values[len(values)-window:]))
	for i := range forecast {
		forecast[i] = level
	}
	return forecast
}

// LinearTrend fits ordinary least squares over the history indexed 0..n-1 and
// extrapolates forward.
func LinearTrend(values []float64, steps int) []float64 {
	forecast := make([]float64, steps)
	n := len(values)
	if n == 0 {
		return forecast
	}

	slope, intercept := stats.LinearRegression(stats.Indices(n), values)
	for i := range forecast {
		forecast[i] = math.Max(0, slope*float64(n+i)+intercept)
	}
	return forecast
}
