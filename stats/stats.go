// Package stats provides the numeric primitives shared by the forecasting
// models, the pattern analyzer and the anomaly detector. All functions are
// pure and assume input already validated at the public boundary: empty or
// degenerate slices yield zero, never NaN.
package stats

import (
	"math"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the population variance, or 0 for fewer than two values.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// MovingAverage returns the trailing moving average: element i is the mean of
// values[max(0,i-window+1)..i]. The output has the same length as the input,
// with a shorter effective window at the start.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 0 {
		window = 1
	}

	result := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
			result[i] = sum / float64(window)
		} else {
			result[i] = sum / float64(i+1)
		}
	}
	return result
}

// MAPE returns the mean absolute percentage error between actual and
// predicted values. Terms with a zero actual are skipped to avoid division by
// zero; if every term is skipped the result is 0.
func MAPE(actual, predicted []float64) float64 {
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}

	sum := 0.0
	count := 0
	for i := 0; i < n; i++ {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs(actual[i]-predicted[i]) / math.Abs(actual[i])
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) * 100
}

// RMSE returns the root mean squared error between actual and predicted
// values, over the shorter of the two.
func RMSE(actual, predicted []float64) float64 {
	n := len(actual)
	if len(predicted) < n {
		n = len(predicted)
	}
	if n == 0 {
		return 0
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(n))
}
