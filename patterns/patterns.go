// Package patterns decomposes a series into hour-of-day, day-of-week and
// month-of-year averages and derives scalar seasonal and trend strength
// coefficients used for model selection and ensemble weighting.
package patterns

import (
	"math"

	"water-meter-analytics/models"
	"water-meter-analytics/stats"
)

// Analyze buckets every observation by its timestamp and summarizes the
// series. Timestamps are interpreted in their own location; weekday slot 0 is
// Sunday, month slot 0 is January.
func Analyze(series []models.Observation) models.SeriesPatterns {
	var p models.SeriesPatterns

	var hourCounts [24]int
	var dayCounts [7]int
	var monthCounts [12]int

	for _, obs := range series {
		h := obs.Timestamp.Hour()
		d := int(obs.Timestamp.Weekday())
		m := int(obs.Timestamp.Month()) - 1

		p.HourlyAverages[h] += obs.Value
		hourCounts[h]++
		p.DailyAverages[d] += obs.Value
		dayCounts[d]++
		p.MonthlyAverages[m] += obs.Value
		monthCounts[m]++
	}

	for i := range p.HourlyAverages {
		if hourCounts[i] > 0 {
			p.HourlyAverages[i] /= float64(hourCounts[i])
		}
	}
	for i := range p.DailyAverages {
		if dayCounts[i] > 0 {
			p.DailyAverages[i] /= float64(dayCounts[i])
		}
	}
	for i := range p.MonthlyAverages {
		if monthCounts[i] > 0 {
			p.MonthlyAverages[i] /= float64(monthCounts[i])
		}
	}

	p.PeakHour = argmax(p.HourlyAverages[:], hourCounts[:])
	p.PeakDay = argmax(p.DailyAverages[:], dayCounts[:])

	p.SeasonalStrength = seasonalStrength(p.HourlyAverages[:], hourCounts[:])
	p.TrendStrength = trendStrength(models.Values(series))

	return p
}

// argmax returns the index of the largest average among slots that received
// data.
func argmax(averages []float64, counts []int) int {
	best := 0
	bestVal := math.Inf(-1)
	for i, avg := range averages {
		if counts[i] > 0 && avg > bestVal {
			best = i
			bestVal = avg
		}
	}
	if math.IsInf(bestVal, -1) {
		return 0
	}
	return best
}

// seasonalStrength measures how much the hourly averages spread relative to a
// hypothetical bimodal extreme: the standard deviation of the filled slots
// over half their range, clamped to [0, 1]. A flat profile scores 0, a series
// that alternates between its extremes scores 1.
func seasonalStrength(averages []float64, counts []int) float64 {
	filled := make([]float64, 0, len(averages))
	for i, avg := range averages {
		if counts[i] > 0 {
			filled = append(filled, avg)
		}
	}
	if len(filled) < 2 {
		return 0
	}

	minVal, maxVal := filled[0], filled[0]
	for _, v := range filled[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal == minVal {
		return 0
	}

	maxVariance := (maxVal - minVal) * (maxVal - minVal) / 4
	strength := math.Sqrt(stats.Variance(filled) / maxVariance)
	return math.Min(1, strength)
}

// trendStrength is the fraction of series variance explained by a linear fit
// over the raw values, floored at 0.
func trendStrength(values []float64) float64 {
	total := stats.Variance(values)
	if total == 0 {
		return 0
	}

	slope, intercept := stats.LinearRegression(stats.Indices(len(values)), values)

	residualSq := 0.0
	for i, v := range values {
		r := v - (slope*float64(i) + intercept)
		residualSq += r * r
	}
	residual := residualSq / float64(len(values))

	strength := 1 - residual/total
	if strength < 0 {
		return 0
	}
	return math.Min(1, strength)
}
