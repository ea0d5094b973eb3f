// Package anomaly flags abnormal observations using three independent
// methods: full-series z-score, deviation from the hour-of-day seasonal
// profile, and one-step-ahead residuals of a sliding linear fit. Results are
// de-duplicated across methods and returned in timestamp order.
package anomaly

import (
	"math"
	"sort"
	"time"

	"water-meter-analytics/models"
	"water-meter-analytics/patterns"
	"water-meter-analytics/stats"
)

// Anomaly type labels.
const (
	TypeSpike             = "spike"
	TypeDrop              = "drop"
	TypeSeasonalDeviation = "seasonal_deviation"
	TypeTrendBreak        = "trend_break"
)

// Seasonal relative-deviation gates.
const (
	seasonalFlagDeviation = 0.5
	seasonalHighDeviation = 1.0
)

// dedupeInterval collapses anomalies flagged by different methods on
// observations this close together.
const dedupeInterval = 60 * time.Second

// methodOrder fixes the iteration order so de-duplication is deterministic
// regardless of how the caller lists methods.
var methodOrder = []string{models.MethodStatistical, models.MethodSeasonal, models.MethodTrend}

// Detect runs the enabled methods over an ascending, timestamp-ordered
// series. Zero-valued option fields take their defaults. Detection is
// deterministic: the same input always yields the same output.
func Detect(series []models.Observation, opts models.AnomalyOptions) ([]models.Anomaly, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := models.ValidateSeries(series); err != nil {
		return nil, err
	}

	values := models.Values(series)

	var flagged []models.Anomaly
	for _, method := range methodOrder {
		if !opts.HasMethod(method) {
			continue
		}
		switch method {
		case models.MethodStatistical:
			flagged = append(flagged, statistical(series, values, opts.Threshold)...)
		case models.MethodSeasonal:
			flagged = append(flagged, seasonal(series, patterns.Analyze(series))...)
		case models.MethodTrend:
			flagged = append(flagged, trend(series, values, opts.WindowSize, opts.Threshold)...)
		}
	}

	return dedupe(flagged), nil
}

// statistical flags points whose z-score against the full-series mean and
// standard deviation exceeds the threshold. A zero-variance series has no
// statistical anomalies.
func statistical(series []models.Observation, values []float64, threshold float64) []models.Anomaly {
	mean := stats.Mean(values)
	sd := stats.StdDev(values)
	if sd == 0 {
		return nil
	}

	var found []models.Anomaly
	for i, obs := range series {
		z := (values[i] - mean) / sd
		if math.Abs(z) <= threshold {
			continue
		}

		kind := TypeSpike
		if z < 0 {
			kind = TypeDrop
		}
		found = append(found, models.Anomaly{
			Timestamp: obs.Timestamp,
			Value:     obs.Value,
			ZScore:    z,
			Type:      kind,
			Method:    models.MethodStatistical,
			Severity:  severity(math.Abs(z), threshold),
		})
	}
	return found
}

// seasonal flags points whose relative deviation from their hour-of-day
// historical average exceeds 0.5. Hours with a zero average are skipped.
func seasonal(series []models.Observation, pat models.SeriesPatterns) []models.Anomaly {
	var found []models.Anomaly
	for _, obs := range series {
		avg := pat.HourlyAverages[obs.Timestamp.Hour()]
		if avg == 0 {
			continue
		}

		deviation := math.Abs(obs.Value-avg) / math.Abs(avg)
		if deviation <= seasonalFlagDeviation {
			continue
		}

		sev := models.SeverityMedium
		if deviation > seasonalHighDeviation {
			sev = models.SeverityHigh
		}
		found = append(found, models.Anomaly{
			Timestamp: obs.Timestamp,
			Value:     obs.Value,
			Deviation: deviation,
			Type:      TypeSeasonalDeviation,
			Method:    models.MethodSeasonal,
			Severity:  sev,
		})
	}
	return found
}

// trend fits a linear model over each sliding window and measures the
// one-step-ahead residual at the window's end. Points whose residual exceeds
// the residual population's mean by threshold standard deviations are
// flagged.
func trend(series []models.Observation, values []float64, windowSize int, threshold float64) []models.Anomaly {
	n := len(values)
	if n <= windowSize {
		return nil
	}

	x := stats.Indices(windowSize)
	residuals := make([]float64, 0, n-windowSize)
	for i := windowSize; i < n; i++ {
		slope, intercept := stats.LinearRegression(x, values[i-windowSize:i])
		predicted := slope*float64(windowSize) + intercept
		residuals = append(residuals, math.Abs(values[i]-predicted))
	}

	mean := stats.Mean(residuals)
	sd := stats.StdDev(residuals)
	flagLimit := mean + threshold*sd
	highLimit := mean + 1.5*threshold*sd

	var found []models.Anomaly
	for j, r := range residuals {
		if r <= flagLimit {
			continue
		}

		obs := series[windowSize+j]
		sev := models.SeverityMedium
		if r > highLimit {
			sev = models.SeverityHigh
		}
		found = append(found, models.Anomaly{
			Timestamp: obs.Timestamp,
			Value:     obs.Value,
			Residual:  r,
			Type:      TypeTrendBreak,
			Method:    models.MethodTrend,
			Severity:  sev,
		})
	}
	return found
}

func severity(absZ, threshold float64) string {
	if absZ > 1.5*threshold {
		return models.SeverityHigh
	}
	return models.SeverityMedium
}

// dedupe collapses anomalies whose timestamps fall within 60 seconds of an
// already-kept record. Candidates arrive in method order, so when two methods
// flag the same moment the earlier method wins. The kept records are sorted
// by timestamp.
func dedupe(flagged []models.Anomaly) []models.Anomaly {
	kept := make([]models.Anomaly, 0, len(flagged))
	for _, a := range flagged {
		duplicate := false
		for _, k := range kept {
			delta := a.Timestamp.Sub(k.Timestamp)
			if delta < 0 {
				delta = -delta
			}
			if delta <= dedupeInterval {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, a)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Timestamp.Before(kept[j].Timestamp)
	})
	return kept
}
