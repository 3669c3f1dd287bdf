package forecast

import (
	"math"

	"salespulse/internal/errors"
	"salespulse/internal/timeseries"
)

// AccuracyMetrics holds standard regression accuracy measures.
type AccuracyMetrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// Evaluate compares predictions against truth, aligned by position.
// Fails with ShapeMismatchError unless both sequences are equal-length
// and non-empty. R² is defined as 0 when the actual series has zero
// variance, keeping the metric always well-defined.
func Evaluate(actual, predicted []float64) (AccuracyMetrics, error) {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return AccuracyMetrics{}, &errors.ShapeMismatchError{
			ActualLen:    len(actual),
			PredictedLen: len(predicted),
		}
	}

	n := float64(len(actual))

	var sumAbs, sumSq, sumActual float64
	for i := range actual {
		diff := actual[i] - predicted[i]
		sumAbs += math.Abs(diff)
		sumSq += diff * diff
		sumActual += actual[i]
	}
	mean := sumActual / n

	var totalSq float64
	for _, a := range actual {
		d := a - mean
		totalSq += d * d
	}

	m := AccuracyMetrics{
		RMSE: math.Sqrt(sumSq / n),
		MAE:  sumAbs / n,
	}
	if totalSq > 0 {
		m.R2 = 1 - sumSq/totalSq
	}

	return m, nil
}

// SplitTemporal splits features and targets into a leading training part
// and a trailing test part, preserving time order. testFraction is clamped
// so both parts are non-empty whenever len > 1.
func SplitTemporal(features []timeseries.FeatureRow, targets []float64, testFraction float64) (
	trainX []timeseries.FeatureRow, testX []timeseries.FeatureRow,
	trainY []float64, testY []float64,
) {
	n := len(features)
	if testFraction < 0 {
		testFraction = 0
	}
	if testFraction > 0.5 {
		testFraction = 0.5
	}

	split := n - int(float64(n)*testFraction)
	if split < 1 {
		split = 1
	}
	if split > n {
		split = n
	}

	return features[:split], features[split:], targets[:split], targets[split:]
}
