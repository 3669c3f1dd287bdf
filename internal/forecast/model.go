// Package forecast fits a linear trend+seasonality model over daily sales
// features and projects it forward with a zero floor on predictions.
package forecast

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"salespulse/internal/errors"
	"salespulse/internal/timeseries"
)

// DefaultMinTrainingDays is the minimum daily observations for a fit; a
// linear fit over fewer points is statistically meaningless.
const DefaultMinTrainingDays = 100

// DefaultWarnHorizonDays is the horizon beyond which accuracy warnings
// are logged.
const DefaultWarnHorizonDays = 365

// ForecastRow is one projected day. Sales are clipped at zero.
type ForecastRow struct {
	Date           time.Time `json:"date"`
	PredictedSales float64   `json:"predicted_sales"`
}

// FittedModel is immutable trained regression state: coefficients plus the
// origin and last training dates. Retraining constructs a new instance, so
// a FittedModel is safe for concurrent readers.
type FittedModel struct {
	coeffs           []float64
	origin           time.Time
	lastTrainingDate time.Time
	trainingDays     int
}

// Origin returns the origin date day offsets are measured from.
func (m *FittedModel) Origin() time.Time { return m.origin }

// LastTrainingDate returns the final date in the training series.
func (m *FittedModel) LastTrainingDate() time.Time { return m.lastTrainingDate }

// TrainingDays returns the number of daily observations the fit used.
func (m *FittedModel) TrainingDays() int { return m.trainingDays }

// Coefficients returns a copy of the fitted coefficients, intercept first.
func (m *FittedModel) Coefficients() []float64 {
	return append([]float64(nil), m.coeffs...)
}

// apply evaluates the model on one feature row.
func (m *FittedModel) apply(f timeseries.FeatureRow) float64 {
	return dot(m.coeffs, f.Vector())
}

// Fitted returns in-sample predictions for the given feature rows.
func (m *FittedModel) Fitted(features []timeseries.FeatureRow) []float64 {
	out := make([]float64, len(features))
	for i, f := range features {
		out[i] = m.apply(f)
	}
	return out
}

// Predict projects `periods` consecutive days starting the day after the
// last training date. Every predicted value is clipped to a floor of 0:
// sales cannot be negative, and the linear model is not constrained to
// non-negative output. Predict has no side effects and is idempotent.
func (m *FittedModel) Predict(periods int) ([]ForecastRow, error) {
	if m == nil {
		return nil, &errors.NotTrainedError{}
	}
	if periods <= 0 {
		return nil, fmt.Errorf("periods must be a positive integer, got %d", periods)
	}

	start := m.lastTrainingDate.AddDate(0, 0, 1)
	features := timeseries.BuildFutureFeatures(m.origin, start, periods)

	rows := make([]ForecastRow, periods)
	for i, f := range features {
		rows[i] = ForecastRow{
			Date:           f.Date,
			PredictedSales: math.Max(0, m.apply(f)),
		}
	}
	return rows, nil
}

// Config bundles forecaster policy knobs.
type Config struct {
	MinTrainingDays int
	WarnHorizonDays int
}

// Forecaster is a single-shot trainer: Untrained until Train succeeds,
// then Trained forever. Train on a trained instance is an error; construct
// a new Forecaster to retrain.
type Forecaster struct {
	cfg    Config
	logger *slog.Logger
	model  *FittedModel
}

// NewForecaster creates an untrained forecaster.
func NewForecaster(cfg Config, logger *slog.Logger) *Forecaster {
	if cfg.MinTrainingDays <= 0 {
		cfg.MinTrainingDays = DefaultMinTrainingDays
	}
	if cfg.WarnHorizonDays <= 0 {
		cfg.WarnHorizonDays = DefaultWarnHorizonDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Forecaster{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "forecaster")),
	}
}

// IsTrained reports whether Train has completed successfully.
func (f *Forecaster) IsTrained() bool { return f.model != nil }

// Model returns the fitted model, or nil before training.
func (f *Forecaster) Model() *FittedModel { return f.model }

// Train fits the linear model minimizing squared error between targets
// and features. Fails with InsufficientDataError below the minimum day
// count. On success the forecaster transitions to Trained and records
// the origin and last training dates from the feature rows.
func (f *Forecaster) Train(features []timeseries.FeatureRow, targets []float64) (*FittedModel, error) {
	if f.model != nil {
		return nil, fmt.Errorf("forecaster is already trained; construct a new Forecaster to retrain")
	}
	if len(features) != len(targets) {
		return nil, &errors.ShapeMismatchError{ActualLen: len(targets), PredictedLen: len(features)}
	}
	if len(features) < f.cfg.MinTrainingDays {
		return nil, errors.NewInsufficientDataError(len(features), f.cfg.MinTrainingDays)
	}

	rows := make([][]float64, len(features))
	for i, feat := range features {
		rows[i] = feat.Vector()
	}

	coeffs, err := fitOLS(rows, targets)
	if err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}

	origin := features[0].Date.AddDate(0, 0, -features[0].DaysFromOrigin)
	model := &FittedModel{
		coeffs:           coeffs,
		origin:           origin,
		lastTrainingDate: features[len(features)-1].Date,
		trainingDays:     len(features),
	}
	f.model = model

	// In-sample accuracy for the training log, as the original reported.
	fitted := model.Fitted(features)
	metrics, err := Evaluate(targets, fitted)
	if err == nil {
		f.logger.Info("model trained",
			slog.Int("training_days", model.trainingDays),
			slog.Time("origin", model.origin),
			slog.Time("last_training_date", model.lastTrainingDate),
			slog.Float64("train_r2", metrics.R2),
			slog.Float64("train_rmse", metrics.RMSE))
	}

	return model, nil
}

// Predict projects the trained model forward. Fails with NotTrainedError
// in the Untrained state. Horizons beyond the warn threshold log a
// warning but still run.
func (f *Forecaster) Predict(periods int) ([]ForecastRow, error) {
	if f.model == nil {
		return nil, &errors.NotTrainedError{}
	}
	if periods > f.cfg.WarnHorizonDays {
		f.logger.Warn("forecast horizon is long; accuracy degrades with distance",
			slog.Int("periods", periods),
			slog.Int("warn_threshold", f.cfg.WarnHorizonDays))
	}
	return f.model.Predict(periods)
}
