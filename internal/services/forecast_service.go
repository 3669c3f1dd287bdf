// Package services orchestrates the forecasting pipeline: schema
// validation, cleaning, filtering, daily aggregation, feature building,
// model fit, projection, and accuracy evaluation. Data flows strictly
// forward between stages.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"salespulse/internal/config"
	"salespulse/internal/dataset"
	"salespulse/internal/forecast"
	"salespulse/internal/infrastructure"
	"salespulse/internal/timeseries"
)

// ForecastService runs the full pipeline over raw input tables.
type ForecastService struct {
	cfg     config.PipelineConfig
	logger  *slog.Logger
	metrics *infrastructure.Metrics
	cleaner *dataset.Cleaner
}

// NewForecastService creates a pipeline service. metrics may be nil for
// tools that do not expose a scrape endpoint.
func NewForecastService(cfg config.PipelineConfig, logger *slog.Logger, metrics *infrastructure.Metrics) *ForecastService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastService{
		cfg:     cfg,
		logger:  logger.With(slog.String("service", "forecast")),
		metrics: metrics,
		cleaner: dataset.NewCleaner(logger),
	}
}

// RunOptions selects per-request pipeline behavior.
type RunOptions struct {
	// Periods is the forecast horizon in days; 0 uses the configured default.
	Periods int
	// Filters narrows the cleaned table before aggregation.
	Filters dataset.Filters
}

// Result carries everything downstream consumers need: the cleaned-table
// summary, the daily series, the forecast, and accuracy metrics.
type Result struct {
	Summary     dataset.Summary          `json:"summary"`
	CleanReport dataset.CleanReport      `json:"clean_report"`
	Series      timeseries.DailySeries   `json:"daily_series"`
	Forecast    []forecast.ForecastRow   `json:"forecast"`
	Accuracy    forecast.AccuracyMetrics `json:"accuracy"`
	// HoldOutDays is the number of trailing days the accuracy metrics were
	// computed over; 0 means the metrics are in-sample.
	HoldOutDays int `json:"hold_out_days"`

	Model *forecast.FittedModel `json:"-"`
}

// Run executes the pipeline over a raw table and returns the forecast
// plus supporting outputs. All errors propagate to the caller; only
// row-level coercion issues are downgraded to warnings inside cleaning.
func (s *ForecastService) Run(ctx context.Context, table *dataset.Table, opts RunOptions) (*Result, error) {
	start := time.Now()

	if err := dataset.ValidateSchema(table, dataset.RequiredColumns); err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}

	cleaned, report := s.cleaner.Clean(table)
	s.count(ctx, report)

	if !opts.Filters.IsZero() {
		before := cleaned.NumRows()
		cleaned = opts.Filters.Apply(cleaned)
		s.logger.InfoContext(ctx, "filters applied",
			slog.Int("rows_before", before),
			slog.Int("rows_after", cleaned.NumRows()))
	}

	policy, err := timeseries.ParseNullPolicy(s.cfg.NullPolicy)
	if err != nil {
		return nil, fmt.Errorf("parse null policy: %w", err)
	}

	series, err := timeseries.Aggregate(cleaned, policy)
	if err != nil {
		return nil, fmt.Errorf("aggregate daily series: %w", err)
	}

	features := timeseries.BuildFeatures(series)
	targets := series.Values()

	model, accuracy, holdOut, err := s.fitAndEvaluate(features, targets)
	if err != nil {
		return nil, err
	}

	periods := opts.Periods
	if periods <= 0 {
		periods = s.cfg.ForecastHorizon
	}
	if periods > s.cfg.WarnHorizonDays {
		s.logger.WarnContext(ctx, "forecast horizon is long; accuracy degrades with distance",
			slog.Int("periods", periods))
	}

	rows, err := model.Predict(periods)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ForecastsServed.Add(ctx, 1)
	}

	s.logger.InfoContext(ctx, "pipeline completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("training_days", model.TrainingDays()),
		slog.Int("forecast_days", len(rows)),
		slog.Int("hold_out_days", holdOut),
		slog.Float64("rmse", accuracy.RMSE),
		slog.Float64("r2", accuracy.R2))

	return &Result{
		Summary:     dataset.Summarize(cleaned),
		CleanReport: report,
		Series:      series,
		Forecast:    rows,
		Accuracy:    accuracy,
		HoldOutDays: holdOut,
		Model:       model,
	}, nil
}

// SummaryResult carries the cleaning outcome and dataset statistics
// without running the forecasting stages.
type SummaryResult struct {
	Summary     dataset.Summary     `json:"summary"`
	CleanReport dataset.CleanReport `json:"clean_report"`
}

// Summarize validates, cleans, and filters a raw table and returns its
// summary statistics. No model is fitted.
func (s *ForecastService) Summarize(ctx context.Context, table *dataset.Table, filters dataset.Filters) (*SummaryResult, error) {
	if err := dataset.ValidateSchema(table, dataset.RequiredColumns); err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}

	cleaned, report := s.cleaner.Clean(table)
	s.count(ctx, report)

	if !filters.IsZero() {
		cleaned = filters.Apply(cleaned)
	}

	return &SummaryResult{
		Summary:     dataset.Summarize(cleaned),
		CleanReport: report,
	}, nil
}

// fitAndEvaluate trains the final model on the full series. When the
// configured hold-out split leaves enough training days, accuracy is
// measured by training a candidate on the head and scoring it on the
// tail; otherwise the final model is scored in-sample.
func (s *ForecastService) fitAndEvaluate(features []timeseries.FeatureRow, targets []float64) (*forecast.FittedModel, forecast.AccuracyMetrics, int, error) {
	fcfg := forecast.Config{
		MinTrainingDays: s.cfg.MinTrainingDays,
		WarnHorizonDays: s.cfg.WarnHorizonDays,
	}

	final, err := forecast.NewForecaster(fcfg, s.logger).Train(features, targets)
	if err != nil {
		return nil, forecast.AccuracyMetrics{}, 0, fmt.Errorf("train: %w", err)
	}

	trainX, testX, trainY, testY := forecast.SplitTemporal(features, targets, s.cfg.TestFraction)
	if len(testX) > 0 && len(trainX) >= s.cfg.MinTrainingDays {
		candidate, err := forecast.NewForecaster(fcfg, s.logger).Train(trainX, trainY)
		if err == nil {
			predicted := candidate.Fitted(testX)
			if accuracy, err := forecast.Evaluate(testY, predicted); err == nil {
				return final, accuracy, len(testX), nil
			}
		}
	}

	accuracy, err := forecast.Evaluate(targets, final.Fitted(features))
	if err != nil {
		return nil, forecast.AccuracyMetrics{}, 0, fmt.Errorf("evaluate in-sample: %w", err)
	}
	return final, accuracy, 0, nil
}

// count records cleaning activity on the meter.
func (s *ForecastService) count(ctx context.Context, report dataset.CleanReport) {
	if s.metrics == nil {
		return
	}
	s.metrics.RowsIngested.Add(ctx, int64(report.RowsIn))
	s.metrics.CoercionFailures.Add(ctx, int64(report.CoercionFailures()))
	s.metrics.DuplicatesDropped.Add(ctx, int64(report.DuplicatesRemoved))
}
