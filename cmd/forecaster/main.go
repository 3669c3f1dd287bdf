package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"salespulse/internal/config"
	"salespulse/internal/dataset"
	"salespulse/internal/exporter"
	"salespulse/internal/infrastructure"
	"salespulse/internal/services"
	"salespulse/internal/validation"
)

func main() {
	periods := flag.Int("periods", 0, "forecast horizon in days (defaults to configured horizon)")
	outDir := flag.String("out", "", "output directory for reports (defaults to data/reports)")
	from := flag.String("from", "", "include orders on or after this date (YYYY-MM-DD)")
	to := flag.String("to", "", "include orders on or before this date (YYYY-MM-DD)")
	categories := flag.String("category", "", "comma-separated category filter")
	regions := flag.String("region", "", "comma-separated region filter")
	products := flag.String("product", "", "comma-separated product filter")
	nullPolicy := flag.String("null-policy", "", "null sales handling: zero | exclude (defaults to configured policy)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: forecaster [flags] <dataset.csv|dataset.xlsx|dir>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = infrastructure.GetLogger()
	}

	if *nullPolicy != "" {
		cfg.Pipeline.NullPolicy = *nullPolicy
	}

	validator := validation.NewFileValidator(logger)
	inputs, err := validator.ExpandDatasetPaths(flag.Args())
	if err != nil {
		logger.Error("Input validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *outDir == "" {
		*outDir = paths.ReportsDir
	}
	if err := validator.ValidateOutputDirectory(*outDir); err != nil {
		logger.Error("Output directory validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	opts, err := buildRunOptions(*periods, *from, *to, *categories, *regions, *products)
	if err != nil {
		logger.Error("Invalid flags", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Starting forecast run",
		slog.Int("input_files", len(inputs)),
		slog.String("output_dir", *outDir))

	ctx := context.Background()
	table, err := dataset.LoadFiles(ctx, inputs)
	if err != nil {
		logger.Error("Failed to load datasets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	svc := services.NewForecastService(cfg.Pipeline, logger, nil)
	result, err := svc.Run(ctx, table, opts)
	if err != nil {
		logger.Error("Pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	csvWriter := exporter.NewCSVWriter(logger)
	xlsxWriter := exporter.NewXLSXWriter(logger)

	forecastCSV := filepath.Join(*outDir, "forecast.csv")
	dailyCSV := filepath.Join(*outDir, "daily_sales.csv")
	reportXLSX := filepath.Join(*outDir, "forecast.xlsx")

	if err := csvWriter.WriteForecastCSV(forecastCSV, result.Forecast); err != nil {
		logger.Error("Failed to write forecast CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := csvWriter.WriteDailySeriesCSV(dailyCSV, result.Series); err != nil {
		logger.Error("Failed to write daily series CSV", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := xlsxWriter.WriteReport(reportXLSX, result); err != nil {
		logger.Error("Failed to write Excel report", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Forecast run complete",
		slog.Int("clean_rows", result.Summary.Rows),
		slog.Int("series_days", len(result.Series)),
		slog.Int("forecast_days", len(result.Forecast)),
		slog.Float64("rmse", result.Accuracy.RMSE),
		slog.Float64("mae", result.Accuracy.MAE),
		slog.Float64("r2", result.Accuracy.R2),
		slog.String("forecast_csv", forecastCSV),
		slog.String("report_xlsx", reportXLSX))
}

// buildRunOptions translates the CLI flags into pipeline options.
func buildRunOptions(periods int, from, to, categories, regions, products string) (services.RunOptions, error) {
	opts := services.RunOptions{Periods: periods}
	if periods < 0 {
		return opts, fmt.Errorf("periods must not be negative")
	}

	if from != "" {
		d, err := time.Parse("2006-01-02", from)
		if err != nil {
			return opts, fmt.Errorf("invalid -from date %q: want YYYY-MM-DD", from)
		}
		opts.Filters.From = &d
	}
	if to != "" {
		d, err := time.Parse("2006-01-02", to)
		if err != nil {
			return opts, fmt.Errorf("invalid -to date %q: want YYYY-MM-DD", to)
		}
		opts.Filters.To = &d
	}

	opts.Filters.Categories = splitList(categories)
	opts.Filters.Regions = splitList(regions)
	opts.Filters.Products = splitList(products)
	return opts, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
