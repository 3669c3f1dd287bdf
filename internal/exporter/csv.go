// Package exporter writes pipeline outputs (daily series, forecasts,
// summaries) as CSV files and Excel workbooks for the reporting layers.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"salespulse/internal/forecast"
	"salespulse/internal/timeseries"
)

const dateFormat = "2006-01-02"

// CSVWriter provides CSV export functionality.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options.
func (w *CSVWriter) WriteCSV(path string, options WriteOptions) error {
	w.logger.Info("writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8.
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteForecastCSV writes forecast rows as (date, predicted_sales).
func (w *CSVWriter) WriteForecastCSV(path string, rows []forecast.ForecastRow) error {
	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = []string{
			row.Date.Format(dateFormat),
			strconv.FormatFloat(row.PredictedSales, 'f', 2, 64),
		}
	}
	return w.WriteCSV(path, WriteOptions{
		Headers:   []string{"date", "predicted_sales"},
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteDailySeriesCSV writes the aggregated daily series as (date, sales).
func (w *CSVWriter) WriteDailySeriesCSV(path string, series timeseries.DailySeries) error {
	records := make([][]string, len(series))
	for i, point := range series {
		records[i] = []string{
			point.Date.Format(dateFormat),
			strconv.FormatFloat(point.Sales, 'f', 2, 64),
		}
	}
	return w.WriteCSV(path, WriteOptions{
		Headers:   []string{"date", "sales"},
		Records:   records,
		BOMPrefix: true,
	})
}
