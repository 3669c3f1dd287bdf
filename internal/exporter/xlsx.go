package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"salespulse/internal/services"
)

// XLSXWriter writes a forecast report workbook with summary, daily
// series, and forecast sheets.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a new workbook writer.
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger.With(slog.String("component", "xlsx_writer"))}
}

// WriteReport writes the full pipeline result as an Excel workbook.
func (w *XLSXWriter) WriteReport(path string, result *services.Result) error {
	w.logger.Info("writing forecast workbook",
		slog.String("path", path),
		slog.Int("forecast_days", len(result.Forecast)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeSummarySheet(f, result); err != nil {
		return err
	}
	if err := w.writeSeriesSheet(f, result); err != nil {
		return err
	}
	if err := w.writeForecastSheet(f, result); err != nil {
		return err
	}

	// Drop the default sheet so Summary is first.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func (w *XLSXWriter) writeSummarySheet(f *excelize.File, result *services.Result) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Rows", result.Summary.Rows},
		{"Valid dated rows", result.Summary.ValidDates},
		{"Total sales", result.Summary.TotalSales},
		{"Mean sales", result.Summary.MeanSales},
		{"Total profit", result.Summary.TotalProfit},
		{"Duplicates removed", result.CleanReport.DuplicatesRemoved},
		{"Coercion failures", result.CleanReport.CoercionFailures()},
		{"RMSE", result.Accuracy.RMSE},
		{"MAE", result.Accuracy.MAE},
		{"R2", result.Accuracy.R2},
		{"Hold-out days", result.HoldOutDays},
	}
	if result.Summary.FirstDate != nil {
		rows = append(rows,
			[]interface{}{"First date", result.Summary.FirstDate.Format(dateFormat)},
			[]interface{}{"Last date", result.Summary.LastDate.Format(dateFormat)})
	}

	return writeRows(f, sheet, rows)
}

func (w *XLSXWriter) writeSeriesSheet(f *excelize.File, result *services.Result) error {
	const sheet = "Daily Sales"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{{"Date", "Sales"}}
	for _, point := range result.Series {
		rows = append(rows, []interface{}{point.Date.Format(dateFormat), point.Sales})
	}
	return writeRows(f, sheet, rows)
}

func (w *XLSXWriter) writeForecastSheet(f *excelize.File, result *services.Result) error {
	const sheet = "Forecast"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{{"Date", "Predicted Sales"}}
	for _, row := range result.Forecast {
		rows = append(rows, []interface{}{row.Date.Format(dateFormat), row.PredictedSales})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
