package dataset

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the calendar formats accepted for order_date, covering
// the export formats the original dashboard ingested.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"2-Jan-2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// Cleaner coerces raw table cells into typed records, logs coercion
// failures as warnings, and collapses duplicate records.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner logging through the given logger.
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger.With(slog.String("component", "cleaner"))}
}

// CleanReport summarises what cleaning did to a table.
type CleanReport struct {
	RowsIn            int `json:"rows_in"`
	RowsOut           int `json:"rows_out"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	DateFailures      int `json:"date_failures"`
	SalesFailures     int `json:"sales_failures"`
	ProfitFailures    int `json:"profit_failures"`
}

// CoercionFailures returns the total number of fields that failed coercion.
func (r CleanReport) CoercionFailures() int {
	return r.DateFailures + r.SalesFailures + r.ProfitFailures
}

// Clean coerces date and numeric columns and removes duplicate records,
// keeping the first occurrence. Duplicates are compared on the coerced
// values, so differently spelled cells that parse to the same record
// still collapse. Rows with unparsable required fields are retained with
// null markers; only the warning log records the failure.
// Cleaning is idempotent: Clean(ct.Table()) reproduces ct.
func (c *Cleaner) Clean(table *Table) (*CleanedTable, CleanReport) {
	report := CleanReport{RowsIn: table.NumRows()}

	dateIdx := table.ColumnIndex(ColOrderDate)
	salesIdx := table.ColumnIndex(ColSales)
	profitIdx := table.ColumnIndex(ColProfit)
	productIdx := table.ColumnIndex(ColProductName)
	customerIdx := table.ColumnIndex(ColCustomerName)
	regionIdx := table.ColumnIndex(ColRegion)
	categoryIdx := table.ColumnIndex(ColCategory)

	cleaned := &CleanedTable{Columns: append([]string(nil), table.Columns...)}
	seen := make(map[string]struct{}, table.NumRows())

	for i := range table.Rows {
		rec := Record{
			ProductName:  strings.TrimSpace(table.Cell(i, productIdx)),
			CustomerName: strings.TrimSpace(table.Cell(i, customerIdx)),
			Region:       strings.TrimSpace(table.Cell(i, regionIdx)),
			Category:     strings.TrimSpace(table.Cell(i, categoryIdx)),
		}

		rawDate := strings.TrimSpace(table.Cell(i, dateIdx))
		if d, ok := parseDate(rawDate); ok {
			rec.OrderDate = &d
		}
		sales, salesFailed := parseNumeric(table.Cell(i, salesIdx))
		rec.Sales = sales
		profit, profitFailed := parseNumeric(table.Cell(i, profitIdx))
		rec.Profit = profit

		key := dedupKey(rec)
		if _, dup := seen[key]; dup {
			report.DuplicatesRemoved++
			continue
		}
		seen[key] = struct{}{}

		if rec.OrderDate == nil {
			report.DateFailures++
			if rawDate == "" {
				c.logger.Warn("empty order date, row retained with null date", slog.Int("row", i))
			} else {
				c.logger.Warn("unparsable order date, row retained with null date",
					slog.Int("row", i),
					slog.String("value", rawDate))
			}
		}
		if salesFailed {
			report.SalesFailures++
			c.logger.Warn("unparsable sales value, row retained with null sales",
				slog.Int("row", i),
				slog.String("value", table.Cell(i, salesIdx)))
		}
		if profitFailed {
			report.ProfitFailures++
			c.logger.Warn("unparsable profit value, row retained with null profit",
				slog.Int("row", i),
				slog.String("value", table.Cell(i, profitIdx)))
		}

		cleaned.Rows = append(cleaned.Rows, append([]string(nil), table.Rows[i]...))
		cleaned.Records = append(cleaned.Records, rec)
	}

	report.RowsOut = cleaned.NumRows()

	c.logger.Info("table cleaned",
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_out", report.RowsOut),
		slog.Int("duplicates_removed", report.DuplicatesRemoved),
		slog.Int("coercion_failures", report.CoercionFailures()))

	return cleaned, report
}

// dedupKey serialises the coerced values of a record. Two rows are
// duplicates when every field coerces identically; nulls only match
// other nulls.
func dedupKey(rec Record) string {
	const null = "\x00"

	date := null
	if rec.OrderDate != nil {
		date = rec.OrderDate.Format("2006-01-02")
	}
	sales := null
	if rec.Sales != nil {
		sales = strconv.FormatFloat(*rec.Sales, 'g', -1, 64)
	}
	profit := null
	if rec.Profit != nil {
		profit = strconv.FormatFloat(*rec.Profit, 'g', -1, 64)
	}

	return strings.Join([]string{
		date, sales, profit,
		rec.ProductName, rec.CustomerName, rec.Region, rec.Category,
	}, "\x1f")
}

// parseDate tries each accepted layout and truncates to midnight UTC so
// that rows bucket cleanly into calendar days.
func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseNumeric parses a float cell. Empty cells become null without a
// warning; non-empty unparsable cells become null and count as a failure.
func parseNumeric(raw string) (*float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}
	// Tolerate thousands separators from spreadsheet exports.
	trimmed = strings.ReplaceAll(trimmed, ",", "")
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, true
	}
	return &v, false
}
