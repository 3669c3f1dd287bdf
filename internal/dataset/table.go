// Package dataset models raw tabular sales input and its cleaned form:
// column-labelled string rows in, typed records out. Coercion failures are
// downgraded to warnings and the offending field becomes null; rows are
// never silently dropped here.
package dataset

import (
	"fmt"
	"strings"
	"time"
)

// Required column names, matched case-sensitively against table headers.
const (
	ColOrderDate   = "order_date"
	ColSales       = "sales"
	ColProfit      = "profit"
	ColProductName = "product_name"

	// Optional columns
	ColCustomerName = "customer_name"
	ColRegion       = "region"
	ColCategory     = "category"
)

// RequiredColumns is the column set every input table must carry.
var RequiredColumns = []string{ColOrderDate, ColSales, ColProfit, ColProductName}

// Table is a raw, untyped input table: a header row and string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NumRows returns the number of data rows in the table.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1 if absent.
// Matching is case-sensitive and exact.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at (row, column name), or "" when the row is
// ragged and does not reach that column.
func (t *Table) Cell(row int, col int) string {
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Record is one coerced input row. Nil pointer fields mark values whose
// coercion failed; the raw text is preserved in the owning CleanedTable.
type Record struct {
	OrderDate    *time.Time `json:"order_date"`
	Sales        *float64   `json:"sales"`
	Profit       *float64   `json:"profit"`
	ProductName  string     `json:"product_name"`
	CustomerName string     `json:"customer_name,omitempty"`
	Region       string     `json:"region,omitempty"`
	Category     string     `json:"category,omitempty"`
}

// IsValid reports whether every required field coerced successfully.
func (r Record) IsValid() bool {
	return r.OrderDate != nil && r.Sales != nil && r.Profit != nil
}

// CleanedTable is the cleaner's output: deduplicated raw rows alongside
// their coerced records, aligned by index.
type CleanedTable struct {
	Columns []string
	Rows    [][]string
	Records []Record
}

// NumRows returns the number of rows in the cleaned table.
func (ct *CleanedTable) NumRows() int {
	return len(ct.Records)
}

// Table converts the cleaned table back into a raw table. Cleaning the
// result again yields an identical CleanedTable: coercion is deterministic
// and deduplication is a fixed point.
func (ct *CleanedTable) Table() *Table {
	rows := make([][]string, len(ct.Rows))
	for i, row := range ct.Rows {
		rows[i] = append([]string(nil), row...)
	}
	return &Table{
		Columns: append([]string(nil), ct.Columns...),
		Rows:    rows,
	}
}

// Merge concatenates tables with identical column sets, preserving order.
// The original dashboard accepted several monthly exports at once.
func Merge(tables []*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("no tables to merge")
	}
	if len(tables) == 1 {
		return tables[0], nil
	}

	first := tables[0]
	merged := &Table{Columns: append([]string(nil), first.Columns...)}
	merged.Rows = append(merged.Rows, first.Rows...)

	for i, t := range tables[1:] {
		if strings.Join(t.Columns, "\x1f") != strings.Join(first.Columns, "\x1f") {
			return nil, fmt.Errorf("table %d columns %v do not match first table columns %v",
				i+1, t.Columns, first.Columns)
		}
		merged.Rows = append(merged.Rows, t.Rows...)
	}

	return merged, nil
}
