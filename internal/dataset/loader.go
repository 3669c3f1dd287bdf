package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// utf8BOM is stripped from the first header cell when present; spreadsheet
// exports commonly prefix CSV files with it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadCSV reads a column-labelled CSV table from r. The first row is the
// header; ragged data rows are tolerated and padded on access.
func LoadCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if peek, err := br.Peek(3); err == nil && string(peek) == string(utf8BOM) {
		br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	table := &Table{Columns: normalizeHeader(header)}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(table.Rows)+2, err)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// LoadCSVFile reads a CSV table from the given path.
func LoadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	table, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return table, nil
}

// LoadXLSX reads the first non-empty sheet of an Excel workbook as a
// column-labelled table.
func LoadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}
		table := &Table{Columns: normalizeHeader(rows[0])}
		table.Rows = rows[1:]
		return table, nil
	}

	return nil, fmt.Errorf("no sheet with a header and data rows")
}

// LoadXLSXFile reads an Excel workbook from the given path.
func LoadXLSXFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	table, err := LoadXLSX(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return table, nil
}

// LoadFile dispatches on file extension.
func LoadFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSVFile(path)
	case ".xlsx":
		return LoadXLSXFile(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// LoadFiles loads several input files concurrently and merges them into a
// single table in argument order. All files must share one schema.
func LoadFiles(ctx context.Context, paths []string) (*Table, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files given")
	}

	tables := make([]*Table, len(paths))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, path := range paths {
		g.Go(func() error {
			t, err := LoadFile(path)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Merge(tables)
}

// normalizeHeader trims surrounding whitespace from column names.
func normalizeHeader(header []string) []string {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}
	return cols
}
