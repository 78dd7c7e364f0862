// Package tables imports data tables from delimited text and spreadsheets.
//
// The first row holds the column names. Cells that parse as numbers become
// float64, empty cells become nil and everything else stays text.
package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/xuri/excelize/v2"
)

// Delimiter separates CSV fields.
const Delimiter = ';'

// ErrNoHeader is returned for sources without a header row.
var ErrNoHeader = errors.New("data table has no header row")

// ParseCSV reads a ';'-delimited table.
func ParseCSV(name string, r io.Reader) (*domain.DataTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse table %s: %w", name, err)
	}
	return build(name, records)
}

// FormatCSV writes t as a ';'-delimited table.
func FormatCSV(w io.Writer, t *domain.DataTable) error {
	writer := csv.NewWriter(w)
	writer.Comma = Delimiter
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		record := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			record[i] = cellText(row[col])
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// LoadXLSX reads every non-empty sheet of a workbook as a table named after the sheet.
func LoadXLSX(path string) ([]*domain.DataTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()
	return sheets(f)
}

// ReadXLSX is LoadXLSX for an in-memory workbook.
func ReadXLSX(r io.Reader) ([]*domain.DataTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX: %w", err)
	}
	defer f.Close()
	return sheets(f)
}

func sheets(f *excelize.File) ([]*domain.DataTable, error) {
	var out []*domain.DataTable
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		t, err := build(sheet, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Load reads a table file by extension: .csv yields one table named after
// the file, .xlsx one table per sheet.
func Load(path string) ([]*domain.DataTable, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx":
		return LoadXLSX(path)
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		t, err := ParseCSV(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), f)
		if err != nil {
			return nil, err
		}
		return []*domain.DataTable{t}, nil
	}
	return nil, fmt.Errorf("unsupported table format %q", ext)
}

func build(name string, records [][]string) (*domain.DataTable, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHeader, name)
	}
	t := &domain.DataTable{Name: name}
	for _, col := range records[0] {
		t.Columns = append(t.Columns, strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
	}
	for _, record := range records[1:] {
		if blank(record) {
			continue
		}
		row := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			var cell string
			if i < len(record) {
				cell = record[i]
			}
			row[col] = parseCell(cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseCell(cell string) any {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	if f, ok := domain.ToFloat(trimmed); ok {
		return f
	}
	return trimmed
}

func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
