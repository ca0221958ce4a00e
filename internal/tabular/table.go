// Package tabular reads raw flat files (CSV and XLSX) into an in-memory
// header+rows form and writes processed tables back out as CSV with
// deterministic bytes.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrEmptyTable = errors.New("tabular: table has no rows")

// Table is one raw input file: a header row plus data rows. Rows may be
// ragged; cell access goes through Cell which treats a short row as empty
// cells.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string
}

// Index returns the position of a header, matching case-insensitively on
// the trimmed name.
func (t *Table) Index(name string) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, h := range t.Header {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i, true
		}
	}
	return 0, false
}

// Cell returns the trimmed cell at column idx of the given row, or "" when
// the row is shorter than idx.
func (t *Table) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ReadTable loads a raw file. The format is chosen by extension: .xlsx via
// excelize, anything else as comma-delimited text. A missing file or a
// file without a header row is an error naming the path.
func ReadTable(path string) (*Table, error) {
	var (
		table *Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		table, err = readExcel(path)
	default:
		table, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	if len(table.Header) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyTable)
	}
	return table, nil
}

func readCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tabular: open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	table := &Table{Path: path}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tabular: read %s: %w", path, err)
		}
		if table.Header == nil {
			table.Header = stripBOM(record)
			continue
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

func readExcel(path string) (*Table, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("tabular: open %s: %w", path, err)
	}
	defer file.Close()

	for _, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("tabular: read %s sheet %q: %w", path, sheet, err)
		}
		header, data := splitHeader(rows)
		if header == nil {
			continue
		}
		return &Table{Path: path, Header: header, Rows: data}, nil
	}
	return nil, fmt.Errorf("%s: %w", path, ErrEmptyTable)
}

// splitHeader skips leading blank rows, then takes the first non-empty row
// as the header.
func splitHeader(rows [][]string) ([]string, [][]string) {
	for i, row := range rows {
		if !rowEmpty(row) {
			return row, rows[i+1:]
		}
	}
	return nil, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func stripBOM(record []string) []string {
	if len(record) > 0 {
		record[0] = strings.TrimPrefix(record[0], "\ufeff")
	}
	return record
}

// WriteCSV writes a processed table, replacing any previous file in full.
// Callers are expected to pass rows in a stable order; given identical
// rows the output bytes are identical.
func WriteCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("tabular: create dir for %s: %w", path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tabular: create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("tabular: write header to %s: %w", path, err)
	}
	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("tabular: write row %d to %s: %w", i, path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("tabular: flush %s: %w", path, err)
	}
	return nil
}
