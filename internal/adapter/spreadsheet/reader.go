// Package spreadsheet converts uploaded ledger files to raw records and
// writes the blank upload template.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iho/finledger/internal/domain"
)

// Supported file formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// FormatOf returns the format implied by a file name's extension.
func FormatOf(filename string) (string, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")); ext {
	case FormatXLSX, FormatCSV:
		return ext, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFile, filepath.Ext(filename))
	}
}

// Parse reads every data row of the file. The first row holds the column
// headers; blank rows are skipped.
func Parse(filename string, r io.Reader) ([]domain.RawRecord, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return ParseXLSX(r)
	default:
		return ParseCSV(r)
	}
}

// ParseCSV reads a comma separated file.
func ParseCSV(r io.Reader) ([]domain.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("%w: %v", domain.ErrSchemaMismatch, err)
		}
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records(rows), nil
}

// ParseXLSX reads the first worksheet of an Excel workbook. Cell values are
// read raw, so dates arrive as serial day numbers.
func ParseXLSX(r io.Reader) ([]domain.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []domain.RawRecord{}, nil
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheets[0], err)
	}
	return records(rows), nil
}

func records(rows [][]string) []domain.RawRecord {
	out := []domain.RawRecord{}
	if len(rows) == 0 {
		return out
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = domain.CanonicalColumn(h)
	}

	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := make(domain.RawRecord, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			var v string
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			rec[col] = v
		}
		out = append(out, rec)
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
