package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/iho/finledger/internal/domain"
)

const templateSheet = "Transactions"

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// WriteTemplate writes a blank file whose only row is columns.
func WriteTemplate(w io.Writer, format string, columns []string) error {
	switch format {
	case FormatXLSX:
		return writeXLSX(w, columns)
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(columns); err != nil {
			return fmt.Errorf("failed to write csv template: %w", err)
		}
		cw.Flush()
		return cw.Error()
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedFile, format)
	}
}

func writeXLSX(w io.Writer, columns []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return fmt.Errorf("failed to name template sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(templateSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write template header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx template: %w", err)
	}
	return nil
}
