package spreadsheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iho/finledger/internal/domain"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		want    string
		wantErr bool
	}{
		{"xlsx", "ledger.xlsx", FormatXLSX, false},
		{"upper case", "LEDGER.CSV", FormatCSV, false},
		{"legacy xls", "ledger.xls", "", true},
		{"no extension", "ledger", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatOf(tt.file)
			if tt.wantErr {
				assert.True(t, errors.Is(err, domain.ErrUnsupportedFile))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCSV(t *testing.T) {
	in := strings.Join([]string{
		"Transation_Type,Amount,Type,Description,Date,Title",
		"expense,12.50,one-time,lunch,2024-01-05,Food",
		",,,,,",
		"income,\"3,000\",monthly,,2024-02-01,Salary",
	}, "\n")

	records, err := Parse("upload.csv", strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "expense", records[0][domain.ColumnFlowKind])
	assert.Equal(t, "one-time", records[0][domain.ColumnRecurrenceKind])
	assert.Equal(t, "2024-01-05", records[0][domain.ColumnOccurredOn])

	batch, err := domain.ParseBatch(records)
	require.NoError(t, err)
	assert.Equal(t, "3000", batch[1].Amount.String())
	assert.Equal(t, "", batch[1].Description)
}

func TestParseCSV_MissingColumnRejectsBatch(t *testing.T) {
	in := "flow_kind,amount,recurrence_kind,occurred_on,title\nexpense,1,one-time,2024-01-05,Food\n"

	records, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)

	_, err = domain.ParseBatch(records)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	records, err := ParseCSV(strings.NewReader("flow_kind,amount\n"))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{
		"flow_kind", "amount", "recurrence_kind", "description", "occurred_on", "title",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{
		"expense", 12.5, "one-time", "lunch", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), "Food",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{
		"income", 3000, "monthly", "", "2024-02-01", "Salary",
	}))

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, err := Parse("ledger.xlsx", &buf)
	require.NoError(t, err)
	require.Len(t, records, 2)

	batch, err := domain.ParseBatch(records)
	require.NoError(t, err)

	assert.Equal(t, domain.NewDate(2024, time.January, 5), batch[0].OccurredOn)
	assert.Equal(t, "12.5", batch[0].Amount.String())
	assert.Equal(t, domain.NewDate(2024, time.February, 1), batch[1].OccurredOn)
	assert.Equal(t, "", batch[1].Description)
}

func TestParseXLSX_NotAWorkbook(t *testing.T) {
	_, err := ParseXLSX(strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFile)
}

func TestWriteTemplate_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf, FormatCSV, domain.Columns))

	assert.Equal(t, "flow_kind,amount,recurrence_kind,description,occurred_on,title\n", buf.String())
}

func TestWriteTemplate_XLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf, FormatXLSX, domain.Columns))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{templateSheet}, f.GetSheetList())

	rows, err := f.GetRows(templateSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.Columns, rows[0])
}

func TestWriteTemplate_UnknownFormat(t *testing.T) {
	err := WriteTemplate(&bytes.Buffer{}, "ods", domain.Columns)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFile)
}
