package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Column names of the transaction schema, in template order.
const (
	ColumnFlowKind       = "flow_kind"
	ColumnAmount         = "amount"
	ColumnRecurrenceKind = "recurrence_kind"
	ColumnDescription    = "description"
	ColumnOccurredOn     = "occurred_on"
	ColumnTitle          = "title"
)

// Validation constants
const (
	MaxBatchSize   = 50000
	MaxFieldLength = 1024
)

// Columns lists the six transaction fields in template order.
var Columns = []string{
	ColumnFlowKind,
	ColumnAmount,
	ColumnRecurrenceKind,
	ColumnDescription,
	ColumnOccurredOn,
	ColumnTitle,
}

// columnAliases maps header spellings found in older spreadsheets to columns.
var columnAliases = map[string]string{
	"transation_type":  ColumnFlowKind,
	"transaction_type": ColumnFlowKind,
	"type":             ColumnRecurrenceKind,
	"date":             ColumnOccurredOn,
}

// RawRecord is one uploaded row keyed by column header.
type RawRecord map[string]any

// CanonicalColumn maps a header to its schema column name. Unknown headers are
// returned lowercased so callers can keep or drop them.
func CanonicalColumn(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.ReplaceAll(h, " ", "_")
	if c, ok := columnAliases[h]; ok {
		return c
	}
	return h
}

// ParseBatch validates every row and converts the batch. A single bad row
// rejects the whole batch with ErrSchemaMismatch.
func ParseBatch(rows []RawRecord) ([]Transaction, error) {
	if len(rows) > MaxBatchSize {
		return nil, fmt.Errorf("%w: batch of %d rows exceeds %d", ErrSchemaMismatch, len(rows), MaxBatchSize)
	}

	out := make([]Transaction, 0, len(rows))
	for i, row := range rows {
		t, err := ParseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// ParseRecord converts a single raw row into a Transaction.
func ParseRecord(row RawRecord) (Transaction, error) {
	fields := make(map[string]any, len(row))
	for k, v := range row {
		fields[CanonicalColumn(k)] = v
	}

	for _, c := range Columns {
		if v, ok := fields[c]; !ok || v == nil {
			return Transaction{}, fmt.Errorf("%w: missing field %q", ErrSchemaMismatch, c)
		}
	}

	amount, err := parseAmount(fields[ColumnAmount])
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: field %q: %v", ErrSchemaMismatch, ColumnAmount, err)
	}

	on, err := parseDateValue(fields[ColumnOccurredOn])
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: field %q: %v", ErrSchemaMismatch, ColumnOccurredOn, err)
	}
	if !on.InRange() {
		return Transaction{}, fmt.Errorf("%w: field %q: year %d outside %d..%d", ErrSchemaMismatch, ColumnOccurredOn, on.Year(), MinYear, MaxYear)
	}

	t := Transaction{
		FlowKind:       text(fields[ColumnFlowKind]),
		Amount:         amount,
		RecurrenceKind: text(fields[ColumnRecurrenceKind]),
		Description:    text(fields[ColumnDescription]),
		OccurredOn:     on,
		Title:          text(fields[ColumnTitle]),
	}

	for _, c := range []struct{ name, value string }{
		{ColumnFlowKind, t.FlowKind},
		{ColumnRecurrenceKind, t.RecurrenceKind},
		{ColumnDescription, t.Description},
		{ColumnTitle, t.Title},
	} {
		if len(c.value) > MaxFieldLength {
			return Transaction{}, fmt.Errorf("%w: field %q exceeds %d characters", ErrSchemaMismatch, c.name, MaxFieldLength)
		}
	}

	return t, nil
}

func parseAmount(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number")
		}
		return decimal.NewFromFloat(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		if s == "" {
			return decimal.Zero, fmt.Errorf("empty amount")
		}
		return decimal.NewFromString(s)
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount type %T", v)
	}
}

func parseDateValue(v any) (Date, error) {
	switch x := v.(type) {
	case Date:
		return x, nil
	case string:
		return ParseDate(x)
	case float64:
		return ParseDate(fmt.Sprintf("%.0f", x))
	case json.Number:
		return ParseDate(x.String())
	default:
		return Date{}, fmt.Errorf("unsupported date type %T", v)
	}
}

func text(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
