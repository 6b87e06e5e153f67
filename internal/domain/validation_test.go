package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validRow() RawRecord {
	return RawRecord{
		"flow_kind":       "expense",
		"amount":          "12.50",
		"recurrence_kind": "one-time",
		"description":     "coffee beans",
		"occurred_on":     "2024-01-05",
		"title":           "Coffee",
	}
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(RawRecord)
		expectError bool
	}{
		{
			name:   "valid row",
			mutate: func(RawRecord) {},
		},
		{
			name:        "missing title",
			mutate:      func(r RawRecord) { delete(r, "title") },
			expectError: true,
		},
		{
			name:        "nil description",
			mutate:      func(r RawRecord) { r["description"] = nil },
			expectError: true,
		},
		{
			name:        "amount not a number",
			mutate:      func(r RawRecord) { r["amount"] = "twelve" },
			expectError: true,
		},
		{
			name:        "date not a date",
			mutate:      func(r RawRecord) { r["occurred_on"] = "yesterday" },
			expectError: true,
		},
		{
			name:        "year zero",
			mutate:      func(r RawRecord) { r["occurred_on"] = "0000-06-01" },
			expectError: true,
		},
		{
			name:        "year past 9999",
			mutate:      func(r RawRecord) { r["occurred_on"] = NewDate(10000, time.January, 1) },
			expectError: true,
		},
		{
			name:        "number beyond the last serial",
			mutate:      func(r RawRecord) { r["occurred_on"] = json.Number("99999999") },
			expectError: true,
		},
		{
			name:   "compact iso date",
			mutate: func(r RawRecord) { r["occurred_on"] = "20240105" },
		},
		{
			name:   "compact iso date as json number",
			mutate: func(r RawRecord) { r["occurred_on"] = json.Number("20240105") },
		},
		{
			name:   "float amount from json",
			mutate: func(r RawRecord) { r["amount"] = 12.5 },
		},
		{
			name:   "json number amount",
			mutate: func(r RawRecord) { r["amount"] = json.Number("12.50") },
		},
		{
			name:   "empty description is a value",
			mutate: func(r RawRecord) { r["description"] = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(row)

			_, err := ParseRecord(row)

			if tt.expectError && !errors.Is(err, ErrSchemaMismatch) {
				t.Errorf("expected ErrSchemaMismatch, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseRecord_CompactDate(t *testing.T) {
	row := validRow()
	row["occurred_on"] = "20240105"

	tx, err := ParseRecord(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.OccurredOn != NewDate(2024, time.January, 5) {
		t.Fatalf("expected 2024-01-05, got %s", tx.OccurredOn)
	}
}

func TestParseRecord_LegacyHeaders(t *testing.T) {
	row := RawRecord{
		"transation_type": "income",
		"Amount":          "1000",
		"type":            "recurring",
		"description":     "monthly salary",
		"date":            "2024-02-01 00:00:00",
		"title":           "Salary",
	}

	got, err := ParseRecord(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Transaction{
		FlowKind:       FlowIncome,
		Amount:         decimal.NewFromInt(1000),
		RecurrenceKind: "recurring",
		Description:    "monthly salary",
		OccurredOn:     NewDate(2024, 2, 1),
		Title:          "Salary",
	}
	if !got.Equal(want) {
		t.Fatalf("ParseRecord() = %+v, want %+v", got, want)
	}
}

func TestParseBatch_RejectsWholeBatch(t *testing.T) {
	bad := validRow()
	delete(bad, "amount")

	got, err := ParseBatch([]RawRecord{validRow(), bad, validRow()})
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no transactions, got %d", len(got))
	}
}

func TestParseBatch_Empty(t *testing.T) {
	got, err := ParseBatch(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty batch, got %d", len(got))
	}
}

func TestCanonicalColumn(t *testing.T) {
	cases := map[string]string{
		"transation_type": ColumnFlowKind,
		" Flow Kind ":     ColumnFlowKind,
		"TYPE":            ColumnRecurrenceKind,
		"date":            ColumnOccurredOn,
		"title":           ColumnTitle,
		"Notes":           "notes",
	}
	for in, want := range cases {
		if got := CanonicalColumn(in); got != want {
			t.Errorf("CanonicalColumn(%q) = %q, want %q", in, got, want)
		}
	}
}
