package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func coffee() Transaction {
	return Transaction{
		FlowKind:       FlowExpense,
		Amount:         decimal.NewFromInt(5),
		RecurrenceKind: "one-time",
		Description:    "flat white",
		OccurredOn:     NewDate(2024, time.March, 4),
		Title:          "Coffee",
	}
}

func TestTransaction_Equal(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   bool
	}{
		{name: "identical", mutate: func(*Transaction) {}, want: true},
		{name: "amount with trailing zeros", mutate: func(tx *Transaction) { tx.Amount = decimal.RequireFromString("5.00") }, want: true},
		{name: "different amount", mutate: func(tx *Transaction) { tx.Amount = decimal.NewFromInt(6) }, want: false},
		{name: "different flow kind", mutate: func(tx *Transaction) { tx.FlowKind = FlowIncome }, want: false},
		{name: "different recurrence", mutate: func(tx *Transaction) { tx.RecurrenceKind = "recurring" }, want: false},
		{name: "different description", mutate: func(tx *Transaction) { tx.Description = "latte" }, want: false},
		{name: "different date", mutate: func(tx *Transaction) { tx.OccurredOn = tx.OccurredOn.AddDate(0, 0, 1) }, want: false},
		{name: "different title", mutate: func(tx *Transaction) { tx.Title = "coffee" }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := coffee()
			tt.mutate(&other)

			if got := coffee().Equal(other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransaction_KeyMatchesIdentity(t *testing.T) {
	a := coffee()
	b := coffee()
	if a.Key() != b.Key() {
		t.Fatalf("expected identical rows to share a key")
	}

	b.Title = "Tea"
	if a.Key() == b.Key() {
		t.Fatalf("expected rows with different titles to have different keys")
	}
}

func TestSortTransactions(t *testing.T) {
	early := coffee()
	early.OccurredOn = NewDate(2024, time.January, 1)
	late := coffee()
	late.OccurredOn = NewDate(2024, time.December, 1)
	income := coffee()
	income.FlowKind = "aaa"

	ts := []Transaction{late, coffee(), early, income}
	SortTransactions(ts)

	if !ts[0].Equal(early) || !ts[3].Equal(late) {
		t.Fatalf("expected rows ordered by date, got %v", ts)
	}
	if ts[1].FlowKind != "aaa" {
		t.Fatalf("expected same-day rows ordered by flow kind, got %s first", ts[1].FlowKind)
	}
}

func TestFilter_Matches(t *testing.T) {
	from := NewDate(2024, time.March, 4)
	to := NewDate(2024, time.March, 31)

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "empty filter matches", filter: Filter{}, want: true},
		{name: "inclusive from", filter: Filter{From: &from}, want: true},
		{name: "inclusive to", filter: Filter{To: &from}, want: true},
		{name: "before range", filter: Filter{From: &to}, want: false},
		{name: "flow kind in set", filter: Filter{FlowKinds: []string{FlowIncome, FlowExpense}}, want: true},
		{name: "flow kind not in set", filter: Filter{FlowKinds: []string{FlowIncome}}, want: false},
		{name: "recurrence not in set", filter: Filter{RecurrenceKinds: []string{"recurring"}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(coffee()); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Validate(t *testing.T) {
	from := NewDate(2024, time.April, 1)
	to := NewDate(2024, time.March, 1)

	if err := (Filter{From: &from, To: &to}).Validate(); err == nil {
		t.Fatal("expected inverted range to be rejected")
	}
	if err := (Filter{From: &to, To: &from}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
