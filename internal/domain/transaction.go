package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Well-known flow kinds. The set is open: any label read from an upload is kept.
const (
	FlowIncome     = "income"
	FlowExpense    = "expense"
	FlowInvestment = "investment"
)

// Transaction is a single ledger row. The six fields together are its identity;
// there is no surrogate id, so two field-identical rows are the same record.
type Transaction struct {
	FlowKind       string
	Amount         decimal.Decimal
	RecurrenceKind string
	Description    string
	OccurredOn     Date
	Title          string
}

// Key returns the canonical identity string of the transaction.
func (t Transaction) Key() string {
	return strings.Join([]string{
		t.FlowKind,
		t.Amount.String(),
		t.RecurrenceKind,
		t.Description,
		t.OccurredOn.String(),
		t.Title,
	}, "\x1f")
}

// Equal reports whether t and o are the same record.
func (t Transaction) Equal(o Transaction) bool {
	return t.FlowKind == o.FlowKind &&
		t.Amount.Equal(o.Amount) &&
		t.RecurrenceKind == o.RecurrenceKind &&
		t.Description == o.Description &&
		t.OccurredOn.String() == o.OccurredOn.String() &&
		t.Title == o.Title
}

// SortTransactions orders rows by date, then by the remaining identity fields.
func SortTransactions(ts []Transaction) {
	sort.SliceStable(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		if c := a.OccurredOn.Compare(b.OccurredOn); c != 0 {
			return c < 0
		}
		if a.FlowKind != b.FlowKind {
			return a.FlowKind < b.FlowKind
		}
		if a.RecurrenceKind != b.RecurrenceKind {
			return a.RecurrenceKind < b.RecurrenceKind
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		if a.Description != b.Description {
			return a.Description < b.Description
		}
		return a.Amount.LessThan(b.Amount)
	})
}
