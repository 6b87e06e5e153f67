package domain

import "github.com/shopspring/decimal"

// Summary holds the headline figures of a filtered transaction set.
// A zero Summary describes an empty set.
type Summary struct {
	HighestIncome        *Transaction
	HighestIncomeAmount  decimal.Decimal
	HighestExpense       *Transaction
	HighestExpenseAmount decimal.Decimal
	TotalIncome          decimal.Decimal
	TotalExpense         decimal.Decimal
	Net                  decimal.Decimal
	MostFrequentFlowKind string
	MostFrequentCount    int
	GrandTotal           decimal.Decimal
	Count                int
}

// BucketPoint is the summed amount of one calendar window.
type BucketPoint struct {
	Start  Date
	Amount decimal.Decimal
}

// ProjectionPoint is a predicted amount for a future window.
type ProjectionPoint struct {
	Start  Date
	Amount float64
}

// BreakdownSlice is one labelled share of a breakdown.
type BreakdownSlice struct {
	Label  string
	Amount decimal.Decimal
	Count  int
}

// Dimension selects how a breakdown groups transactions.
type Dimension string

const (
	DimensionIncomeByTitle     Dimension = "income_by_title"
	DimensionExpenseByTitle    Dimension = "expense_by_title"
	DimensionByFlowKind        Dimension = "by_flow_kind"
	DimensionIncomeVsExpense   Dimension = "income_vs_expense"
	DimensionFlowKindFrequency Dimension = "flow_kind_frequency"
)

// Valid reports whether d is a known dimension.
func (d Dimension) Valid() bool {
	switch d {
	case DimensionIncomeByTitle, DimensionExpenseByTitle, DimensionByFlowKind,
		DimensionIncomeVsExpense, DimensionFlowKindFrequency:
		return true
	}
	return false
}

// FilterOptions lists the distinct values a caller can filter on.
type FilterOptions struct {
	FlowKinds       []string
	RecurrenceKinds []string
}
