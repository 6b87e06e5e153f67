package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

// TransactionResponse represents a ledger row in API responses.
type TransactionResponse struct {
	FlowKind       string          `json:"flow_kind"`
	Amount         decimal.Decimal `json:"amount"`
	RecurrenceKind string          `json:"recurrence_kind"`
	Description    string          `json:"description"`
	OccurredOn     domain.Date     `json:"occurred_on"`
	Title          string          `json:"title"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		FlowKind:       t.FlowKind,
		Amount:         t.Amount,
		RecurrenceKind: t.RecurrenceKind,
		Description:    t.Description,
		OccurredOn:     t.OccurredOn,
		Title:          t.Title,
	}
}

// TransactionsFromDomain converts domain transactions to responses. The
// result is never nil.
func TransactionsFromDomain(ts []domain.Transaction) []TransactionResponse {
	result := make([]TransactionResponse, len(ts))
	for i, t := range ts {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ToDomain converts the response back to a domain transaction.
func (t TransactionResponse) ToDomain() domain.Transaction {
	return domain.Transaction{
		FlowKind:       t.FlowKind,
		Amount:         t.Amount,
		RecurrenceKind: t.RecurrenceKind,
		Description:    t.Description,
		OccurredOn:     t.OccurredOn,
		Title:          t.Title,
	}
}

// IngestResponse reports the outcome of an upload.
type IngestResponse struct {
	BatchID       string                `json:"batch_id,omitempty"`
	AcceptedCount int                   `json:"accepted_count"`
	Accepted      []TransactionResponse `json:"accepted"`
	Conflicts     []TransactionResponse `json:"conflicts"`
}

// IngestFromResult converts an ingestion result.
func IngestFromResult(r *usecase.IngestResult) IngestResponse {
	return IngestResponse{
		BatchID:       r.BatchID,
		AcceptedCount: r.AcceptedCount(),
		Accepted:      TransactionsFromDomain(r.Accepted),
		Conflicts:     TransactionsFromDomain(r.Conflicts),
	}
}

// ResolveResponse acknowledges a conflict decision.
type ResolveResponse struct {
	BatchID  string `json:"batch_id"`
	Decision string `json:"decision"`
}

// SummaryResponse represents the headline figures.
type SummaryResponse struct {
	HighestIncome        *TransactionResponse `json:"highest_income"`
	HighestIncomeAmount  decimal.Decimal      `json:"highest_income_amount"`
	HighestExpense       *TransactionResponse `json:"highest_expense"`
	HighestExpenseAmount decimal.Decimal      `json:"highest_expense_amount"`
	TotalIncome          decimal.Decimal      `json:"total_income"`
	TotalExpense         decimal.Decimal      `json:"total_expense"`
	Net                  decimal.Decimal      `json:"net"`
	MostFrequentFlowKind string               `json:"most_frequent_flow_kind"`
	MostFrequentCount    int                  `json:"most_frequent_count"`
	GrandTotal           decimal.Decimal      `json:"grand_total"`
	Count                int                  `json:"count"`
}

// SummaryFromDomain converts a domain summary.
func SummaryFromDomain(s domain.Summary) SummaryResponse {
	resp := SummaryResponse{
		HighestIncomeAmount:  s.HighestIncomeAmount,
		HighestExpenseAmount: s.HighestExpenseAmount,
		TotalIncome:          s.TotalIncome,
		TotalExpense:         s.TotalExpense,
		Net:                  s.Net,
		MostFrequentFlowKind: s.MostFrequentFlowKind,
		MostFrequentCount:    s.MostFrequentCount,
		GrandTotal:           s.GrandTotal,
		Count:                s.Count,
	}
	if s.HighestIncome != nil {
		t := TransactionFromDomain(*s.HighestIncome)
		resp.HighestIncome = &t
	}
	if s.HighestExpense != nil {
		t := TransactionFromDomain(*s.HighestExpense)
		resp.HighestExpense = &t
	}
	return resp
}

// BucketResponse is one point of the time series.
type BucketResponse struct {
	Start  domain.Date     `json:"start"`
	Amount decimal.Decimal `json:"amount"`
}

// ProjectionResponse is one predicted point.
type ProjectionResponse struct {
	Start  domain.Date `json:"start"`
	Amount float64     `json:"amount"`
}

// DashboardResponse is the composite read.
type DashboardResponse struct {
	Granularity  string                `json:"granularity"`
	Transactions []TransactionResponse `json:"transactions"`
	Summary      SummaryResponse       `json:"summary"`
	Series       []BucketResponse      `json:"series"`
	Projection   []ProjectionResponse  `json:"projection"`
}

// DashboardFromDomain converts a dashboard.
func DashboardFromDomain(d *usecase.Dashboard, g domain.Granularity) DashboardResponse {
	series := make([]BucketResponse, len(d.Series))
	for i, p := range d.Series {
		series[i] = BucketResponse{Start: p.Start, Amount: p.Amount}
	}
	projection := make([]ProjectionResponse, len(d.Projection))
	for i, p := range d.Projection {
		projection[i] = ProjectionResponse{Start: p.Start, Amount: p.Amount}
	}

	return DashboardResponse{
		Granularity:  g.String(),
		Transactions: TransactionsFromDomain(d.Rows),
		Summary:      SummaryFromDomain(d.Summary),
		Series:       series,
		Projection:   projection,
	}
}

// TransactionsResponse lists ledger rows.
type TransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Total        int                   `json:"total"`
}

// BreakdownSliceResponse is one labelled share.
type BreakdownSliceResponse struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// BreakdownResponse lists the slices of one dimension.
type BreakdownResponse struct {
	Dimension string                   `json:"dimension"`
	Slices    []BreakdownSliceResponse `json:"slices"`
}

// BreakdownFromDomain converts breakdown slices.
func BreakdownFromDomain(dim domain.Dimension, slices []domain.BreakdownSlice) BreakdownResponse {
	out := make([]BreakdownSliceResponse, len(slices))
	for i, s := range slices {
		out[i] = BreakdownSliceResponse{Label: s.Label, Amount: s.Amount, Count: s.Count}
	}
	return BreakdownResponse{Dimension: string(dim), Slices: out}
}

// FilterOptionsResponse lists the values a caller can filter on.
type FilterOptionsResponse struct {
	FlowKinds       []string `json:"flow_kinds"`
	RecurrenceKinds []string `json:"recurrence_kinds"`
}

// FilterOptionsFromDomain converts filter options.
func FilterOptionsFromDomain(o domain.FilterOptions) FilterOptionsResponse {
	resp := FilterOptionsResponse{FlowKinds: o.FlowKinds, RecurrenceKinds: o.RecurrenceKinds}
	if resp.FlowKinds == nil {
		resp.FlowKinds = []string{}
	}
	if resp.RecurrenceKinds == nil {
		resp.RecurrenceKinds = []string{}
	}
	return resp
}

// TemplateResponse lists the upload columns.
type TemplateResponse struct {
	Columns []string `json:"columns"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
