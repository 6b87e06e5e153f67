package usecase

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/finledger/internal/domain"
)

// Summarize computes the headline figures of records. Records are taken in
// the given order: the first of several equal highest amounts wins.
func Summarize(records []domain.Transaction) domain.Summary {
	s := domain.Summary{
		HighestIncomeAmount:  decimal.Zero,
		HighestExpenseAmount: decimal.Zero,
		TotalIncome:          decimal.Zero,
		TotalExpense:         decimal.Zero,
		Net:                  decimal.Zero,
		GrandTotal:           decimal.Zero,
	}

	frequency := make(map[string]int)

	for i := range records {
		r := records[i]
		s.Count++
		s.GrandTotal = s.GrandTotal.Add(r.Amount)
		frequency[r.FlowKind]++

		switch r.FlowKind {
		case domain.FlowIncome:
			s.TotalIncome = s.TotalIncome.Add(r.Amount)
			if s.HighestIncome == nil || r.Amount.GreaterThan(s.HighestIncomeAmount) {
				s.HighestIncome = &records[i]
				s.HighestIncomeAmount = r.Amount
			}
		case domain.FlowExpense:
			s.TotalExpense = s.TotalExpense.Add(r.Amount)
			if s.HighestExpense == nil || r.Amount.GreaterThan(s.HighestExpenseAmount) {
				s.HighestExpense = &records[i]
				s.HighestExpenseAmount = r.Amount
			}
		}
	}

	s.Net = s.TotalIncome.Sub(s.TotalExpense)
	s.MostFrequentFlowKind, s.MostFrequentCount = mostFrequent(frequency)

	return s
}

// mostFrequent walks kinds in sorted order so equal counts go to the smallest label.
func mostFrequent(frequency map[string]int) (string, int) {
	kinds := make([]string, 0, len(frequency))
	for k := range frequency {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	var best string
	var count int
	for _, k := range kinds {
		if frequency[k] > count {
			best, count = k, frequency[k]
		}
	}
	return best, count
}

// Bucket sums amounts per calendar window of g. Windows without records are
// omitted; the result is ordered by window start.
func Bucket(records []domain.Transaction, g domain.Granularity) []domain.BucketPoint {
	sums := make(map[domain.Date]decimal.Decimal)
	for _, r := range records {
		start := g.StartOf(r.OccurredOn)
		if cur, ok := sums[start]; ok {
			sums[start] = cur.Add(r.Amount)
		} else {
			sums[start] = r.Amount
		}
	}

	points := make([]domain.BucketPoint, 0, len(sums))
	for start, amount := range sums {
		points = append(points, domain.BucketPoint{Start: start, Amount: amount})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Start.Before(points[j].Start)
	})

	return points
}

// Breakdown groups records along dimension. Slices are ordered by label.
func Breakdown(records []domain.Transaction, dimension domain.Dimension) ([]domain.BreakdownSlice, error) {
	var (
		label   func(domain.Transaction) string
		include func(domain.Transaction) bool
	)

	all := func(domain.Transaction) bool { return true }
	byTitle := func(t domain.Transaction) string { return t.Title }
	byFlowKind := func(t domain.Transaction) string { return t.FlowKind }

	switch dimension {
	case domain.DimensionIncomeByTitle:
		label = byTitle
		include = func(t domain.Transaction) bool { return t.FlowKind == domain.FlowIncome }
	case domain.DimensionExpenseByTitle:
		label = byTitle
		include = func(t domain.Transaction) bool { return t.FlowKind == domain.FlowExpense }
	case domain.DimensionByFlowKind, domain.DimensionFlowKindFrequency:
		label, include = byFlowKind, all
	case domain.DimensionIncomeVsExpense:
		label = byFlowKind
		include = func(t domain.Transaction) bool {
			return t.FlowKind == domain.FlowIncome || t.FlowKind == domain.FlowExpense
		}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDimension, dimension)
	}

	index := make(map[string]int)
	parts := []domain.BreakdownSlice{}

	for _, r := range records {
		if !include(r) {
			continue
		}
		l := label(r)
		i, ok := index[l]
		if !ok {
			i = len(parts)
			index[l] = i
			parts = append(parts, domain.BreakdownSlice{Label: l, Amount: decimal.Zero})
		}
		parts[i].Count++
		parts[i].Amount = parts[i].Amount.Add(r.Amount)
	}

	if dimension == domain.DimensionFlowKindFrequency {
		for i := range parts {
			parts[i].Amount = decimal.NewFromInt(int64(parts[i].Count))
		}
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].Label < parts[j].Label })

	return parts, nil
}

// CollectFilterOptions returns the sorted distinct flow and recurrence kinds.
func CollectFilterOptions(records []domain.Transaction) domain.FilterOptions {
	flows := make(map[string]struct{})
	recurrences := make(map[string]struct{})
	for _, r := range records {
		flows[r.FlowKind] = struct{}{}
		recurrences[r.RecurrenceKind] = struct{}{}
	}

	return domain.FilterOptions{
		FlowKinds:       sortedKeys(flows),
		RecurrenceKinds: sortedKeys(recurrences),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
