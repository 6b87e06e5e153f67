package usecase

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/finledger/internal/domain"
)

func tx(flow string, amount int64, on domain.Date, title string) domain.Transaction {
	return domain.Transaction{
		FlowKind:       flow,
		Amount:         decimal.NewFromInt(amount),
		RecurrenceKind: "one-time",
		Description:    title + " " + on.String(),
		OccurredOn:     on,
		Title:          title,
	}
}

func day(y int, m time.Month, d int) domain.Date {
	return domain.NewDate(y, m, d)
}

func TestSummarize(t *testing.T) {
	records := []domain.Transaction{
		tx(domain.FlowIncome, 1000, day(2024, 1, 1), "Salary"),
		tx(domain.FlowExpense, 200, day(2024, 1, 3), "Rent"),
		tx(domain.FlowExpense, 50, day(2024, 1, 4), "Food"),
		tx(domain.FlowIncome, 300, day(2024, 1, 9), "Bonus"),
		tx(domain.FlowInvestment, 400, day(2024, 1, 10), "Fund"),
	}

	s := Summarize(records)

	require.NotNil(t, s.HighestIncome)
	assert.Equal(t, "Salary", s.HighestIncome.Title)
	assert.True(t, s.HighestIncomeAmount.Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, s.HighestExpense)
	assert.Equal(t, "Rent", s.HighestExpense.Title)
	assert.True(t, s.TotalIncome.Equal(decimal.NewFromInt(1300)))
	assert.True(t, s.TotalExpense.Equal(decimal.NewFromInt(250)))
	assert.True(t, s.Net.Equal(decimal.NewFromInt(1050)))
	assert.True(t, s.GrandTotal.Equal(decimal.NewFromInt(1950)))
	assert.Equal(t, 5, s.Count)
	// expense and income both appear twice; the sorted-first label wins.
	assert.Equal(t, domain.FlowExpense, s.MostFrequentFlowKind)
	assert.Equal(t, 2, s.MostFrequentCount)
}

func TestSummarize_HighestTieKeepsFirst(t *testing.T) {
	records := []domain.Transaction{
		tx(domain.FlowExpense, 80, day(2024, 2, 1), "First"),
		tx(domain.FlowExpense, 80, day(2024, 2, 2), "Second"),
	}

	s := Summarize(records)
	require.NotNil(t, s.HighestExpense)
	assert.Equal(t, "First", s.HighestExpense.Title)
}

func TestSummarize_NegativeOnlyIncome(t *testing.T) {
	s := Summarize([]domain.Transaction{
		tx(domain.FlowIncome, -20, day(2024, 2, 1), "Refund"),
		tx(domain.FlowIncome, -5, day(2024, 2, 2), "Chargeback"),
	})
	require.NotNil(t, s.HighestIncome)
	assert.Equal(t, "Chargeback", s.HighestIncome.Title)
	assert.True(t, s.HighestIncomeAmount.Equal(decimal.NewFromInt(-5)))
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)

	assert.Nil(t, s.HighestIncome)
	assert.Nil(t, s.HighestExpense)
	assert.True(t, s.TotalIncome.IsZero())
	assert.True(t, s.TotalExpense.IsZero())
	assert.True(t, s.Net.IsZero())
	assert.True(t, s.GrandTotal.IsZero())
	assert.Equal(t, "", s.MostFrequentFlowKind)
	assert.Equal(t, 0, s.MostFrequentCount)
	assert.Equal(t, 0, s.Count)
}

func TestBucket_MonthMergesWithinWindow(t *testing.T) {
	records := []domain.Transaction{
		tx(domain.FlowExpense, 100, day(2024, 1, 5), "A"),
		tx(domain.FlowExpense, 50, day(2024, 1, 20), "B"),
	}

	got := Bucket(records, domain.Month)

	require.Len(t, got, 1)
	assert.Equal(t, day(2024, 1, 1), got[0].Start)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(150)), "got %s", got[0].Amount)
}

func TestBucket_SparseAndOrdered(t *testing.T) {
	records := []domain.Transaction{
		tx(domain.FlowExpense, 10, day(2024, 5, 2), "May"),
		tx(domain.FlowExpense, 30, day(2024, 1, 31), "Jan"),
		tx(domain.FlowExpense, 5, day(2024, 5, 30), "May again"),
	}

	tests := []struct {
		g    domain.Granularity
		want []domain.BucketPoint
	}{
		{domain.Day, []domain.BucketPoint{
			{Start: day(2024, 1, 31), Amount: decimal.NewFromInt(30)},
			{Start: day(2024, 5, 2), Amount: decimal.NewFromInt(10)},
			{Start: day(2024, 5, 30), Amount: decimal.NewFromInt(5)},
		}},
		{domain.Month, []domain.BucketPoint{
			{Start: day(2024, 1, 1), Amount: decimal.NewFromInt(30)},
			{Start: day(2024, 5, 1), Amount: decimal.NewFromInt(15)},
		}},
		{domain.Quarter, []domain.BucketPoint{
			{Start: day(2024, 1, 1), Amount: decimal.NewFromInt(30)},
			{Start: day(2024, 4, 1), Amount: decimal.NewFromInt(15)},
		}},
		{domain.Year, []domain.BucketPoint{
			{Start: day(2024, 1, 1), Amount: decimal.NewFromInt(45)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.g.String(), func(t *testing.T) {
			got := Bucket(records, tt.g)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.Equal(t, tt.want[i].Start, got[i].Start)
				assert.True(t, tt.want[i].Amount.Equal(got[i].Amount), "bucket %d: want %s got %s", i, tt.want[i].Amount, got[i].Amount)
			}
		})
	}
}

func TestBucket_ExactDecimalSums(t *testing.T) {
	a := tx(domain.FlowExpense, 0, day(2024, 3, 1), "A")
	a.Amount = decimal.RequireFromString("0.1")
	b := tx(domain.FlowExpense, 0, day(2024, 3, 2), "B")
	b.Amount = decimal.RequireFromString("0.2")

	got := Bucket([]domain.Transaction{a, b}, domain.Month)
	require.Len(t, got, 1)
	assert.Equal(t, "0.3", got[0].Amount.String())
}

func TestSummaryMatchesBucketTotals(t *testing.T) {
	sets := map[string][]domain.Transaction{
		"empty": nil,
		"mixed": {
			tx(domain.FlowIncome, 1000, day(2023, 12, 31), "Salary"),
			tx(domain.FlowExpense, 200, day(2024, 1, 1), "Rent"),
			tx(domain.FlowExpense, -35, day(2024, 4, 15), "Refund"),
			tx(domain.FlowInvestment, 400, day(2025, 7, 10), "Fund"),
		},
	}

	for name, records := range sets {
		s := Summarize(records)
		for _, g := range []domain.Granularity{domain.Day, domain.Month, domain.Quarter, domain.Year} {
			sum := decimal.Zero
			for _, p := range Bucket(records, g) {
				sum = sum.Add(p.Amount)
			}
			if !sum.Equal(s.GrandTotal) {
				t.Errorf("%s/%s: bucket sum %s != summary total %s", name, g, sum, s.GrandTotal)
			}
		}
	}
}

func TestBreakdown(t *testing.T) {
	records := []domain.Transaction{
		tx(domain.FlowIncome, 1000, day(2024, 1, 1), "Salary"),
		tx(domain.FlowIncome, 200, day(2024, 2, 1), "Salary"),
		tx(domain.FlowExpense, 50, day(2024, 1, 4), "Food"),
		tx(domain.FlowExpense, 70, day(2024, 1, 5), "Bills"),
		tx(domain.FlowInvestment, 400, day(2024, 1, 10), "Fund"),
	}

	tests := []struct {
		dimension domain.Dimension
		labels    []string
		amounts   []int64
	}{
		{domain.DimensionIncomeByTitle, []string{"Salary"}, []int64{1200}},
		{domain.DimensionExpenseByTitle, []string{"Bills", "Food"}, []int64{70, 50}},
		{domain.DimensionByFlowKind, []string{"expense", "income", "investment"}, []int64{120, 1200, 400}},
		{domain.DimensionIncomeVsExpense, []string{"expense", "income"}, []int64{120, 1200}},
		{domain.DimensionFlowKindFrequency, []string{"expense", "income", "investment"}, []int64{2, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.dimension), func(t *testing.T) {
			got, err := Breakdown(records, tt.dimension)
			require.NoError(t, err)
			require.Len(t, got, len(tt.labels))
			for i := range got {
				assert.Equal(t, tt.labels[i], got[i].Label)
				assert.True(t, got[i].Amount.Equal(decimal.NewFromInt(tt.amounts[i])), "%s: got %s", got[i].Label, got[i].Amount)
			}
		})
	}
}

func TestBreakdown_UnknownDimension(t *testing.T) {
	_, err := Breakdown(nil, "by_moon_phase")
	assert.ErrorIs(t, err, domain.ErrInvalidDimension)
}

func TestCollectFilterOptions(t *testing.T) {
	a := tx(domain.FlowIncome, 1, day(2024, 1, 1), "A")
	b := tx(domain.FlowExpense, 1, day(2024, 1, 1), "B")
	b.RecurrenceKind = "recurring"
	c := tx(domain.FlowExpense, 2, day(2024, 1, 2), "C")

	opts := CollectFilterOptions([]domain.Transaction{a, b, c})
	assert.Equal(t, []string{"expense", "income"}, opts.FlowKinds)
	assert.Equal(t, []string{"one-time", "recurring"}, opts.RecurrenceKinds)

	empty := CollectFilterOptions(nil)
	assert.Empty(t, empty.FlowKinds)
	assert.Empty(t, empty.RecurrenceKinds)
}
