package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finledger/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func at(day, hour int) time.Time {
	return time.Date(2025, 1, day, hour, 0, 0, 0, time.UTC)
}

func tx(ts time.Time, desc string, cat core.Category, amount string, typ core.Type) core.Transaction {
	return core.Transaction{Timestamp: ts, Description: desc, Category: cat, Amount: dec(amount), Type: typ}
}

func scenario() []core.Transaction {
	return []core.Transaction{
		tx(at(1, 9), "Paycheck", core.Work, "1000", core.Income),
		tx(at(2, 9), "Groceries", core.Food, "-50", core.Expense),
		tx(at(3, 9), "Emergency fund", core.SavingsGoal, "200", core.Savings),
	}
}

func TestEndToEndScenario(t *testing.T) {
	txs := scenario()

	s := Summarize(txs)
	assert.True(t, s.Income.Equal(dec("1000")))
	assert.True(t, s.Expenses.Equal(dec("50")))
	assert.True(t, s.Savings.Equal(dec("200")))
	assert.True(t, s.NetBalance.Equal(dec("950")))

	balance, err := BalanceSeries(txs)
	require.NoError(t, err)
	require.Len(t, balance, 2)
	assert.Equal(t, at(1, 9), balance[0].Timestamp)
	assert.True(t, balance[0].Value.Equal(dec("1000")))
	assert.Equal(t, at(2, 9), balance[1].Timestamp)
	assert.True(t, balance[1].Value.Equal(dec("950")))

	savings, err := SavingsSeries(txs)
	require.NoError(t, err)
	require.Len(t, savings, 1)
	assert.Equal(t, at(3, 9), savings[0].Timestamp)
	assert.True(t, savings[0].Value.Equal(dec("200")))

	cats, err := CategoryTotals(txs)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, core.Food, cats[0].Category)
	assert.True(t, cats[0].Total.Equal(dec("50")))
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.True(t, s.Income.IsZero())
	assert.True(t, s.Expenses.IsZero())
	assert.True(t, s.Savings.IsZero())
	assert.True(t, s.NetBalance.IsZero())
}

func TestSeriesNoData(t *testing.T) {
	_, err := BalanceSeries(nil)
	assert.ErrorIs(t, err, ErrNoData)

	onlySavings := []core.Transaction{tx(at(1, 1), "", core.SavingsGoal, "10", core.Savings)}
	_, err = BalanceSeries(onlySavings)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = SavingsSeries(scenario()[:2])
	assert.ErrorIs(t, err, ErrNoData)

	_, err = CategoryTotals(onlySavings)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestBalanceSeriesFinalValueIsSum(t *testing.T) {
	txs := []core.Transaction{
		tx(at(5, 9), "c", core.Food, "-12.34", core.Expense),
		tx(at(1, 9), "a", core.Work, "100.10", core.Income),
		tx(at(3, 9), "b", core.Housing, "-80", core.Expense),
		tx(at(3, 9), "b2", core.Fun, "-0.01", core.Expense),
		tx(at(2, 9), "s", core.SavingsGoal, "500", core.Savings),
	}
	points, err := BalanceSeries(txs)
	require.NoError(t, err)
	require.Len(t, points, 4)

	assert.True(t, points[len(points)-1].Value.Equal(dec("7.75")), "got %s", points[len(points)-1].Value)
	for i := 1; i < len(points); i++ {
		assert.False(t, points[i].Timestamp.Before(points[i-1].Timestamp))
	}
	// equal timestamps keep input order
	assert.True(t, points[1].Value.Equal(dec("20.10")))
	assert.True(t, points[2].Value.Equal(dec("20.09")))
}

func TestSavingsSeriesIsCumulative(t *testing.T) {
	txs := []core.Transaction{
		tx(at(4, 9), "", core.SavingsGoal, "25", core.Savings),
		tx(at(2, 9), "", core.SavingsGoal, "75", core.Savings),
		tx(at(3, 9), "", core.Food, "-5", core.Expense),
	}
	points, err := SavingsSeries(txs)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, at(2, 9), points[0].Timestamp)
	assert.True(t, points[0].Value.Equal(dec("75")))
	assert.True(t, points[1].Value.Equal(dec("100")))
}

func TestCategoryTotalsOrdering(t *testing.T) {
	txs := []core.Transaction{
		tx(at(1, 1), "", core.Food, "-20", core.Expense),
		tx(at(1, 2), "", core.Housing, "-500", core.Expense),
		tx(at(1, 3), "", core.Fun, "-30", core.Expense),
		tx(at(1, 4), "", core.Food, "-10", core.Expense),
		tx(at(1, 5), "", core.Work, "999", core.Income),
		tx(at(1, 6), "", core.Category("Pets"), "-7", core.Expense),
	}
	totals, err := CategoryTotals(txs)
	require.NoError(t, err)

	got := make([]core.Category, len(totals))
	for i, ct := range totals {
		got[i] = ct.Category
	}
	// Food and Fun tie at 30; Food was seen first.
	assert.Equal(t, []core.Category{core.Housing, core.Food, core.Fun, "Pets"}, got)
	assert.True(t, totals[1].Total.Equal(dec("30")))
	for _, ct := range totals {
		assert.False(t, ct.Total.IsNegative())
	}
}

func TestProgressClamp(t *testing.T) {
	tests := []struct {
		saved, goal string
		want        float64
	}{
		{"500", "0", 0},
		{"500", "-10", 0},
		{"150", "100", 1},
		{"50", "200", 0.25},
		{"0", "1000", 0},
		{"-20", "100", 0},
		{"100", "100", 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Progress(dec(tt.saved), dec(tt.goal)), 1e-9, "saved=%s goal=%s", tt.saved, tt.goal)
	}
}

func TestProgressText(t *testing.T) {
	assert.Equal(t, "Saved $250.00 of $1,000.00 (25%)", ProgressText(dec("250"), dec("1000")))
	assert.Equal(t, "Saved $10.00 of $0.00 (0%)", ProgressText(dec("10"), decimal.Zero))
}

func TestFilterBoundaries(t *testing.T) {
	txs := []core.Transaction{
		tx(time.Date(2025, 3, 9, 23, 59, 59, 0, time.UTC), "before", core.Food, "-1", core.Expense),
		tx(time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC), "from", core.Food, "-1", core.Expense),
		tx(time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC), "mid", core.Food, "-1", core.Expense),
		tx(time.Date(2025, 3, 20, 0, 0, 1, 0, time.UTC), "to", core.Food, "-1", core.Expense),
		tx(time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC), "after", core.Food, "-1", core.Expense),
	}
	r := DateRange{From: core.NewDate(2025, 3, 10), To: core.NewDate(2025, 3, 20)}

	got := Filter(txs, r)
	var names []string
	for _, x := range got {
		names = append(names, x.Description)
	}
	assert.Equal(t, []string{"from", "mid", "to"}, names)
	assert.Len(t, Filter(txs, All), len(txs))
}

func TestResolveSingleBound(t *testing.T) {
	txs := scenario()

	r := DateRange{From: core.NewDate(2025, 1, 2)}.Resolve(txs)
	assert.Equal(t, "2025-01-02", r.From.String())
	assert.Equal(t, "2025-01-03", r.To.String())

	r = DateRange{To: core.NewDate(2025, 1, 2)}.Resolve(txs)
	assert.Equal(t, "2025-01-01", r.From.String())

	assert.True(t, All.Resolve(txs).IsZero())
	assert.Equal(t, core.NewDate(2025, 1, 2), DateRange{From: core.NewDate(2025, 1, 2)}.Resolve(nil).From)
}

func TestFilterDoesNotAliasInput(t *testing.T) {
	txs := scenario()
	out := Filter(txs, All)
	out[0].Description = "changed"
	assert.Equal(t, "Paycheck", txs[0].Description)
}
