// Package ledger derives summary views from a sequence of transactions.
//
// Every function here is pure: the same input sequence and date range always
// produce the same output, and nothing in the input is modified.
package ledger

import (
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// ErrNoData is returned by the series functions when no transaction
// qualifies. It is distinct from a zero-valued result.
var ErrNoData = errors.New("no data")

// DateRange is an inclusive calendar-date filter. A zero bound is open.
type DateRange struct {
	From core.Date `json:"from"`
	To   core.Date `json:"to"`
}

// All is the "show all" range.
var All = DateRange{}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From.IsEmpty() && r.To.IsEmpty()
}

// Contains reports whether d falls inside the range, bounds included.
func (r DateRange) Contains(d core.Date) bool {
	if !r.From.IsEmpty() && d.Compare(r.From) < 0 {
		return false
	}
	if !r.To.IsEmpty() && d.Compare(r.To) > 0 {
		return false
	}
	return true
}

// Resolve fills an open bound with the earliest or latest calendar date
// present in txs when the other bound is set. A fully open range stays open.
func (r DateRange) Resolve(txs []core.Transaction) DateRange {
	if r.IsZero() || len(txs) == 0 {
		return r
	}
	minDate, maxDate := txs[0].Date(), txs[0].Date()
	for _, tx := range txs[1:] {
		d := tx.Date()
		if d.Compare(minDate) < 0 {
			minDate = d
		}
		if d.Compare(maxDate) > 0 {
			maxDate = d
		}
	}
	if r.From.IsEmpty() {
		r.From = minDate
	}
	if r.To.IsEmpty() {
		r.To = maxDate
	}
	return r
}

// Filter returns the transactions whose calendar date lies in r, keeping
// their order. A zero range returns a copy of txs.
func Filter(txs []core.Transaction, r DateRange) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if r.Contains(tx.Date()) {
			out = append(out, tx)
		}
	}
	return out
}

// Summary holds the four headline totals. Expenses is a positive magnitude.
type Summary struct {
	Income     decimal.Decimal `json:"total_income"`
	Expenses   decimal.Decimal `json:"total_expenses"`
	Savings    decimal.Decimal `json:"total_savings"`
	NetBalance decimal.Decimal `json:"net_balance"`
}

// Summarize totals txs by type. Savings are excluded from the net balance.
func Summarize(txs []core.Transaction) Summary {
	s := Summary{
		Income:     decimal.Zero,
		Expenses:   decimal.Zero,
		Savings:    decimal.Zero,
		NetBalance: decimal.Zero,
	}
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			s.Income = s.Income.Add(tx.Amount)
		case core.Expense:
			s.Expenses = s.Expenses.Sub(tx.Amount)
		case core.Savings:
			s.Savings = s.Savings.Add(tx.Amount)
		}
		if tx.Type != core.Savings {
			s.NetBalance = s.NetBalance.Add(tx.Amount)
		}
	}
	return s
}

// Point is one step of a cumulative series.
type Point struct {
	Timestamp time.Time       `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
}

// BalanceSeries returns the running balance of every non-savings transaction
// in timestamp order. Same-timestamp entries keep their input order.
func BalanceSeries(txs []core.Transaction) ([]Point, error) {
	return cumulative(txs, func(tx core.Transaction) bool { return tx.Type != core.Savings })
}

// SavingsSeries returns the running total of savings transactions.
func SavingsSeries(txs []core.Transaction) ([]Point, error) {
	return cumulative(txs, func(tx core.Transaction) bool { return tx.Type == core.Savings })
}

func cumulative(txs []core.Transaction, keep func(core.Transaction) bool) ([]Point, error) {
	selected := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if keep(tx) {
			selected = append(selected, tx)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNoData
	}
	slices.SortStableFunc(selected, func(a, b core.Transaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	points := make([]Point, len(selected))
	running := decimal.Zero
	for i, tx := range selected {
		running = running.Add(tx.Amount)
		points[i] = Point{Timestamp: tx.Timestamp, Value: running}
	}
	return points, nil
}

// CategoryTotal is the spend of one category as a positive magnitude.
type CategoryTotal struct {
	Category core.Category   `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// CategoryTotals groups expenses by category and orders the groups by
// descending magnitude. Equal totals keep first-encountered order.
func CategoryTotals(txs []core.Transaction) ([]CategoryTotal, error) {
	index := make(map[core.Category]int)
	var totals []CategoryTotal
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		i, ok := index[tx.Category]
		if !ok {
			i = len(totals)
			index[tx.Category] = i
			totals = append(totals, CategoryTotal{Category: tx.Category, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(tx.Amount)
	}
	if len(totals) == 0 {
		return nil, ErrNoData
	}
	for i := range totals {
		totals[i].Total = totals[i].Total.Abs()
	}
	slices.SortStableFunc(totals, func(a, b CategoryTotal) int {
		return b.Total.Cmp(a.Total)
	})
	return totals, nil
}

// Progress is saved/goal clamped to [0, 1]. A goal of zero or less yields 0.
func Progress(saved, goal decimal.Decimal) float64 {
	if !goal.IsPositive() {
		return 0
	}
	p := saved.DivRound(goal, 8).InexactFloat64()
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// ProgressText renders progress the way the CLI prints it,
// e.g. "Saved $250.00 of $1,000.00 (25%)".
func ProgressText(saved, goal decimal.Decimal) string {
	pct := decimal.NewFromFloat(Progress(saved, goal) * 100).Round(0)
	return "Saved " + core.FormatDollars(saved) + " of " + core.FormatDollars(goal) + " (" + pct.String() + "%)"
}
