package ledger

import (
	"errors"

	"github.com/shopspring/decimal"

	"finledger/internal/core"
)

// Series wraps a cumulative series with an explicit empty marker so callers
// can tell "nothing to plot" apart from a series that sums to zero.
type Series struct {
	Points []Point `json:"points"`
	NoData bool    `json:"no_data"`
}

// Breakdown is the category ranking with the same empty marker as Series.
type Breakdown struct {
	Totals []CategoryTotal `json:"totals"`
	NoData bool            `json:"no_data"`
}

// Report bundles every derived view for one filter and goal.
type Report struct {
	Range      DateRange       `json:"range"`
	Count      int             `json:"count"`
	Summary    Summary         `json:"summary"`
	Balance    Series          `json:"balance"`
	Savings    Series          `json:"savings"`
	Categories Breakdown       `json:"categories"`
	Goal       decimal.Decimal `json:"goal"`
	Progress   float64         `json:"progress"`
}

// Compute filters txs by r and derives every view from the result.
func Compute(txs []core.Transaction, r DateRange, goal decimal.Decimal) (Report, error) {
	r = r.Resolve(txs)
	filtered := Filter(txs, r)
	summary := Summarize(filtered)

	rep := Report{
		Range:    r,
		Count:    len(filtered),
		Summary:  summary,
		Goal:     goal,
		Progress: Progress(summary.Savings, goal),
	}

	var err error
	if rep.Balance, err = series(BalanceSeries(filtered)); err != nil {
		return Report{}, err
	}
	if rep.Savings, err = series(SavingsSeries(filtered)); err != nil {
		return Report{}, err
	}

	totals, err := CategoryTotals(filtered)
	switch {
	case errors.Is(err, ErrNoData):
		rep.Categories = Breakdown{Totals: []CategoryTotal{}, NoData: true}
	case err != nil:
		return Report{}, err
	default:
		rep.Categories = Breakdown{Totals: totals}
	}
	return rep, nil
}

func series(points []Point, err error) (Series, error) {
	if errors.Is(err, ErrNoData) {
		return Series{Points: []Point{}, NoData: true}, nil
	}
	if err != nil {
		return Series{}, err
	}
	return Series{Points: points}, nil
}
