package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Normalizer turns raw form fields into canonical transactions.
//
// It never fails: type and category are passed through after trimming, so
// values outside the enumeration end up as their own group downstream.
type Normalizer struct {
	// Now supplies the wall-clock time combined with the chosen date.
	// Defaults to time.Now.
	Now func() time.Time
}

// Normalize builds a Transaction from user input.
//
// The timestamp is the calendar date of date combined with the current
// wall-clock time (second precision), so entries on the same day keep their
// entry order. Expenses are stored as -|amount|, everything else as +|amount|.
func (n *Normalizer) Normalize(date Date, description string, category string, amount decimal.Decimal, typ string) Transaction {
	now := time.Now
	if n != nil && n.Now != nil {
		now = n.Now
	}
	clock := now()
	y, m, d := date.Time.Date()
	ts := time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), 0, clock.Location())

	t := ParseType(typ)
	signed := amount.Abs()
	if t == Expense {
		signed = signed.Neg()
	}

	return Transaction{
		Timestamp:   ts,
		Description: description,
		Category:    Category(strings.TrimSpace(category)),
		Amount:      signed,
		Type:        t,
	}
}
